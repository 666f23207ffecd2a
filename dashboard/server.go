// Package dashboard serves a read-only web view over the queue's query
// interface: status summary, job list, job detail with logs, metrics and the
// dead letter queue. It never mutates the store.
package dashboard

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/joblog"
	"github.com/rishiakkala/queuectl/queue"
)

//go:embed index.html
var indexHTML []byte

const defaultJobLimit = 50

// Server is the read-only dashboard HTTP server
type Server struct {
	store *queue.Store
	log   *zap.SugaredLogger
}

// NewServer creates a dashboard server over the given store
func NewServer(store *queue.Store, logger *zap.SugaredLogger) *Server {
	return &Server{store: store, log: logger.Named("dashboard")}
}

// Handler returns the dashboard route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleIndex)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/jobs", s.handleJobs)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleJobDetail)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/dlq", s.handleDLQ)
	return mux
}

// ListenAndServe runs the dashboard on addr until the listener fails
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.log.Infow("Dashboard listening", "addr", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary()
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, summary)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	var state *queue.JobState
	if raw := r.URL.Query().Get("state"); raw != "" {
		if !queue.IsValidState(raw) {
			http.Error(w, "invalid state filter: "+raw, http.StatusBadRequest)
			return
		}
		st := queue.JobState(raw)
		state = &st
	}

	jobs, err := s.store.List(state, limit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*queue.Job{}
	}
	s.writeJSON(w, jobs)
}

// jobDetail is a job snapshot plus its latest log content
type jobDetail struct {
	*queue.Job
	Log string `json:"log,omitempty"`
}

func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := s.store.Get(id)
	if errors.IsNotFound(err) {
		http.Error(w, "job not found: "+id, http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	detail := jobDetail{Job: job}
	if content, err := joblog.Read(s.store.LogDir(), id); err == nil {
		detail.Log = content
	}
	s.writeJSON(w, detail)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.store.GetMetrics()
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeJSON(w, metrics)
}

func (s *Server) handleDLQ(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListDLQ()
	if err != nil {
		s.internalError(w, err)
		return
	}
	if jobs == nil {
		jobs = []*queue.Job{}
	}
	s.writeJSON(w, jobs)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("Failed to encode response", "error", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Errorw("Dashboard query failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
