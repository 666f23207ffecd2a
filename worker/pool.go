package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rishiakkala/queuectl/queue"
)

// stopTimeout bounds how long Stop waits for in-flight jobs before returning
const stopTimeout = 30 * time.Second

// PoolConfig contains configuration for the worker pool
type PoolConfig struct {
	Workers      int           `json:"workers"`       // Number of concurrent workers
	PollInterval time.Duration `json:"poll_interval"` // Idle sleep between claim attempts
	// StalledAfter, when positive, re-queues jobs stuck in processing longer
	// than this at pool start. Jobs get stuck only when a previous worker
	// crashed mid-execution; there is no automatic background recovery.
	StalledAfter time.Duration `json:"stalled_after"`
}

// DefaultPoolConfig returns sensible defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Workers:      1,
		PollInterval: time.Second,
		StalledAfter: 0, // Recovery is opt-in: other live processes may own processing jobs
	}
}

// Pool runs a set of workers against the shared store and coordinates their
// cooperative shutdown.
type Pool struct {
	store  *queue.Store
	config PoolConfig
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *zap.SugaredLogger
}

// NewPool creates a worker pool whose workers stop when either Stop is called
// or the parent context is cancelled.
func NewPool(ctx context.Context, store *queue.Store, cfg PoolConfig, logger *zap.SugaredLogger) *Pool {
	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		store:  store,
		config: cfg,
		ctx:    poolCtx,
		cancel: cancel,
		log:    logger.Named("pool"),
	}
}

// Start recovers stalled jobs if configured, then launches the workers.
// Worker ids carry a per-process random suffix so logs from multiple worker
// processes sharing one store stay distinguishable.
func (p *Pool) Start() {
	if p.config.StalledAfter > 0 {
		n, err := p.store.RecoverStalled(p.config.StalledAfter)
		if err != nil {
			p.log.Warnw("Failed to recover stalled jobs", "error", err)
		} else if n > 0 {
			p.log.Infow("Recovered stalled jobs", "count", n, "stalled_after", p.config.StalledAfter)
		}
	}

	instance := uuid.NewString()[:8]
	for i := 1; i <= p.config.Workers; i++ {
		id := fmt.Sprintf("%s-%d", instance, i)
		w := New(id, p.store, p.config.PollInterval, p.log)

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := w.Run(p.ctx); err != nil {
				p.log.Errorw("Worker exited with error", "worker_id", id, "error", err)
			}
		}()
	}

	p.log.Infow("Worker pool started", "workers", p.config.Workers)
}

// Stop cancels the workers and waits for in-flight jobs to finish, bounded by
// stopTimeout so shutdown never blocks indefinitely.
func (p *Pool) Stop() {
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Infow("Worker pool stopped")
	case <-time.After(stopTimeout):
		p.log.Warnw("Worker pool stop timed out; jobs may still be finishing", "timeout", stopTimeout)
	}
}

// Wait blocks until every worker has exited
func (p *Pool) Wait() {
	p.wg.Wait()
}
