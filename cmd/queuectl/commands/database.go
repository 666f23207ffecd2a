package commands

import (
	"database/sql"

	"github.com/rishiakkala/queuectl/config"
	"github.com/rishiakkala/queuectl/db"
	"github.com/rishiakkala/queuectl/errors"
	"github.com/rishiakkala/queuectl/logger"
	"github.com/rishiakkala/queuectl/queue"
)

// openStore opens and migrates the configured database and wraps it in a job
// store. The caller owns the returned handle and must Close it.
func openStore() (*sql.DB, *queue.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}

	database, err := db.Open(cfg.Database.Path, logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open database at %s", cfg.Database.Path)
	}

	if err := db.Migrate(database, logger.Logger); err != nil {
		database.Close()
		return nil, nil, errors.Wrapf(err, "failed to run migrations on %s", cfg.Database.Path)
	}

	return database, queue.NewStore(database, cfg.Logs.Dir), nil
}
