package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const deleteOrphansQuery = `
	DELETE FROM todos
	 WHERE NOT EXISTS (SELECT 1 FROM users WHERE users.id = todos.user_id)
`

// StartOrphanCleaner periodically removes to-do items whose owner no longer
// exists. It stops when ctx is cancelled. A non-positive interval is logged
// and no cleaner is started.
func StartOrphanCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	if interval <= 0 {
		log.Error("orphan cleaner not started", zap.Duration("interval", interval))
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, deleteOrphansQuery)
				if err != nil {
					log.Error("failed to clean orphaned todos", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned orphaned todos", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
