package scheduler

import (
	"context"
	"database/sql"
	"log"
	"time"

	"legalconnect-engine/internal/store"
)

// PruneHistory deletes search history older than retention.
func PruneHistory(db *sql.DB, retention time.Duration, onPruned func(n int64)) Task {
	return func(ctx context.Context) error {
		n, err := store.PruneHistory(ctx, db, retention)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("[scheduler] history pruned rows=%d", n)
			if onPruned != nil {
				onPruned(n)
			}
		}
		return nil
	}
}

func Checkpoint(db *sql.DB) Task {
	return func(ctx context.Context) error {
		return store.Checkpoint(ctx, db)
	}
}
