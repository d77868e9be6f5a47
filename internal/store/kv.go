package store

import (
	"context"
	"database/sql"
	"errors"
)

// KV is a key/value table usable as a shortlist backend.
type KV struct {
	DB *sql.DB
}

func NewKV(db *sql.DB) *KV { return &KV{DB: db} }

// Get returns nil for a missing key.
func (kv *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := kv.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ? LIMIT 1;`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (kv *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := kv.DB.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, key, value, nowText())
	return err
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	_, err := kv.DB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key)
	return err
}
