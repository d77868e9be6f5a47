package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalconnect-engine/internal/domain"
	"legalconnect-engine/internal/store"
)

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func TestEvery_RunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, time.Hour, "test", func(context.Context) error {
			n.Add(1)
			return nil
		})
		close(done)
	}()

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestCron_RunsScheduledJob(t *testing.T) {
	c := NewCron(parser)
	var n atomic.Int32
	require.NoError(t, c.Add("tick", "@every 1s", func(context.Context) error {
		n.Add(1)
		return nil
	}))
	require.NoError(t, c.Add("off", "", func(context.Context) error { return errors.New("never") }))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return n.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	assert.NoError(t, <-errCh)
}

func TestCron_RunNow(t *testing.T) {
	c := NewCron(parser)
	called := false
	require.NoError(t, c.Add("prune", "@daily", func(context.Context) error {
		called = true
		return nil
	}))
	require.NoError(t, c.RunNow(context.Background(), "prune"))
	assert.True(t, called)
	assert.Error(t, c.RunNow(context.Background(), "missing"))
}

func TestCron_BadSpec(t *testing.T) {
	c := NewCron(parser)
	assert.Error(t, c.Add("bad", "not a spec", func(context.Context) error { return nil }))
}

func TestPruneHistoryTask(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	u, err := store.CreateUser(ctx, db.Pool, domain.User{Name: "a", Email: "a@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	_, err = db.Pool.ExecContext(ctx,
		`INSERT INTO search_history(user_id, created_at) VALUES(?, ?);`, u.ID, "2001-01-01T00:00:00.000000000Z")
	require.NoError(t, err)
	_, err = store.SaveHistory(ctx, db.Pool, domain.SearchRecord{UserID: u.ID})
	require.NoError(t, err)

	var pruned int64
	task := PruneHistory(db.Pool, 24*time.Hour, func(n int64) { pruned = n })
	require.NoError(t, task(ctx))
	assert.Equal(t, int64(1), pruned)

	left, err := store.ListHistory(ctx, db.Pool, u.ID)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
