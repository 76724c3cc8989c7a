//go:build integration

package game

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, rdb.Ping(ctx).Err(), "redis is not reachable")
	return rdb
}

func TestRedisPersistence_SaveLoad(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	persist := NewRedisStore(rdb, "cop:test:snapshot")

	// empty storage: no snapshot yet
	_, ok, err := persist.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	s1 := New(persist, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s1.ToggleListen(ctx, 100)
	s1.AddAdmin(ctx, "alice")
	require.NotEmpty(t, s1.NewChallenge(ctx, postMsg(user(7, "Greta"), "red, car; blue")))

	// simulate a restart: fresh state, same storage
	s2 := New(persist, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s2.Load(ctx)

	s1.mu.Lock()
	want := s1.snapshotLocked()
	s1.mu.Unlock()
	s2.mu.Lock()
	got := s2.snapshotLocked()
	s2.mu.Unlock()

	require.Equal(t, want, got)
}

func TestRedisPersistence_CorruptValueFailsLoad(t *testing.T) {
	ctx := context.Background()
	rdb := newRedisClient(t)
	require.NoError(t, rdb.FlushDB(ctx).Err())

	persist := NewRedisStore(rdb, "cop:test:snapshot")
	require.NoError(t, rdb.Set(ctx, "cop:test:snapshot", "not json", 0).Err())

	_, _, err := persist.Load(ctx)
	require.Error(t, err)

	// the aggregate still starts, on defaults
	s := New(persist, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Load(ctx)
	require.Nil(t, s.challenge)
}
