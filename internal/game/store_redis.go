package game

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the snapshot under a single key. Same JSON document
// as the file backend, so the state can be moved between backends.
type RedisStore struct {
	rdb *redis.Client
	key string
}

func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = "cop:state:snapshot"
	}
	return &RedisStore{rdb: rdb, key: key}
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	b, err := encodeSnapshot(snap, "redis:"+s.key)
	if err != nil {
		return err
	}
	// no TTL, game state has no expiry
	return s.rdb.Set(ctx, s.key, b, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, bool, error) {
	val, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	snap, err := decodeSnapshot(val)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}
