package shortlist

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KV is the persistence collaborator behind a Book. Get returns nil for an
// absent key. A Set must be visible to the next Get on the same KV.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

type MemoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string][]byte{}} }

func (kv *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (kv *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	kv.m[key] = cp
	return nil
}

// RedisKV stores each key as a plain string value under Prefix.
type RedisKV struct {
	Client *redis.Client
	Prefix string
}

func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{Client: client, Prefix: prefix}
}

// NewRedisKVFromURL parses a redis:// URL.
func NewRedisKVFromURL(rawURL, prefix string) (*RedisKV, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return NewRedisKV(redis.NewClient(opts), prefix), nil
}

func (kv *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := kv.Client.Get(ctx, kv.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (kv *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return kv.Client.Set(ctx, kv.Prefix+key, value, 0).Err()
}

func (kv *RedisKV) Ping(ctx context.Context) error {
	return kv.Client.Ping(ctx).Err()
}

func (kv *RedisKV) Close() error { return kv.Client.Close() }
