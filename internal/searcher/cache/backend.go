package cache

import (
	"context"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	pkgredis "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/redis"
)

// RedisBackend shares cached results between service replicas.
type RedisBackend struct {
	client *pkgredis.Client
	ttl    time.Duration
}

func NewRedisBackend(client *pkgredis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, key)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, key, value, b.ttl)
}

func (b *RedisBackend) Flush(ctx context.Context, prefix string) (int64, error) {
	return b.client.FlushByPattern(ctx, prefix+"*")
}

// LRUBackend keeps a bounded number of results in process memory.
type LRUBackend struct {
	cache *lru.Cache[string, []byte]
}

func NewLRUBackend(size int) (*LRUBackend, error) {
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: c}, nil
}

func (b *LRUBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.cache.Get(key)
	return v, ok, nil
}

func (b *LRUBackend) Set(_ context.Context, key string, value []byte) error {
	b.cache.Add(key, value)
	return nil
}

func (b *LRUBackend) Flush(_ context.Context, prefix string) (int64, error) {
	var n int64
	for _, key := range b.cache.Keys() {
		if strings.HasPrefix(key, prefix) && b.cache.Remove(key) {
			n++
		}
	}
	return n, nil
}
