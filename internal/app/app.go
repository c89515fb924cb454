// Package app assembles stores, caches and the query pipeline from
// configuration for the command-line tools and the search service.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/tfidf"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store/memstore"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store/sqlstore"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/synonym"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/sqlite"
)

// OpenStore connects to the configured backend and migrates its schema.
func OpenStore(ctx context.Context, cfg config.StoreConfig, pg config.PostgresConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memstore.New(), nil
	case "sqlite":
		client, err := sqlite.New(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		st, err := sqlstore.OpenSQLite(ctx, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		client, err := postgres.New(ctx, pg)
		if err != nil {
			return nil, err
		}
		st, err := sqlstore.OpenPostgres(ctx, client)
		if err != nil {
			client.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewQueryCache returns a Redis-backed cache when Redis is enabled and
// reachable, and an in-process LRU otherwise. Entries are keyed by phrase
// text when expansion is on. The returned Redis client is
// nil when the LRU is used.
func NewQueryCache(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*cache.QueryCache, *pkgredis.Client, error) {
	var opts []cache.Option
	if cfg.Search.Expand {
		opts = append(opts, cache.WithExpansion())
	}
	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err == nil {
			slog.Info("search cache enabled", "backend", "redis", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
			return cache.New(cache.NewRedisBackend(client, cfg.Redis.CacheTTL), m, opts...), client, nil
		}
		slog.Warn("redis unavailable, falling back to in-process cache", "error", err)
	}
	backend, err := cache.NewLRUBackend(cfg.Search.CacheSize)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("search cache enabled", "backend", "lru", "size", cfg.Search.CacheSize)
	return cache.New(backend, m, opts...), nil, nil
}

// NewQueryParser builds the keyword parser. The synonym client is returned
// only when expansion is enabled.
func NewQueryParser(cfg *config.Config, m *metrics.Metrics) (*parser.QueryParser, *synonym.Client) {
	opts := []parser.Option{parser.WithWeights(cfg.Search.LiteralWeight, cfg.Search.SynonymWeight)}
	var client *synonym.Client
	if cfg.Search.Expand {
		client = synonym.New(synonym.Config{
			Endpoint:         cfg.Synonyms.Endpoint,
			Language:         cfg.Synonyms.Language,
			Timeout:          cfg.Synonyms.Timeout,
			MaxRetries:       cfg.Synonyms.MaxRetries,
			FailureThreshold: cfg.Synonyms.FailureThreshold,
			ResetTimeout:     cfg.Synonyms.ResetTimeout,
		}, m)
		opts = append(opts, parser.WithExpander(client))
	}
	return parser.New(opts...), client
}

// NewExecutor wires the query pipeline over st.
func NewExecutor(cfg *config.Config, st store.Store, m *metrics.Metrics) (*executor.Executor, *synonym.Client) {
	qp, client := NewQueryParser(cfg, m)
	return executor.New(qp, tfidf.NewProvider(st, m), executor.WithMetrics(m)), client
}
