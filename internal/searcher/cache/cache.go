// Package cache memoizes full search results per normalized query, backed
// by Redis or an in-process LRU.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
)

const keyPrefix = "search:"

// Backend stores encoded results.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	// Flush removes every key starting with prefix.
	Flush(ctx context.Context, prefix string) (int64, error)
}

type QueryCache struct {
	backend Backend
	key     func(query string) string
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

type Option func(*QueryCache)

// WithExpansion keys entries by ExpandedKey. Use it when the query parser
// expands phrases, since the expander sees the phrase text rather than its
// normalized terms.
func WithExpansion() Option {
	return func(c *QueryCache) { c.key = ExpandedKey }
}

func New(b Backend, m *metrics.Metrics, opts ...Option) *QueryCache {
	c := &QueryCache{
		backend: b,
		key:     Key,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *QueryCache) Get(ctx context.Context, query string) (*executor.SearchResult, bool) {
	key := c.key(query)
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
	}
	if !ok {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheHit()
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, query string, result *executor.SearchResult) {
	key := c.key(query)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for query or runs compute, sharing
// one computation among concurrent callers of the same key. The boolean
// reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	compute func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, query); ok {
		return result, true, nil
	}
	val, err, _ := c.group.Do(c.key(query), func() (any, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.backend.Flush(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	c.metrics.CacheMiss()
}

// Key identifies query by its normalized terms, phrase by phrase, so that
// queries differing only in case, punctuation or truncated suffixes share
// an entry.
func Key(query string) string {
	phrases := strings.Split(query, parser.PhraseSeparator)
	parts := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		var terms []string
		for term := range tokenizer.Terms(phrase, nil) {
			terms = append(terms, term)
		}
		if len(terms) > 0 {
			parts = append(parts, strings.Join(terms, " "))
		}
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// ExpandedKey identifies query by its trimmed phrases, the exact text handed
// to a synonym expander. Queries that normalize to the same terms but expand
// differently get different entries.
func ExpandedKey(query string) string {
	var phrases []string
	for _, phrase := range strings.Split(query, parser.PhraseSeparator) {
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			phrases = append(phrases, phrase)
		}
	}
	hash := sha256.Sum256([]byte("expanded\x00" + strings.Join(phrases, "\x00")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
