// Package indexer builds the term-frequency index of a corpus with a fixed
// pool of workers sharing one atomic cursor.
package indexer

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
)

// Stats summarises one indexing run.
type Stats struct {
	Documents     int           `json:"documents"`
	Indexed       int           `json:"indexed"`
	Failed        int           `json:"failed"`
	ParseFailures int           `json:"parseFailures"`
	Postings      int           `json:"postings"`
	Duration      time.Duration `json:"duration"`
}

type Engine struct {
	store   store.Store
	parser  parser.Parser
	stop    tokenizer.StopWords
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Engine)

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine returns an engine running workers goroutines (at least one).
func NewEngine(st store.Store, p parser.Parser, stop tokenizer.StopWords, workers int, opts ...Option) *Engine {
	if workers < 1 {
		workers = 1
	}
	e := &Engine{
		store:   st,
		parser:  p,
		stop:    stop,
		workers: workers,
		logger:  slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type docResult struct {
	ok          bool
	parseFailed bool
	postings    int
}

// Run indexes sources, assigning each the id of its position in the slice.
// It returns once every worker has drained the cursor. Per-document
// failures are logged and counted; only cancellation of ctx is returned.
func (e *Engine) Run(ctx context.Context, sources []Source) (Stats, error) {
	start := time.Now()
	n := int64(len(sources))
	var (
		cursor      atomic.Int64
		indexed     atomic.Int64
		failed      atomic.Int64
		parseFailed atomic.Int64
		postings    atomic.Int64
	)

	e.logger.Info("index run started", "documents", n, "workers", e.workers)

	var g errgroup.Group
	for w := 0; w < e.workers; w++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				i := cursor.Add(1) - 1
				if i >= n {
					return nil
				}
				res := e.indexDocument(ctx, int(i), sources[i])
				if res.ok {
					indexed.Add(1)
				} else {
					failed.Add(1)
				}
				if res.parseFailed {
					parseFailed.Add(1)
				}
				postings.Add(int64(res.postings))
				e.metrics.DocumentIndexed(res.ok, res.postings)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats := Stats{
		Documents:     len(sources),
		Indexed:       int(indexed.Load()),
		Failed:        int(failed.Load()),
		ParseFailures: int(parseFailed.Load()),
		Postings:      int(postings.Load()),
		Duration:      time.Since(start),
	}
	e.metrics.ObserveIndexRun(stats.Duration)
	if err := ctx.Err(); err != nil {
		e.logger.Warn("index run cancelled", "indexed", stats.Indexed, "documents", stats.Documents)
		return stats, err
	}
	e.logger.Info("index run completed",
		"documents", stats.Documents,
		"indexed", stats.Indexed,
		"failed", stats.Failed,
		"parse_failures", stats.ParseFailures,
		"postings", stats.Postings,
		"duration", stats.Duration,
	)
	return stats, nil
}

func (e *Engine) indexDocument(ctx context.Context, id int, src Source) docResult {
	var res docResult
	logger := e.logger.With("doc_id", id, "name", src.Name)

	fragments, err := e.parser.Parse(ctx, src.Path)
	if err != nil {
		logger.Warn("parse failed, indexing as empty", "error", err)
		res.parseFailed = true
		fragments = nil
	}

	b := index.NewPostingBuilder()
	for _, fragment := range fragments {
		for term := range tokenizer.Terms(fragment, e.stop) {
			b.AddWord(term)
		}
	}

	if err := e.store.StoreDocument(ctx, store.Document{ID: id, Name: src.Name}); err != nil {
		logger.Error("storing document failed, skipping its postings", "error", err)
		return res
	}
	res.ok = true

	freqs := b.Finalize()
	for _, term := range slices.Sorted(maps.Keys(freqs)) {
		if err := e.store.StoreTerm(ctx, term); err != nil {
			logger.Error("storing term failed", "term", term, "error", err)
			continue
		}
		if err := e.store.StorePosting(ctx, term, id, float64(freqs[term]), store.KindTF); err != nil {
			logger.Error("storing posting failed", "term", term, "error", err)
			continue
		}
		res.postings++
	}
	logger.Debug("document indexed", "terms", len(freqs), "occurrences", b.Total())
	return res
}
