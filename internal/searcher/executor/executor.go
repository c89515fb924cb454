// Package executor ranks documents for a query: it parses the query into
// weighted keywords, fetches each keyword's tf-idf postings and folds them
// through a fresh Merger.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
)

type SearchResult struct {
	Query     string                    `json:"query"`
	Keywords  []parser.WeightedKeyword  `json:"keywords"`
	TotalHits int                       `json:"totalHits"`
	Results   []ranker.RelevantDocument `json:"results"`
}

// PostingSource supplies the weighted postings of a term ordered by
// document id.
type PostingSource interface {
	Postings(ctx context.Context, term string) ([]store.Posting, error)
}

type Executor struct {
	parser    *parser.QueryParser
	postings  PostingSource
	newMerger ranker.Factory
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Executor)

func WithMerger(f ranker.Factory) Option {
	return func(e *Executor) { e.newMerger = f }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

func New(qp *parser.QueryParser, src PostingSource, opts ...Option) *Executor {
	e := &Executor{
		parser:    qp,
		postings:  src,
		newMerger: ranker.NewInnerProduct,
		logger:    slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns every document matching at least one keyword, most
// relevant first. A keyword whose postings cannot be read is skipped; the
// search fails only when every keyword fails.
func (e *Executor) Search(ctx context.Context, query string) (*SearchResult, error) {
	start := time.Now()
	keywords := e.parser.Parse(ctx, query)
	result := &SearchResult{
		Query:    query,
		Keywords: keywords,
		Results:  []ranker.RelevantDocument{},
	}
	if len(keywords) == 0 {
		e.metrics.ObserveSearch("zero_result", time.Since(start), 0)
		return result, nil
	}

	merger := e.newMerger()
	var failures int
	var lastErr error
	for _, kw := range keywords {
		postings, err := e.postings.Postings(ctx, kw.Term)
		if err != nil {
			failures++
			lastErr = err
			e.logger.Warn("keyword lookup failed, skipping", "term", kw.Term, "error", err)
			continue
		}
		merger.AddDocuments(kw.Weight, postings)
	}
	if failures == len(keywords) {
		e.metrics.ObserveSearch("error", time.Since(start), 0)
		return nil, fmt.Errorf("searching %q: %w", query, lastErr)
	}

	docs := merger.CalculateRelevantDocs()
	ranker.Sort(docs)
	if docs != nil {
		result.Results = docs
	}
	result.TotalHits = len(docs)

	outcome := "ok"
	if len(docs) == 0 {
		outcome = "zero_result"
	}
	e.metrics.ObserveSearch(outcome, time.Since(start), len(docs))
	e.logger.Info("query executed",
		"query", query,
		"keywords", len(keywords),
		"results", len(docs),
		"elapsed", time.Since(start),
	)
	return result, nil
}
