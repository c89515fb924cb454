// Package tfidf serves tf-idf posting lists, computing them from the tf
// postings on first use and writing them back to the store.
package tfidf

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/metrics"
)

type Provider struct {
	store   store.Store
	flight  singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewProvider(st store.Store, m *metrics.Metrics) *Provider {
	return &Provider{
		store:   st,
		metrics: m,
		logger:  slog.Default().With("component", "tfidf"),
	}
}

// IDF returns ln(documents / (1 + documentFrequency)), floored at zero so
// that weights stay non-negative for terms present in nearly every document.
func IDF(documents, documentFrequency int) float64 {
	if documents <= 0 {
		return 0
	}
	return math.Max(0, math.Log(float64(documents)/float64(1+documentFrequency)))
}

// Postings returns the tf-idf postings of term ordered by document id.
// Memoized postings are returned as stored. Otherwise they are derived from
// the tf postings and written back in one batch, so a memo is either
// complete or absent. Concurrent callers for the same term share one
// lookup; it runs detached from any caller's cancellation, and each caller
// stops waiting when its own ctx is done. A failed write-back is logged and
// the computed postings are still returned. The returned slice must not be
// modified.
func (p *Provider) Postings(ctx context.Context, term string) ([]store.Posting, error) {
	shared := context.WithoutCancel(ctx)
	ch := p.flight.DoChan(term, func() (any, error) {
		memo, err := p.store.Postings(shared, term, store.KindTFIDF)
		if err != nil {
			return nil, err
		}
		if len(memo) > 0 {
			p.metrics.TFIDFLookup("memoized")
			return memo, nil
		}
		return p.compute(shared, term)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]store.Posting), nil
	}
}

func (p *Provider) compute(ctx context.Context, term string) ([]store.Posting, error) {
	tf, err := p.store.Postings(ctx, term, store.KindTF)
	if err != nil {
		return nil, err
	}
	if len(tf) == 0 {
		return nil, nil
	}
	documents, err := p.store.DocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("computing idf of %q: %w", term, err)
	}
	if documents == 0 {
		return nil, nil
	}

	idf := IDF(documents, len(tf))
	out := make([]store.Posting, len(tf))
	for i, posting := range tf {
		posting.Weight *= idf
		out[i] = posting
	}
	if err := p.store.StorePostings(ctx, term, out, store.KindTFIDF); err != nil {
		p.logger.Warn("memoizing tf-idf postings failed", "term", term, "postings", len(out), "error", err)
	}
	p.metrics.TFIDFLookup("computed")
	p.logger.Debug("tf-idf computed", "term", term, "documents", documents, "df", len(tf), "idf", idf)
	return out, nil
}
