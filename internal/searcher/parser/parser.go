// Package parser turns a query string into weighted keywords, optionally
// expanded with related terms from a synonym service.
package parser

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/indexer/tokenizer"
)

// Origin records where a keyword came from.
type Origin int

const (
	Literal Origin = iota
	Expansion
)

func (o Origin) String() string {
	if o == Expansion {
		return "expansion"
	}
	return "literal"
}

type WeightedKeyword struct {
	Term   string `json:"term"`
	Weight int    `json:"weight"`
	Origin Origin `json:"-"`
}

// Expander returns labels related to a query phrase. Labels may hold
// several words.
type Expander interface {
	RelatedTerms(ctx context.Context, phrase string) ([]string, error)
}

const (
	DefaultLiteralWeight   = 5
	DefaultExpansionWeight = 1
)

// PhraseSeparator splits a query into the phrases sent to the Expander.
const PhraseSeparator = ","

type QueryParser struct {
	expander        Expander
	literalWeight   int
	expansionWeight int
	logger          *slog.Logger
}

type Option func(*QueryParser)

// WithExpander enables expansion through e.
func WithExpander(e Expander) Option {
	return func(p *QueryParser) { p.expander = e }
}

func WithWeights(literal, expansion int) Option {
	return func(p *QueryParser) {
		p.literalWeight = literal
		p.expansionWeight = expansion
	}
}

func New(opts ...Option) *QueryParser {
	p := &QueryParser{
		literalWeight:   DefaultLiteralWeight,
		expansionWeight: DefaultExpansionWeight,
		logger:          slog.Default().With("component", "query-parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Expands reports whether the parser consults an Expander.
func (p *QueryParser) Expands() bool {
	return p.expander != nil
}

// Parse returns the literal keywords of query in order, followed by any
// expansion keywords. Repeated literal words are kept, each contributing
// its weight. Expansion terms are unique and never equal a literal term.
// Expander failures are logged and leave the query unexpanded.
func (p *QueryParser) Parse(ctx context.Context, query string) []WeightedKeyword {
	var keywords []WeightedKeyword
	literals := make(map[string]struct{})
	for term := range tokenizer.Terms(query, nil) {
		keywords = append(keywords, WeightedKeyword{Term: term, Weight: p.literalWeight, Origin: Literal})
		literals[term] = struct{}{}
	}
	if p.expander == nil || len(keywords) == 0 {
		return keywords
	}

	seen := make(map[string]struct{})
	for _, phrase := range strings.Split(query, PhraseSeparator) {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		labels, err := p.expander.RelatedTerms(ctx, phrase)
		if err != nil {
			p.logger.Warn("expansion failed, using literal keywords only", "phrase", phrase, "error", err)
			continue
		}
		for _, label := range labels {
			for term := range tokenizer.Terms(label, nil) {
				if _, ok := literals[term]; ok {
					continue
				}
				if _, ok := seen[term]; ok {
					continue
				}
				seen[term] = struct{}{}
				keywords = append(keywords, WeightedKeyword{Term: term, Weight: p.expansionWeight, Origin: Expansion})
			}
		}
	}
	p.logger.Debug("query parsed", "query", query, "keywords", len(keywords), "expansions", len(seen))
	return keywords
}
