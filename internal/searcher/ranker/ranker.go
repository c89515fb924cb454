// Package ranker accumulates weighted posting lists into per-document
// relevance scores.
package ranker

import (
	"cmp"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
)

type RelevantDocument struct {
	DocumentID   int     `json:"documentId"`
	DocumentName string  `json:"documentName"`
	Relevance    float64 `json:"relevance"`
}

// Merger folds one keyword's postings at a time into an accumulator. A
// Merger serves a single query and is not safe for concurrent use.
type Merger interface {
	// AddDocuments merges postings, ordered by ascending DocumentID, scaled
	// by the keyword weight.
	AddDocuments(weight int, postings []store.Posting)
	// CalculateRelevantDocs returns the accumulated documents ordered by
	// DocumentID and resets the merger.
	CalculateRelevantDocs() []RelevantDocument
}

// Factory returns a fresh Merger for each query.
type Factory func() Merger

// InnerProduct scores a document as the sum over keywords of
// weight × posting weight. A document missing from a keyword's postings
// gets nothing from that keyword.
type InnerProduct struct {
	acc []RelevantDocument
}

func NewInnerProduct() Merger {
	return &InnerProduct{}
}

func (m *InnerProduct) AddDocuments(weight int, postings []store.Posting) {
	if len(postings) == 0 {
		return
	}
	w := float64(weight)
	merged := make([]RelevantDocument, 0, len(m.acc)+len(postings))
	i, j := 0, 0
	for i < len(m.acc) && j < len(postings) {
		a, p := m.acc[i], postings[j]
		switch {
		case a.DocumentID < p.DocumentID:
			merged = append(merged, a)
			i++
		case a.DocumentID > p.DocumentID:
			merged = append(merged, fromPosting(w, p))
			j++
		default:
			a.Relevance += w * p.Weight
			merged = append(merged, a)
			i++
			j++
		}
	}
	merged = append(merged, m.acc[i:]...)
	for ; j < len(postings); j++ {
		merged = append(merged, fromPosting(w, postings[j]))
	}
	m.acc = merged
}

func (m *InnerProduct) CalculateRelevantDocs() []RelevantDocument {
	out := m.acc
	m.acc = nil
	return out
}

func fromPosting(w float64, p store.Posting) RelevantDocument {
	return RelevantDocument{
		DocumentID:   p.DocumentID,
		DocumentName: p.DocumentName,
		Relevance:    w * p.Weight,
	}
}

// Sort orders docs by descending relevance, ties by ascending DocumentID.
func Sort(docs []RelevantDocument) {
	slices.SortFunc(docs, func(a, b RelevantDocument) int {
		if c := cmp.Compare(b.Relevance, a.Relevance); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
}
