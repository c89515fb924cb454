package ranker

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postings(pairs ...float64) []store.Posting {
	out := make([]store.Posting, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, store.Posting{DocumentID: int(pairs[i]), Weight: pairs[i+1]})
	}
	return out
}

func TestInnerProductMerge(t *testing.T) {
	m := NewInnerProduct()
	m.AddDocuments(1, postings(1, 2.0, 3, 1.0))
	m.AddDocuments(2, postings(2, 5.0, 3, 4.0))

	got := m.CalculateRelevantDocs()
	require.Len(t, got, 3)
	assert.Equal(t, []RelevantDocument{
		{DocumentID: 1, Relevance: 2.0},
		{DocumentID: 2, Relevance: 10.0},
		{DocumentID: 3, Relevance: 9.0},
	}, got)
}

func TestInnerProductKeepsAccumulatorTail(t *testing.T) {
	m := NewInnerProduct()
	m.AddDocuments(1, postings(5, 1, 8, 1, 9, 1))
	m.AddDocuments(3, postings(0, 1, 8, 2))

	got := m.CalculateRelevantDocs()
	ids := make([]int, len(got))
	for i, d := range got {
		ids[i] = d.DocumentID
	}
	assert.Equal(t, []int{0, 5, 8, 9}, ids)
	assert.Equal(t, 3.0, got[0].Relevance)
	assert.Equal(t, 7.0, got[2].Relevance)
	assert.Equal(t, 1.0, got[3].Relevance)
}

func TestCalculateResets(t *testing.T) {
	m := NewInnerProduct()
	m.AddDocuments(5, postings(1, 1))
	require.Len(t, m.CalculateRelevantDocs(), 1)
	assert.Empty(t, m.CalculateRelevantDocs())
}

func TestEmptyPostingsAreNoop(t *testing.T) {
	m := NewInnerProduct()
	m.AddDocuments(5, nil)
	m.AddDocuments(5, postings(2, 1))
	m.AddDocuments(1, nil)
	assert.Equal(t, []RelevantDocument{{DocumentID: 2, Relevance: 5}}, m.CalculateRelevantDocs())
}

func TestSortDescendingWithIDTieBreak(t *testing.T) {
	docs := []RelevantDocument{
		{DocumentID: 4, Relevance: 1},
		{DocumentID: 2, Relevance: 3},
		{DocumentID: 1, Relevance: 1},
		{DocumentID: 3, Relevance: 3},
	}
	Sort(docs)
	ids := make([]int, len(docs))
	for i, d := range docs {
		ids[i] = d.DocumentID
	}
	assert.Equal(t, []int{2, 3, 1, 4}, ids)
}

func BenchmarkInnerProduct(b *testing.B) {
	lists := make([][]store.Posting, 8)
	for k := range lists {
		for id := k; id < 20000; id += k + 1 {
			lists[k] = append(lists[k], store.Posting{DocumentID: id, Weight: 1})
		}
	}
	b.ResetTimer()
	for b.Loop() {
		m := NewInnerProduct()
		for k, l := range lists {
			m.AddDocuments(k+1, l)
		}
		Sort(m.CalculateRelevantDocs())
	}
}
