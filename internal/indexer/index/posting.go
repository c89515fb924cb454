// Package index accumulates per-document term frequencies.
package index

import "maps"

// PostingBuilder counts term occurrences for a single document. It is not
// safe for concurrent use; each worker owns its own builder.
type PostingBuilder struct {
	freqs map[string]int
	total int
}

func NewPostingBuilder() *PostingBuilder {
	return &PostingBuilder{freqs: make(map[string]int)}
}

// AddWord counts one occurrence of term. Filtering empty and stop-word
// terms is left to the caller.
func (b *PostingBuilder) AddWord(term string) {
	b.freqs[term]++
	b.total++
}

// Len returns the number of distinct terms seen.
func (b *PostingBuilder) Len() int {
	return len(b.freqs)
}

// Total returns the number of occurrences added.
func (b *PostingBuilder) Total() int {
	return b.total
}

// Finalize returns a copy of the term frequencies. Later AddWord calls do
// not affect the returned map.
func (b *PostingBuilder) Finalize() map[string]int {
	return maps.Clone(b.freqs)
}
