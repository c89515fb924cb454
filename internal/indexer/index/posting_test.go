package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostingBuilderCountsOccurrences(t *testing.T) {
	b := NewPostingBuilder()
	for _, term := range []string{"chat", "chien", "chat", "chat"} {
		b.AddWord(term)
	}

	got := b.Finalize()
	assert.Equal(t, map[string]int{"chat": 3, "chien": 1}, got)
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 4, b.Total())
}

func TestFinalizeReturnsSnapshot(t *testing.T) {
	b := NewPostingBuilder()
	b.AddWord("a")
	snap := b.Finalize()

	b.AddWord("a")
	snap["b"] = 9

	assert.Equal(t, 1, snap["a"])
	assert.Equal(t, map[string]int{"a": 2}, b.Finalize())
}

func TestFinalizeEmpty(t *testing.T) {
	assert.Empty(t, NewPostingBuilder().Finalize())
}
