package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/searcher/tfidf"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store/memstore"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource serves canned postings and fails for terms in broken.
type fixedSource struct {
	postings map[string][]store.Posting
	broken   map[string]bool
}

func (f fixedSource) Postings(_ context.Context, term string) ([]store.Posting, error) {
	if f.broken[term] {
		return nil, apperrors.ErrPersistence
	}
	return f.postings[term], nil
}

func names(t *testing.T, r *SearchResult) []string {
	t.Helper()
	out := make([]string, len(r.Results))
	for i, d := range r.Results {
		out[i] = d.DocumentName
	}
	return out
}

func TestSearchRanksByWeightedSum(t *testing.T) {
	src := fixedSource{postings: map[string][]store.Posting{
		"chat":  {{DocumentID: 0, DocumentName: "a", Weight: 1}, {DocumentID: 2, DocumentName: "c", Weight: 1}},
		"chien": {{DocumentID: 1, DocumentName: "b", Weight: 3}, {DocumentID: 2, DocumentName: "c", Weight: 1}},
	}}
	e := New(parser.New(), src)

	res, err := e.Search(context.Background(), "chat chien")
	require.NoError(t, err)
	// c: 5*1 + 5*1 = 10, b: 5*3 = 15, a: 5
	assert.Equal(t, []string{"b", "c", "a"}, names(t, res))
	assert.Equal(t, 3, res.TotalHits)
	assert.Equal(t, 15.0, res.Results[0].Relevance)
}

func TestSearchEmptyQuery(t *testing.T) {
	res, err := New(parser.New(), fixedSource{}).Search(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.NotNil(t, res.Results)
}

func TestSearchSkipsFailedKeyword(t *testing.T) {
	src := fixedSource{
		postings: map[string][]store.Posting{"ok": {{DocumentID: 4, DocumentName: "e", Weight: 2}}},
		broken:   map[string]bool{"cassé": true},
	}
	res, err := New(parser.New(), src).Search(context.Background(), "ok cassé")
	require.NoError(t, err)
	assert.Equal(t, []string{"e"}, names(t, res))

	_, err = New(parser.New(), src).Search(context.Background(), "cassé")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
}

func TestSearchOverTFIDFStore(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	for id, name := range []string{"a.html", "b.html", "c.html", "d.html"} {
		require.NoError(t, st.StoreDocument(ctx, store.Document{ID: id, Name: name}))
	}
	require.NoError(t, st.StoreTerm(ctx, "rare"))
	require.NoError(t, st.StoreTerm(ctx, "commun"))
	require.NoError(t, st.StorePosting(ctx, "rare", 2, 1, store.KindTF))
	for id := range 4 {
		require.NoError(t, st.StorePosting(ctx, "commun", id, 5, store.KindTF))
	}

	e := New(parser.New(), tfidf.NewProvider(st, nil))
	res, err := e.Search(ctx, "rare commun")
	require.NoError(t, err)
	// commun is in every document so its idf floors to zero
	assert.Equal(t, "c.html", res.Results[0].DocumentName)
	assert.Greater(t, res.Results[0].Relevance, 0.0)
	assert.Len(t, res.Results, 4)
	for _, d := range res.Results[1:] {
		assert.Zero(t, d.Relevance)
	}
}

func TestRunBatchWritesOneFilePerLine(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(queries, []byte("chat\n\nchien chat\n"), 0o644))
	src := fixedSource{postings: map[string][]store.Posting{
		"chat":  {{DocumentID: 0, DocumentName: "a", Weight: 1}},
		"chien": {{DocumentID: 1, DocumentName: "b", Weight: 2}},
	}}
	out := filepath.Join(dir, "results", "run1")

	stats, err := New(parser.New(), src).RunBatch(context.Background(), queries, out)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Queries)

	read := func(i int) string {
		data, err := os.ReadFile(filepath.Join(out, ResultFileName(i)))
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "a\n", read(1))
	assert.Equal(t, "", read(2))
	assert.Equal(t, "b\na\n", read(3))
}

func TestRunBatchLongQueryLine(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "queries.txt")
	long := strings.Repeat("chien ", 20000) + "chat"
	require.NoError(t, os.WriteFile(queries, []byte(long+"\nchat\n"), 0o644))
	src := fixedSource{postings: map[string][]store.Posting{
		"chat": {{DocumentID: 0, DocumentName: "a", Weight: 1}},
	}}

	stats, err := New(parser.New(), src).RunBatch(context.Background(), queries, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Queries)
	assert.Zero(t, stats.Failed)

	for i := 1; i <= 2; i++ {
		data, err := os.ReadFile(filepath.Join(dir, ResultFileName(i)))
		require.NoError(t, err)
		assert.Equal(t, "a\n", string(data))
	}
}

func TestRunBatchMissingQueryFile(t *testing.T) {
	_, err := New(parser.New(), fixedSource{}).RunBatch(context.Background(), filepath.Join(t.TempDir(), "none.txt"), t.TempDir())
	assert.True(t, errors.Is(err, apperrors.ErrSourceNotFound))
}

func TestRunBatchUnwritableOutputRunsNothing(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "q.txt")
	require.NoError(t, os.WriteFile(queries, []byte("chat\n"), 0o644))
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	stats, err := New(parser.New(), fixedSource{}).RunBatch(context.Background(), queries, filepath.Join(blocker, "out"))
	assert.ErrorIs(t, err, apperrors.ErrOutputUnavailable)
	assert.Zero(t, stats.Queries)
}

func TestRunBatchFailedQueryWritesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	queries := filepath.Join(dir, "q.txt")
	require.NoError(t, os.WriteFile(queries, []byte("cassé\n"), 0o644))
	src := fixedSource{broken: map[string]bool{"cassé": true}}

	stats, err := New(parser.New(), src).RunBatch(context.Background(), queries, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	data, err := os.ReadFile(filepath.Join(dir, ResultFileName(1)))
	require.NoError(t, err)
	assert.Empty(t, data)
}
