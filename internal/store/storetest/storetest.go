// Package storetest is a conformance suite run against every store.Store
// implementation.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises the Store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("PostingsAscendingByDocument", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, id := range []int{4, 0, 2} {
			require.NoError(t, s.StoreDocument(ctx, store.Document{ID: id, Name: fmt.Sprintf("d%d.html", id)}))
		}
		require.NoError(t, s.StoreTerm(ctx, "chat"))
		for _, id := range []int{4, 0, 2} {
			require.NoError(t, s.StorePosting(ctx, "chat", id, float64(id+1), store.KindTF))
		}

		got, err := s.Postings(ctx, "chat", store.KindTF)
		require.NoError(t, err)
		assert.Equal(t, []store.Posting{
			{DocumentID: 0, DocumentName: "d0.html", Weight: 1},
			{DocumentID: 2, DocumentName: "d2.html", Weight: 3},
			{DocumentID: 4, DocumentName: "d4.html", Weight: 5},
		}, got)
	})

	t.Run("KindsAreSeparate", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.StoreDocument(ctx, store.Document{ID: 0, Name: "a"}))
		require.NoError(t, s.StoreTerm(ctx, "mot"))
		require.NoError(t, s.StorePosting(ctx, "mot", 0, 3, store.KindTF))

		tfidf, err := s.Postings(ctx, "mot", store.KindTFIDF)
		require.NoError(t, err)
		assert.Empty(t, tfidf)

		require.NoError(t, s.StorePosting(ctx, "mot", 0, 0.5, store.KindTFIDF))
		tfidf, err = s.Postings(ctx, "mot", store.KindTFIDF)
		require.NoError(t, err)
		require.Len(t, tfidf, 1)
		assert.InDelta(t, 0.5, tfidf[0].Weight, 1e-12)

		tf, err := s.Postings(ctx, "mot", store.KindTF)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, tf[0].Weight, 1e-12)
	})

	t.Run("PostingOverwrite", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.StoreDocument(ctx, store.Document{ID: 1, Name: "b"}))
		require.NoError(t, s.StoreTerm(ctx, "x"))
		require.NoError(t, s.StorePosting(ctx, "x", 1, 2, store.KindTFIDF))
		require.NoError(t, s.StorePosting(ctx, "x", 1, 7, store.KindTFIDF))

		got, err := s.Postings(ctx, "x", store.KindTFIDF)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.InDelta(t, 7.0, got[0].Weight, 1e-12)
	})

	t.Run("StorePostingsWritesAll", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, id := range []int{0, 1, 2} {
			require.NoError(t, s.StoreDocument(ctx, store.Document{ID: id, Name: fmt.Sprintf("d%d", id)}))
		}
		require.NoError(t, s.StoreTerm(ctx, "mot"))
		require.NoError(t, s.StorePosting(ctx, "mot", 1, 9, store.KindTFIDF))

		require.NoError(t, s.StorePostings(ctx, "mot", []store.Posting{
			{DocumentID: 2, Weight: 0.5},
			{DocumentID: 0, Weight: 1.5},
			{DocumentID: 1, Weight: 2.5},
		}, store.KindTFIDF))

		got, err := s.Postings(ctx, "mot", store.KindTFIDF)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []int{0, 1, 2}, []int{got[0].DocumentID, got[1].DocumentID, got[2].DocumentID})
		assert.InDelta(t, 2.5, got[1].Weight, 1e-12, "existing entry overwritten")
	})

	t.Run("StorePostingsIsAtomic", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.StoreDocument(ctx, store.Document{ID: 0, Name: "a"}))
		require.NoError(t, s.StoreTerm(ctx, "mot"))

		err := s.StorePostings(ctx, "mot", []store.Posting{
			{DocumentID: 0, Weight: 1},
			{DocumentID: 42, Weight: 1},
		}, store.KindTFIDF)
		require.Error(t, err)

		got, err := s.Postings(ctx, "mot", store.KindTFIDF)
		require.NoError(t, err)
		assert.Empty(t, got, "a failed batch leaves nothing behind")
	})

	t.Run("UnknownTermIsEmpty", func(t *testing.T) {
		got, err := newStore(t).Postings(context.Background(), "absent", store.KindTF)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ConcurrentStoreTermIsIdempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.StoreTerm(ctx, "course")
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}
	})

	t.Run("DocumentCountAndErase", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for id := range 3 {
			require.NoError(t, s.StoreDocument(ctx, store.Document{ID: id, Name: fmt.Sprint(id)}))
		}
		require.NoError(t, s.StoreTerm(ctx, "t"))
		require.NoError(t, s.StorePosting(ctx, "t", 1, 1, store.KindTF))

		n, err := s.DocumentCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		require.NoError(t, s.EraseAll(ctx))
		n, err = s.DocumentCount(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		got, err := s.Postings(ctx, "t", store.KindTF)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}
