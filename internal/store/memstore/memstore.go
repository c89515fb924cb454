// Package memstore is an in-process Store used for tests and one-shot runs
// that do not need durable postings.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
)

type Store struct {
	mu       sync.RWMutex
	docs     map[int]string
	terms    map[string]struct{}
	postings [2]map[string]map[int]float64
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.docs = make(map[int]string)
	s.terms = make(map[string]struct{})
	for i := range s.postings {
		s.postings[i] = make(map[string]map[int]float64)
	}
}

func (s *Store) StoreDocument(_ context.Context, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc.Name
	return nil
}

func (s *Store) StoreTerm(_ context.Context, term string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[term] = struct{}{}
	return nil
}

func (s *Store) StorePosting(_ context.Context, term string, documentID int, weight float64, kind store.Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.postings[kind]
	if _, ok := s.terms[term]; !ok {
		return fmt.Errorf("%w: posting for unknown term %q", apperrors.ErrPersistence, term)
	}
	if _, ok := s.docs[documentID]; !ok {
		return fmt.Errorf("%w: posting for unknown document %d", apperrors.ErrPersistence, documentID)
	}
	docs, ok := table[term]
	if !ok {
		docs = make(map[int]float64)
		table[term] = docs
	}
	docs[documentID] = weight
	return nil
}

// StorePostings validates every posting before writing any of them.
func (s *Store) StorePostings(_ context.Context, term string, postings []store.Posting, kind store.Kind) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.terms[term]; !ok {
		return fmt.Errorf("%w: posting for unknown term %q", apperrors.ErrPersistence, term)
	}
	for _, p := range postings {
		if _, ok := s.docs[p.DocumentID]; !ok {
			return fmt.Errorf("%w: posting for unknown document %d", apperrors.ErrPersistence, p.DocumentID)
		}
	}
	table := s.postings[kind]
	docs, ok := table[term]
	if !ok {
		docs = make(map[int]float64, len(postings))
		table[term] = docs
	}
	for _, p := range postings {
		docs[p.DocumentID] = p.Weight
	}
	return nil
}

func (s *Store) Postings(_ context.Context, term string, kind store.Kind) ([]store.Posting, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.postings[kind][term]
	out := make([]store.Posting, 0, len(docs))
	for id, w := range docs {
		out = append(out, store.Posting{DocumentID: id, DocumentName: s.docs[id], Weight: w})
	}
	slices.SortFunc(out, func(a, b store.Posting) int { return a.DocumentID - b.DocumentID })
	return out, nil
}

func (s *Store) DocumentCount(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *Store) EraseAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func checkKind(kind store.Kind) error {
	if kind != store.KindTF && kind != store.KindTFIDF {
		return fmt.Errorf("%w: unknown posting kind %v", apperrors.ErrInvalidInput, kind)
	}
	return nil
}
