// Package store defines the persistence contract shared by the indexer and
// the search engine, together with its value types.
package store

import (
	"context"
	"fmt"
)

// Kind selects which posting table an operation addresses.
type Kind int

const (
	// KindTF holds raw term frequencies written at index time.
	KindTF Kind = iota
	// KindTFIDF holds tf-idf weights memoized at query time.
	KindTFIDF
)

func (k Kind) String() string {
	switch k {
	case KindTF:
		return "tf"
	case KindTFIDF:
		return "tfidf"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Document is an indexed corpus file. ID is its position in the sorted
// corpus listing.
type Document struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Posting is one (document, weight) entry of a term's posting list.
type Posting struct {
	DocumentID   int     `json:"documentId"`
	DocumentName string  `json:"documentName"`
	Weight       float64 `json:"weight"`
}

// Store persists documents, terms and both kinds of postings.
//
// StoreTerm must be idempotent under concurrent calls for the same term.
// StorePosting overwrites an existing (term, document) entry of the same
// kind. StorePostings does the same for a whole list and is atomic: either
// every posting is written or none is. Postings returns entries ordered by
// ascending DocumentID.
type Store interface {
	StoreDocument(ctx context.Context, doc Document) error
	StoreTerm(ctx context.Context, term string) error
	StorePosting(ctx context.Context, term string, documentID int, weight float64, kind Kind) error
	StorePostings(ctx context.Context, term string, postings []Posting, kind Kind) error
	Postings(ctx context.Context, term string, kind Kind) ([]Posting, error)
	DocumentCount(ctx context.Context) (int, error)
	EraseAll(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
