// Package sqlstore implements store.Store on database/sql for PostgreSQL
// (lib/pq) and SQLite (modernc.org/sqlite).
//
// Schema:
//
//	documents      (id PK, name)
//	terms          (term PK)
//	tf_postings    (term FK, document_id FK, weight) PK (term, document_id)
//	tfidf_postings (term FK, document_id FK, weight) PK (term, document_id)
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/sqlite"
)

// Dialect captures the differences between the supported databases.
type Dialect struct {
	Name              string
	NumberedParams    bool
	IsUniqueViolation func(error) bool
}

var (
	Postgres = Dialect{Name: "postgres", NumberedParams: true, IsUniqueViolation: postgres.IsUniqueViolation}
	SQLite   = Dialect{Name: "sqlite", IsUniqueViolation: sqlite.IsUniqueViolation}
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		id   INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS terms (
		term TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS tf_postings (
		term        TEXT NOT NULL REFERENCES terms(term) ON DELETE CASCADE,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		weight      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (term, document_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tfidf_postings (
		term        TEXT NOT NULL REFERENCES terms(term) ON DELETE CASCADE,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		weight      DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (term, document_id)
	)`,
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	closer  func() error
	logger  *slog.Logger
}

// New wraps an open database. closer, if non-nil, is called by Close
// instead of db.Close.
func New(db *sql.DB, dialect Dialect, closer func() error) *Store {
	if closer == nil {
		closer = db.Close
	}
	return &Store{
		db:      db,
		dialect: dialect,
		closer:  closer,
		logger:  slog.Default().With("component", "sqlstore", "dialect", dialect.Name),
	}
}

// OpenPostgres connects with lib/pq and migrates the schema.
func OpenPostgres(ctx context.Context, c *postgres.Client) (*Store, error) {
	s := New(c.DB, Postgres, c.Close)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSQLite wraps an open SQLite client and migrates the schema.
func OpenSQLite(ctx context.Context, c *sqlite.Client) (*Store, error) {
	s := New(c.DB, SQLite, c.Close)
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrating schema: %v", apperrors.ErrPersistence, err)
		}
	}
	return nil
}

func (s *Store) StoreDocument(ctx context.Context, doc store.Document) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO documents (id, name) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name`),
		doc.ID, doc.Name,
	)
	if err != nil {
		return fmt.Errorf("%w: storing document %d (%s): %v", apperrors.ErrPersistence, doc.ID, doc.Name, err)
	}
	return nil
}

func (s *Store) StoreTerm(ctx context.Context, term string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO terms (term) VALUES (?) ON CONFLICT (term) DO NOTHING`),
		term,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			s.logger.Debug("term inserted concurrently", "term", term)
			return nil
		}
		return fmt.Errorf("%w: storing term %q: %v", apperrors.ErrPersistence, term, err)
	}
	return nil
}

func (s *Store) StorePosting(ctx context.Context, term string, documentID int, weight float64, kind store.Kind) error {
	table, err := postingTable(kind)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO `+table+` (term, document_id, weight) VALUES (?, ?, ?)
		 ON CONFLICT (term, document_id) DO UPDATE SET weight = excluded.weight`),
		term, documentID, weight,
	)
	if err != nil {
		return fmt.Errorf("%w: storing %s posting (%q, %d): %v", apperrors.ErrPersistence, kind, term, documentID, err)
	}
	return nil
}

// StorePostings upserts every posting of term in one transaction.
func (s *Store) StorePostings(ctx context.Context, term string, postings []store.Posting, kind store.Kind) error {
	table, err := postingTable(kind)
	if err != nil {
		return err
	}
	query := s.rebind(`INSERT INTO ` + table + ` (term, document_id, weight) VALUES (?, ?, ?)
		 ON CONFLICT (term, document_id) DO UPDATE SET weight = excluded.weight`)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("%w: preparing %s posting insert: %v", apperrors.ErrPersistence, kind, err)
		}
		defer stmt.Close()
		for _, p := range postings {
			if _, err := stmt.ExecContext(ctx, term, p.DocumentID, p.Weight); err != nil {
				return fmt.Errorf("%w: storing %s posting (%q, %d): %v", apperrors.ErrPersistence, kind, term, p.DocumentID, err)
			}
		}
		return nil
	})
}

func (s *Store) Postings(ctx context.Context, term string, kind store.Kind) ([]store.Posting, error) {
	table, err := postingTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT p.document_id, d.name, p.weight
		   FROM `+table+` p
		   JOIN documents d ON d.id = p.document_id
		  WHERE p.term = ?
		  ORDER BY p.document_id`),
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying %s postings for %q: %v", apperrors.ErrPersistence, kind, term, err)
	}
	defer rows.Close()

	var out []store.Posting
	for rows.Next() {
		var p store.Posting
		if err := rows.Scan(&p.DocumentID, &p.DocumentName, &p.Weight); err != nil {
			return nil, fmt.Errorf("%w: scanning posting row: %v", apperrors.ErrPersistence, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating postings: %v", apperrors.ErrPersistence, err)
	}
	return out, nil
}

func (s *Store) DocumentCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", apperrors.ErrPersistence, err)
	}
	return n, nil
}

// EraseAll deletes every row, children first, in one transaction.
func (s *Store) EraseAll(ctx context.Context) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"tfidf_postings", "tf_postings", "terms", "documents"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("%w: erasing %s: %v", apperrors.ErrPersistence, table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("index erased")
	return nil
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", apperrors.ErrPersistence, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.closer()
}

func postingTable(kind store.Kind) (string, error) {
	switch kind {
	case store.KindTF:
		return "tf_postings", nil
	case store.KindTFIDF:
		return "tfidf_postings", nil
	default:
		return "", fmt.Errorf("%w: unknown posting kind %v", apperrors.ErrInvalidInput, kind)
	}
}

// rebind turns ? placeholders into $n for dialects that need it.
func (s *Store) rebind(query string) string {
	if !s.dialect.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
