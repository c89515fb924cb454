package sqlstore

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store/storetest"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	c, err := sqlite.New(ctx, filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	s, err := OpenSQLite(ctx, c)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteConformance(t *testing.T) {
	storetest.Run(t, newSQLiteStore)
}

func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	if os.Getenv("IR_TEST_POSTGRES") == "" {
		t.Skip("set IR_TEST_POSTGRES=1 to run against a local PostgreSQL")
	}
	cfg := config.PostgresConfig{
		Host: "localhost", Port: 5432,
		Database: "corpusir_test", User: "corpusir", Password: "localdev",
		SSLMode: "disable", MaxOpenConns: 10, MaxIdleConns: 2,
	}
	if v := os.Getenv("IR_POSTGRES_PORT"); v != "" {
		cfg.Port, _ = strconv.Atoi(v)
	}
	c, err := postgres.New(context.Background(), cfg)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	return c
}

func TestPostgresConformance(t *testing.T) {
	skipIfNoPostgres(t).Close()
	storetest.Run(t, func(t *testing.T) store.Store {
		ctx := context.Background()
		s, err := OpenPostgres(ctx, skipIfNoPostgres(t))
		require.NoError(t, err)
		require.NoError(t, s.EraseAll(ctx))
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestRebind(t *testing.T) {
	pg := New(nil, Postgres, func() error { return nil })
	assert.Equal(t, "SELECT $1, $2 WHERE x = $3", pg.rebind("SELECT ?, ? WHERE x = ?"))

	lite := New(nil, SQLite, func() error { return nil })
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := newSQLiteStore(t).(*Store)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestPostingForUnknownDocumentFails(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	require.NoError(t, s.StoreTerm(ctx, "chat"))
	assert.Error(t, s.StorePosting(ctx, "chat", 99, 1, store.KindTF))
}
