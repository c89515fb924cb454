package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/internal/store"
	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Driver = driver
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "index.db")
	cfg.Redis.Enabled = false
	return cfg
}

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			st, err := OpenStore(ctx, cfg.Store, cfg.Postgres)
			require.NoError(t, err)
			defer st.Close()
			require.NoError(t, st.Ping(ctx))
		})
	}

	_, err := OpenStore(ctx, config.StoreConfig{Driver: "mongo"}, config.PostgresConfig{})
	assert.Error(t, err)
}

func TestNewQueryCacheFallsBackToLRU(t *testing.T) {
	cfg := testConfig(t, "memory")
	qc, client, err := NewQueryCache(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, client)
	require.NotNil(t, qc)
}

func TestNewQueryParserExpansion(t *testing.T) {
	cfg := testConfig(t, "memory")
	qp, client := NewQueryParser(cfg, nil)
	assert.False(t, qp.Expands())
	assert.Nil(t, client)

	cfg.Search.Expand = true
	qp, client = NewQueryParser(cfg, nil)
	assert.True(t, qp.Expands())
	assert.NotNil(t, client)
}

func TestExecutorEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "sqlite")
	st, err := OpenStore(ctx, cfg.Store, cfg.Postgres)
	require.NoError(t, err)
	defer st.Close()

	for id, name := range []string{"D0.html", "D1.html", "D2.html"} {
		require.NoError(t, st.StoreDocument(ctx, store.Document{ID: id, Name: name}))
	}
	require.NoError(t, st.StoreTerm(ctx, "chat"))
	require.NoError(t, st.StorePosting(ctx, "chat", 1, 3, store.KindTF))

	exec, _ := NewExecutor(cfg, st, nil)
	res, err := exec.Search(ctx, "chat")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "D1.html", res.Results[0].DocumentName)
}
