package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-ir/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("IR_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(context.Background(), config.RedisConfig{Addr: addr, DB: 15, PoolSize: 2})
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSetGetAndFlush(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "irtest:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "irtest:b", []byte("2"), time.Minute))

	got, err := c.Get(ctx, "irtest:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	n, err := c.FlushByPattern(ctx, "irtest:*")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = c.Get(ctx, "irtest:a")
	assert.True(t, IsNilError(err))
}
