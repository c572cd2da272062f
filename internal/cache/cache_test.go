package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopAlwaysMisses(t *testing.T) {
	var c Cache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	hit, err := c.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.DeleteByPattern(ctx, "*"))
}

// Runs only when a redis instance is reachable through TEST_REDIS_ADDR.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	defer c.Close()

	type payload struct{ Titles []string }
	require.NoError(t, c.SetJSON(ctx, "test:featured", payload{Titles: []string{"Heat"}}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "test:featured", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"Heat"}, got.Titles)

	require.NoError(t, c.DeleteByPattern(ctx, "test:*"))
	hit, err = c.GetJSON(ctx, "test:featured", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}
