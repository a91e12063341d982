package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestClaimOnce(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, 4*24*time.Hour)
	ctx := context.Background()

	ok, err := c.Claim(ctx, "u1|i1|expiry_alert|2025-03-10")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Claim(ctx, "u1|i1|expiry_alert|2025-03-10")
	require.NoError(t, err)
	assert.False(t, ok, "second claim of the same key must lose")

	ok, err = c.Claim(ctx, "u1|i1|expiry_alert|2025-03-11")
	require.NoError(t, err)
	assert.True(t, ok, "a new day is a new key")

	assert.True(t, mr.Exists(defaultPrefix+":u1|i1|expiry_alert|2025-03-10"))
	assert.Equal(t, 4*24*time.Hour, mr.TTL(defaultPrefix+":u1|i1|expiry_alert|2025-03-10"))
}

func TestClaimExpires(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, time.Hour)
	ctx := context.Background()

	ok, _ := c.Claim(ctx, "k")
	require.True(t, ok)
	mr.FastForward(2 * time.Hour)

	ok, err := c.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease(t *testing.T) {
	_, client := setupRedis(t)
	c := New(client, time.Hour)
	ctx := context.Background()

	ok, _ := c.Claim(ctx, "k")
	require.True(t, ok)
	require.NoError(t, c.Release(ctx, "k"))

	ok, err := c.Claim(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNilClaimerAlwaysWins(t *testing.T) {
	var c *Claimer
	ok, err := c.Claim(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, c.Release(context.Background(), "k"))
}

func TestClaimServerDown(t *testing.T) {
	mr, client := setupRedis(t)
	c := New(client, time.Hour)
	mr.Close()

	_, err := c.Claim(context.Background(), "k")
	assert.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr, _ := setupRedis(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
