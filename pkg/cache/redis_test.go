package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ruleschema/pkg/cache"
)

func newRedis(t *testing.T, opts ...cache.Option) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := cache.NewRedisFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedis_GetSet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedis(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"User":{}}`)))
	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"User":{}}`, string(value))

	assert.True(t, mr.Exists(cache.DefaultPrefix+"k"))
	require.NoError(t, store.Ping(ctx))
}

func TestRedis_PrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedis(t, cache.WithPrefix("test:"), cache.WithTTL(time.Minute))

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ServerDown(t *testing.T) {
	store, mr := newRedis(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache: get")
}

func TestKey_IsDelimited(t *testing.T) {
	assert.Equal(t, cache.Key("json", "a"), cache.Key("json", "a"))
	assert.NotEqual(t, cache.Key("ab", "c"), cache.Key("a", "bc"))
	assert.Len(t, cache.Key(), 64)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	require.NoError(t, c.Set(context.Background(), "k", []byte("v")))
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
