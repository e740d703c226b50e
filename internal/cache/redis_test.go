package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, ""), mr
}

func TestRedisSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "/api/hotels", []byte("hotels"), time.Minute, "Hotel", "Region"))
	require.NoError(t, store.Set(ctx, "/api/posts", []byte("posts"), time.Minute, "Post"))

	value, ok, err := store.Get(ctx, "/api/hotels")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("hotels"), value)

	members, err := mr.Members(defaultRedisPrefix + "tag:Region")
	require.NoError(t, err)
	assert.Equal(t, []string{defaultRedisPrefix + "entry:/api/hotels"}, members)

	require.NoError(t, store.Invalidate(ctx, "Region"))

	_, ok, err = store.Get(ctx, "/api/hotels")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(defaultRedisPrefix+"tag:Region"))

	_, ok, err = store.Get(ctx, "/api/posts")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisEntriesExpire(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute, "Post"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisInvalidateUnknownTag(t *testing.T) {
	store, _ := newTestRedis(t)
	assert.NoError(t, store.Invalidate(context.Background(), "Nothing"))
}

func TestRedisSetIfVersionRefusesStaleWrite(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedis(t)

	version, err := store.Version(ctx, "Post", "Tag")
	require.NoError(t, err)
	assert.Equal(t, "Post=0,Tag=0", version)

	require.NoError(t, store.Invalidate(ctx, "Tag"))

	stored, err := store.SetIfVersion(ctx, "/api/posts", []byte("old"), time.Minute, version, "Post", "Tag")
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists(defaultRedisPrefix+"entry:/api/posts"))

	version, err = store.Version(ctx, "Post", "Tag")
	require.NoError(t, err)
	assert.Equal(t, "Post=0,Tag=1", version)

	stored, err = store.SetIfVersion(ctx, "/api/posts", []byte("new"), time.Minute, version, "Post", "Tag")
	require.NoError(t, err)
	assert.True(t, stored)

	value, ok, err := store.Get(ctx, "/api/posts")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
}

func TestNewRedisSeparatesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "tourcms")
	require.NoError(t, store.Set(context.Background(), "k", []byte("v"), time.Minute, "Post"))

	assert.True(t, mr.Exists("tourcms:entry:k"))
	assert.True(t, mr.Exists("tourcms:tag:Post"))
	assert.Equal(t, "tourcms:entry:k", NewRedis(client, "tourcms:").entryKey("k"))
}
