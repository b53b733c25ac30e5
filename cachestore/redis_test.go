package cachestore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amonks/albumengine/cachestore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) (*miniredis.Miniredis, *cachestore.Redis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cachestore.Open(context.Background(), cachestore.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return mr, r
}

func TestReadAllMissingKey(t *testing.T) {
	_, r := open(t)
	values, err := r.ReadAll(context.Background(), "artists:nobody")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestWriteAllOverwrites(t *testing.T) {
	mr, r := open(t)
	ctx := context.Background()

	require.NoError(t, r.WriteAll(ctx, "artists:queen", []string{"1#a", "2#b", "3#c"}, time.Minute))
	require.NoError(t, r.WriteAll(ctx, "artists:queen", []string{"4#d"}, 2*time.Minute))

	values, err := r.ReadAll(ctx, "artists:queen")
	require.NoError(t, err)
	assert.Equal(t, []string{"4#d"}, values)
	assert.Equal(t, 2*time.Minute, mr.TTL("artists:queen"))
}

func TestWriteAllEmptyDeletes(t *testing.T) {
	mr, r := open(t)
	ctx := context.Background()

	require.NoError(t, r.WriteAll(ctx, "artists:queen", []string{"1#a"}, time.Minute))
	require.NoError(t, r.WriteAll(ctx, "artists:queen", nil, time.Minute))
	assert.False(t, mr.Exists("artists:queen"))
}

func TestReadAllIsBounded(t *testing.T) {
	_, r := open(t)
	ctx := context.Background()

	var values []string
	for i := 0; i < 60; i++ {
		values = append(values, fmt.Sprintf("%d#artist %d", i, i))
	}
	require.NoError(t, r.WriteAll(ctx, "artists:a", values, time.Minute))

	got, err := r.ReadAll(ctx, "artists:a")
	require.NoError(t, err)
	assert.Equal(t, values[:cachestore.MaxRead], got)
}

func TestTouchSlidesExpiry(t *testing.T) {
	mr, r := open(t)
	ctx := context.Background()

	require.NoError(t, r.WriteAll(ctx, "artists:queen", []string{"1#a"}, 10*time.Second))
	mr.FastForward(8 * time.Second)
	require.NoError(t, r.Touch(ctx, "artists:queen", 10*time.Second))
	mr.FastForward(8 * time.Second)

	values, err := r.ReadAll(ctx, "artists:queen")
	require.NoError(t, err)
	assert.Equal(t, []string{"1#a"}, values)

	mr.FastForward(3 * time.Second)
	values, err = r.ReadAll(ctx, "artists:queen")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestReadAllDoesNotTouch(t *testing.T) {
	mr, r := open(t)
	ctx := context.Background()

	require.NoError(t, r.WriteAll(ctx, "artists:queen", []string{"1#a"}, 10*time.Second))
	mr.FastForward(4 * time.Second)
	_, err := r.ReadAll(ctx, "artists:queen")
	require.NoError(t, err)
	assert.Equal(t, 6*time.Second, mr.TTL("artists:queen"))
}

func TestOpenFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := cachestore.Open(context.Background(), cachestore.Options{Addr: addr})
	assert.Error(t, err)
}

func TestNewWrapsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	r := cachestore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { r.Close() })

	require.NoError(t, r.Ping(context.Background()))
	mr.Close()
	assert.Error(t, r.Ping(context.Background()))
}
