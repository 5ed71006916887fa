package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/SeqPrep/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SeqPrep/pkg/errors"
)

func TestNewClient_Success(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.GetUnderlyingClient().Ping(context.Background()).Err())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(&RedisConfig{Addr: addr, MaxRetries: -1}, nil)
	assert.Nil(t, client)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func TestClient_Operations(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())

	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	n, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_Close(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	ctx := context.Background()
	assert.Equal(t, ErrClientClosed, client.Get(ctx, "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Set(ctx, "foo", "x", 0).Err())
	assert.Equal(t, ErrClientClosed, client.Ping(ctx))
}

func TestCache_RoundTripOnMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()

	cache := NewRedisCache(client, nil)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "ids", [][]int{{0}, {8}}, 0))
	assert.True(t, mr.Exists("seqprep:ids"))
	assert.Equal(t, "[[0],[8]]", mustGet(t, mr, "seqprep:ids"))

	var got [][]int
	require.NoError(t, cache.Get(ctx, "ids", &got))
	assert.Equal(t, [][]int{{0}, {8}}, got)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
