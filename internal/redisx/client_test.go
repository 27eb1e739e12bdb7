package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesTimeout(t *testing.T) {
	c := New("localhost:6379")
	defer c.Close()

	assert.Equal(t, 2*time.Second, c.Options().ReadTimeout)
	assert.Equal(t, 2*time.Second, c.Options().WriteTimeout)
}

func TestSetIfAbsentFirstCallerWins(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	fresh, err := SetIfAbsent(ctx, rdb, "dedup:test:ev-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = SetIfAbsent(ctx, rdb, "dedup:test:ev-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)

	seen, err := Exists(ctx, rdb, "dedup:test:ev-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = Exists(ctx, rdb, "dedup:test:ev-2")
	require.NoError(t, err)
	assert.False(t, seen)
}
