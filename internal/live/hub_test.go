package live

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewHub(rdb), rdb
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	hub, _ := newTestHub(t)

	var n atomic.Int64
	n.Store(7)
	fetch := func(ctx context.Context) (int64, error) { return n.Load(), nil }

	ch, stop, err := Subscribe(context.Background(), hub, "view-a", fetch, "chan-a")
	require.NoError(t, err)
	defer stop()

	select {
	case v := <-ch:
		assert.Equal(t, int64(7), v)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}
}

func TestSubscribeRefetchesOnNotification(t *testing.T) {
	hub, rdb := newTestHub(t)
	ctx := context.Background()

	var n atomic.Int64
	n.Store(1)
	fetch := func(ctx context.Context) (int64, error) { return n.Load(), nil }

	ch, stop, err := Subscribe(ctx, hub, "view-b", fetch, "chan-b")
	require.NoError(t, err)
	defer stop()

	require.Equal(t, int64(1), <-ch)

	n.Store(2)
	// the pub/sub registration is asynchronous, keep nudging until the
	// refetched snapshot arrives
	deadline := time.After(3 * time.Second)
	for {
		_ = rdb.Publish(ctx, "chan-b", "changed").Err()
		select {
		case v := <-ch:
			if v == 2 {
				return
			}
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("never saw the refetched snapshot")
		}
	}
}

func TestSubscribeReplacesPreviousListener(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx := context.Background()

	fetch := func(ctx context.Context) (string, error) { return "snap", nil }

	ch1, stop1, err := Subscribe(ctx, hub, "view-c", fetch, "chan-c")
	require.NoError(t, err)
	defer stop1()
	require.Equal(t, "snap", <-ch1)

	// same logical view again: the first subscription must shut down
	_, stop2, err := Subscribe(ctx, hub, "view-c", fetch, "chan-c")
	require.NoError(t, err)
	defer stop2()

	select {
	case _, open := <-ch1:
		assert.False(t, open, "old subscription should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("old subscription was not torn down")
	}
}

func TestStopClosesChannel(t *testing.T) {
	hub, _ := newTestHub(t)

	fetch := func(ctx context.Context) (int, error) { return 0, nil }
	ch, stop, err := Subscribe(context.Background(), hub, "view-d", fetch, "chan-d")
	require.NoError(t, err)

	<-ch
	stop()
	stop() // idempotent

	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after stop")
	}
}
