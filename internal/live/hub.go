// Package live is the cancellable subscription primitive behind every
// real-time view: an initial snapshot, then a refetch-and-emit on each
// change notification, until the consumer unsubscribes.
package live

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Fetch loads the current snapshot for one logical view.
type Fetch[T any] func(ctx context.Context) (T, error)

type subscription struct {
	cancel context.CancelFunc
}

// Hub tracks active subscriptions by view key. At most one subscription
// per key is live at a time: opening a view again tears down the old
// one, so events are never delivered twice to the same screen.
type Hub struct {
	rdb *redis.Client

	mu     sync.Mutex
	active map[string]*subscription
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{rdb: rdb, active: make(map[string]*subscription)}
}

// Subscribe delivers the initial snapshot on the returned channel, then
// a fresh snapshot for every message on any of the redis channels. The
// returned stop func cancels the subscription and closes the channel;
// it is safe to call more than once.
func Subscribe[T any](ctx context.Context, h *Hub, viewKey string, fetch Fetch[T], channels ...string) (<-chan T, func(), error) {
	initial, err := fetch(ctx)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel}

	h.mu.Lock()
	if prev, ok := h.active[viewKey]; ok {
		prev.cancel() // replace the old listener for this view
	}
	h.active[viewKey] = sub
	h.mu.Unlock()

	ps := h.rdb.Subscribe(ctx, channels...)
	out := make(chan T, 1)
	out <- initial

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			h.mu.Lock()
			// only forget the key if it still points at us
			if h.active[viewKey] == sub {
				delete(h.active, viewKey)
			}
			h.mu.Unlock()
		})
	}

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				snap, err := fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.Printf("live: refetch %s: %v", viewKey, err)
					continue
				}
				// coalesce: drop a stale pending snapshot before emitting
				select {
				case <-out:
				default:
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, stop, nil
}
