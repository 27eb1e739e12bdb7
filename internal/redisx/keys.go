package redisx

import "time"

const (
	// Cache status order: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Pub/sub channels for live views. Writers publish the changed document
// id; subscribers refetch their snapshot on every message.
const (
	ChanOrdersAll  = "live:orders:all"
	ChanOrdersUser = "live:orders:user:%s"
	ChanChatUser   = "live:chat:user:%s"
	ChanWishUser   = "live:wishlist:user:%s"
	ChanProducts   = "live:products"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
