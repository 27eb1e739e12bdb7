package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WishlistEntry is a liked product. Presence is the fact; the snapshot
// fields are denormalized so the list renders without catalog lookups.
type WishlistEntry struct {
	ID         string    `bson:"_id" json:"-"` // userID:productID
	UserID     string    `bson:"userId" json:"userId"`
	ProductID  string    `bson:"productId" json:"productId"`
	Name       string    `bson:"name" json:"name"`
	PriceCents int64     `bson:"priceCents" json:"priceCents"`
	ImageURL   string    `bson:"imageUrl" json:"imageUrl"`
	AddedAt    time.Time `bson:"addedAt" json:"addedAt"`
}

type Wishlist struct {
	Col      *mongo.Collection
	Products *Products
	Redis    *redis.Client
}

func wishKey(userID, productID string) string { return userID + ":" + productID }

// Toggle flips membership and reports the final state. Idempotent under
// retry: toggling is keyed on the compound id, never counted.
func (w *Wishlist) Toggle(ctx context.Context, userID, productID string) (liked bool, err error) {
	if userID == "" || productID == "" {
		return false, errs.Validationf("missing user or product")
	}

	key := wishKey(userID, productID)
	res, err := w.Col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return false, errs.Store(err)
	}
	if res.DeletedCount > 0 {
		w.notify(ctx, userID)
		return false, nil
	}

	p, err := w.Products.Get(ctx, productID)
	if err != nil {
		return false, err
	}
	entry := WishlistEntry{
		ID:         key,
		UserID:     userID,
		ProductID:  productID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		ImageURL:   p.ImageURL,
		AddedAt:    time.Now().UTC(),
	}
	// upsert so a racing double-tap stays a single membership fact
	_, err = w.Col.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return false, errs.Store(err)
	}
	w.notify(ctx, userID)
	return true, nil
}

func (w *Wishlist) List(ctx context.Context, userID string) ([]WishlistEntry, error) {
	cur, err := w.Col.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "addedAt", Value: 1}}))
	if err != nil {
		return nil, errs.Store(err)
	}
	defer cur.Close(ctx)

	out := []WishlistEntry{}
	for cur.Next(ctx) {
		var e WishlistEntry
		if err := cur.Decode(&e); err != nil {
			return nil, errs.Store(err)
		}
		out = append(out, e)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return out, nil
}

func (w *Wishlist) notify(ctx context.Context, userID string) {
	_ = w.Redis.Publish(ctx, fmt.Sprintf(redisx.ChanWishUser, userID), "changed").Err()
}
