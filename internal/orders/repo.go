package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repo owns the orders collection and the legal status transitions.
// Every successful write publishes a change notification so live views
// refetch, and refreshes the short-lived status cache.
type Repo struct {
	Col   *mongo.Collection
	Redis *redis.Client
}

// casRetries bounds the fetch-compare-update loop under concurrent
// writers (simultaneous cancel-by-customer and advance-by-admin).
const casRetries = 3

func validatePlacement(p Placement) error {
	if p.UserID == "" || p.Product.ProductID == "" {
		return errs.Validationf("missing user or product")
	}
	if p.Quantity < 1 {
		return errs.Validationf("quantity must be at least 1, got %d", p.Quantity)
	}
	if p.Product.Stock == 0 {
		return errs.Validationf("product %s is out of stock", p.Product.ProductID)
	}
	if p.Product.Stock > 0 && p.Quantity > p.Product.Stock {
		return errs.Validationf("quantity %d exceeds stock %d", p.Quantity, p.Product.Stock)
	}
	return nil
}

// NewOrder builds the document for a placement. Total is computed once
// here and never recomputed on read.
func NewOrder(p Placement) Order {
	return Order{
		UserID:          p.UserID,
		UserEmail:       p.UserEmail,
		ProductID:       p.Product.ProductID,
		ProductName:     p.Product.Name,
		ImageURL:        p.Product.ImageURL,
		PriceCents:      p.Product.PriceCents,
		Quantity:        p.Quantity,
		Personalization: p.Personalization,
		TotalCents:      p.Product.PriceCents * int64(p.Quantity),
		Status:          StatusPending,
		Date:            Now(),
	}
}

// Place validates and persists a new Pending order. Stock is NOT
// decremented here: stock adjustment stays a manual admin action, so
// staff keep control over fulfilment.
func (r *Repo) Place(ctx context.Context, p Placement) (Order, error) {
	if err := validatePlacement(p); err != nil {
		return Order{}, err
	}

	o := NewOrder(p)
	res, err := r.Col.InsertOne(ctx, o)
	if err != nil {
		return Order{}, errs.Store(err)
	}
	o.ID = res.InsertedID.(primitive.ObjectID)

	r.cacheStatus(ctx, o.ID.Hex(), o.Status)
	r.notify(ctx, o.UserID)
	return o, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Order{}, errs.Validationf("bad order id %q", id)
	}
	var o Order
	err = r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Order{}, fmt.Errorf("order %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return Order{}, errs.Store(err)
	}
	return o, nil
}

// AdvanceStatus moves an order along the lifecycle. Admin only. The
// update is conditional on the expected current status (CAS), so a
// concurrent cancel or a second admin never produces an illegal path.
// Re-issuing an already-applied transition is a no-op.
// Returns the updated order and the status it moved from.
func (r *Repo) AdvanceStatus(ctx context.Context, id string, to Status, actingRole Role) (Order, Status, error) {
	if actingRole != RoleAdmin {
		return Order{}, "", fmt.Errorf("advance status requires admin: %w", errs.ErrUnauthorized)
	}
	if !Known(to) {
		return Order{}, "", errs.Validationf("unknown status %q", to)
	}

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Order{}, "", errs.Validationf("bad order id %q", id)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		o, err := r.Get(ctx, id)
		if err != nil {
			return Order{}, "", err
		}
		if o.Status == to {
			// already applied, treat the retry as success
			return o, to, nil
		}
		if !CanTransition(o.Status, to) {
			return Order{}, "", fmt.Errorf("%s -> %s: %w", o.Status, to, errs.ErrIllegalTransition)
		}

		res, err := r.Col.UpdateOne(ctx,
			bson.M{"_id": oid, "status": o.Status},
			bson.M{"$set": bson.M{"status": to}},
		)
		if err != nil {
			return Order{}, "", errs.Store(err)
		}
		if res.MatchedCount == 0 {
			// lost the race, re-read and re-check legality
			continue
		}

		from := o.Status
		o.Status = to
		r.cacheStatus(ctx, id, to)
		r.notify(ctx, o.UserID)
		return o, from, nil
	}
	return Order{}, "", fmt.Errorf("status of order %s kept moving: %w", id, errs.ErrIllegalTransition)
}

// Cancel is the one customer-side mutation: owner only, Pending only.
func (r *Repo) Cancel(ctx context.Context, id, customerID, reason string) (Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Order{}, errs.Validationf("bad order id %q", id)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		o, err := r.Get(ctx, id)
		if err != nil {
			return Order{}, err
		}
		if o.UserID != customerID {
			return Order{}, fmt.Errorf("order %s belongs to another customer: %w", id, errs.ErrUnauthorized)
		}
		if o.Status == StatusCancelled {
			// replayed cancel, nothing left to do
			return o, nil
		}
		if !CanCancel(o.Status) {
			return Order{}, fmt.Errorf("order %s is %s: %w", id, o.Status, errs.ErrNotCancellable)
		}

		now := time.Now().UTC()
		res, err := r.Col.UpdateOne(ctx,
			bson.M{"_id": oid, "status": o.Status},
			bson.M{"$set": bson.M{"status": StatusCancelled, "cancelReason": reason, "cancelledAt": now}},
		)
		if err != nil {
			return Order{}, errs.Store(err)
		}
		if res.MatchedCount == 0 {
			continue
		}

		o.Status = StatusCancelled
		o.CancelReason = reason
		o.CancelledAt = &now
		r.cacheStatus(ctx, id, StatusCancelled)
		r.notify(ctx, o.UserID)
		return o, nil
	}
	return Order{}, fmt.Errorf("status of order %s kept moving: %w", id, errs.ErrNotCancellable)
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *Repo) list(ctx context.Context, filter bson.M) ([]Order, error) {
	cur, err := r.Col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, errs.Store(err)
	}
	defer cur.Close(ctx)

	out := []Order{}
	for cur.Next(ctx) {
		var o Order
		if err := cur.Decode(&o); err != nil {
			return nil, errs.Store(err)
		}
		out = append(out, o)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return out, nil
}

// StatusOf serves the hot read path from the short-lived cache first.
func (r *Repo) StatusOf(ctx context.Context, id string) (Status, error) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	if s, err := r.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		return Status(s), nil
	}
	o, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	r.cacheStatus(ctx, id, o.Status)
	return o.Status, nil
}

func (r *Repo) cacheStatus(ctx context.Context, id string, s Status) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, id)
	_ = r.Redis.Set(ctx, key, string(s), redisx.TTLStatusCache).Err()
}

// notify wakes the owning customer's view and the admin dashboard.
func (r *Repo) notify(ctx context.Context, userID string) {
	_ = r.Redis.Publish(ctx, fmt.Sprintf(redisx.ChanOrdersUser, userID), "changed").Err()
	_ = r.Redis.Publish(ctx, redisx.ChanOrdersAll, "changed").Err()
}
