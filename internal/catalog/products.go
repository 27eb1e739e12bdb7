package catalog

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

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	PriceCents  int64              `bson:"priceCents" json:"priceCents"`
	Stock       int                `bson:"stock" json:"stock"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Products is read-mostly: customers list, admins mutate.
type Products struct {
	Col   *mongo.Collection
	Redis *redis.Client
}

func validateProduct(p Product) error {
	if p.Name == "" {
		return errs.Validationf("product name is required")
	}
	if p.PriceCents < 0 {
		return errs.Validationf("price must not be negative")
	}
	if p.Stock < 0 {
		return errs.Validationf("stock must not be negative")
	}
	return nil
}

func (s *Products) Create(ctx context.Context, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	res, err := s.Col.InsertOne(ctx, p)
	if err != nil {
		return Product{}, errs.Store(err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	s.notify(ctx)
	return p, nil
}

func (s *Products) Get(ctx context.Context, id string) (Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Product{}, errs.Validationf("bad product id %q", id)
	}
	var p Product
	err = s.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Product{}, fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return Product{}, errs.Store(err)
	}
	return p, nil
}

func (s *Products) List(ctx context.Context) ([]Product, error) {
	cur, err := s.Col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errs.Store(err)
	}
	defer cur.Close(ctx)

	out := []Product{}
	for cur.Next(ctx) {
		var p Product
		if err := cur.Decode(&p); err != nil {
			return nil, errs.Store(err)
		}
		out = append(out, p)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return out, nil
}

// Update edits the listed fields; past orders keep their snapshot.
func (s *Products) Update(ctx context.Context, id string, p Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.Validationf("bad product id %q", id)
	}
	res, err := s.Col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"priceCents":  p.PriceCents,
		"stock":       p.Stock,
		"imageUrl":    p.ImageURL,
		"updatedAt":   time.Now().UTC(),
	}})
	if err != nil {
		return errs.Store(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	s.notify(ctx)
	return nil
}

// AdjustStock applies a manual delta. The filter keeps stock >= 0: a
// decrement below zero matches nothing and fails closed.
func (s *Products) AdjustStock(ctx context.Context, id string, delta int) (Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Product{}, errs.Validationf("bad product id %q", id)
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	var p Product
	err = s.Col.FindOneAndUpdate(ctx, filter,
		bson.M{"$inc": bson.M{"stock": delta}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// either the product is gone or the delta would go negative
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return Product{}, getErr
		}
		return Product{}, errs.Validationf("stock of product %s cannot go below zero", id)
	}
	if err != nil {
		return Product{}, errs.Store(err)
	}
	s.notify(ctx)
	return p, nil
}

func (s *Products) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.Validationf("bad product id %q", id)
	}
	res, err := s.Col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errs.Store(err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	s.notify(ctx)
	return nil
}

func (s *Products) notify(ctx context.Context) {
	_ = s.Redis.Publish(ctx, redisx.ChanProducts, "changed").Err()
}
