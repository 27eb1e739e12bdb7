package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestToggleFlipsMembership(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("toggle twice", func(mt *mtest.T) {
		mr := miniredis.RunT(mt)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		products := &Products{Col: mt.Coll.Database().Collection("products"), Redis: rdb}
		wl := &Wishlist{Col: mt.Coll, Products: products, Redis: rdb}

		pid := primitive.NewObjectID()

		// not a member yet: delete matches nothing, the product is
		// fetched for its snapshot and the entry upserted
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "engrave.products", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: pid},
				{Key: "name", Value: "Pet Tag"},
				{Key: "priceCents", Value: int64(1500)},
				{Key: "stock", Value: 3},
				{Key: "imageUrl", Value: "https://cdn.example/pet-tag.png"},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		liked, err := wl.Toggle(context.Background(), "u1", pid.Hex())
		require.NoError(mt, err)
		assert.True(mt, liked)

		// already a member: the delete removes the entry
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		liked, err = wl.Toggle(context.Background(), "u1", pid.Hex())
		require.NoError(mt, err)
		assert.False(mt, liked)
	})

	mt.Run("unknown product", func(mt *mtest.T) {
		mr := miniredis.RunT(mt)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		products := &Products{Col: mt.Coll.Database().Collection("products"), Redis: rdb}
		wl := &Wishlist{Col: mt.Coll, Products: products, Redis: rdb}

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "engrave.products", mtest.FirstBatch),
		)
		_, err := wl.Toggle(context.Background(), "u1", primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, errs.ErrNotFound)
	})
}

func TestToggleValidatesInput(t *testing.T) {
	wl := &Wishlist{}

	_, err := wl.Toggle(context.Background(), "", "p1")
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = wl.Toggle(context.Background(), "u1", "")
	assert.ErrorIs(t, err, errs.ErrValidation)
}
