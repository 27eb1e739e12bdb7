package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User is the profile document. Authentication lives in the external
// identity service; this is only the data the storefront renders.
type User struct {
	ID        string    `bson:"_id" json:"id"` // identity-provider uid
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Users struct {
	Col *mongo.Collection
}

func (u *Users) Get(ctx context.Context, id string) (User, error) {
	var out User
	err := u.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, fmt.Errorf("user %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return User{}, errs.Store(err)
	}
	return out, nil
}

// Upsert writes the profile as a whole; the uid comes from the identity
// provider and is the natural key.
func (u *Users) Upsert(ctx context.Context, user User) error {
	if user.ID == "" || user.Email == "" {
		return errs.Validationf("user id and email are required")
	}
	user.UpdatedAt = time.Now().UTC()
	_, err := u.Col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	return errs.Store(err)
}
