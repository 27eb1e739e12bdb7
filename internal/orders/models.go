package orders

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ProductSnapshot is the item as it was at order time. Orders keep a
// copy, not a reference: later catalog edits never rewrite history.
type ProductSnapshot struct {
	ProductID  string `bson:"productId" json:"productId"`
	Name       string `bson:"productName" json:"productName"`
	ImageURL   string `bson:"imageUrl" json:"imageUrl"`
	PriceCents int64  `bson:"priceCents" json:"priceCents"`
	Stock      int    `bson:"-" json:"-"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"userId"`
	UserEmail       string             `bson:"userEmail" json:"userEmail"`
	ProductID       string             `bson:"productId" json:"productId"`
	ProductName     string             `bson:"productName" json:"productName"`
	ImageURL        string             `bson:"imageUrl" json:"imageUrl"`
	PriceCents      int64              `bson:"priceCents" json:"priceCents"`
	Quantity        int                `bson:"quantity" json:"quantity"`
	Personalization string             `bson:"personalization,omitempty" json:"personalization,omitempty"`
	TotalCents      int64              `bson:"totalCents" json:"totalCents"`
	Status          Status             `bson:"status" json:"status"`
	CancelReason    string             `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CancelledAt     *time.Time         `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	Date            FlexTime           `bson:"date" json:"date"`
}

type Placement struct {
	UserID          string
	UserEmail       string
	Product         ProductSnapshot
	Quantity        int
	Personalization string
}
