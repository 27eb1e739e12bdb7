package chat

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAdmin Sender = "admin"
)

// Message is one entry of a customer's support conversation. Chats are
// scoped one per customer, not per order; the linked-order fields are a
// snapshot taken when support was contacted about a specific order and
// intentionally never updated afterwards.
type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"userId" json:"userId"`
	Sender    Sender             `bson:"sender" json:"sender"`
	Text      string             `bson:"text" json:"text"`
	Timestamp orders.FlexTime    `bson:"timestamp" json:"timestamp"`

	LinkedOrderID     string        `bson:"linkedOrderId,omitempty" json:"linkedOrderId,omitempty"`
	LinkedOrderName   string        `bson:"linkedOrderName,omitempty" json:"linkedOrderName,omitempty"`
	LinkedOrderImg    string        `bson:"linkedOrderImg,omitempty" json:"linkedOrderImg,omitempty"`
	LinkedOrderStatus orders.Status `bson:"linkedOrderStatus,omitempty" json:"linkedOrderStatus,omitempty"`

	// Synthetic marks the client-side greeting; it never reaches the store.
	Synthetic bool `bson:"-" json:"synthetic,omitempty"`
}

// LinkedOrder is the denormalized order snapshot attached to a
// "contact support about this order" message.
type LinkedOrder struct {
	OrderID string
	Name    string
	Img     string
	Status  orders.Status
}

func Snapshot(o orders.Order) LinkedOrder {
	return LinkedOrder{
		OrderID: o.ID.Hex(),
		Name:    o.ProductName,
		Img:     o.ImageURL,
		Status:  o.Status,
	}
}
