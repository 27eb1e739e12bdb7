package chat

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const supportTemplate = "Hi, I need help with my order %q."

const greetingText = "Hi! Welcome to the engraving shop. How can we help you today?"

// Repo is the append-only message log per customer. Messages are never
// edited or deleted; ordering is ascending server timestamp.
type Repo struct {
	Col    *mongo.Collection
	Orders *orders.Repo
	Redis  *redis.Client
}

// newMessage validates and normalizes an outgoing message. Text is
// HTML-escaped here, before it is persisted, so nothing downstream can
// render injected markup.
func newMessage(userID string, sender Sender, text string, linked *LinkedOrder) (Message, error) {
	if userID == "" {
		return Message{}, errs.Validationf("missing user id")
	}
	if sender != SenderUser && sender != SenderAdmin {
		return Message{}, errs.Validationf("unknown sender %q", sender)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, errs.Validationf("message text is empty")
	}

	m := Message{
		UserID:    userID,
		Sender:    sender,
		Text:      html.EscapeString(text),
		Timestamp: orders.Now(),
	}
	if linked != nil {
		m.LinkedOrderID = linked.OrderID
		m.LinkedOrderName = linked.Name
		m.LinkedOrderImg = linked.Img
		m.LinkedOrderStatus = linked.Status
	}
	return m, nil
}

// Send appends a message to the conversation and wakes its live views.
func (r *Repo) Send(ctx context.Context, userID string, sender Sender, text string, linked *LinkedOrder) (Message, error) {
	m, err := newMessage(userID, sender, text, linked)
	if err != nil {
		return Message{}, err
	}

	res, err := r.Col.InsertOne(ctx, m)
	if err != nil {
		return Message{}, errs.Store(err)
	}
	m.ID = res.InsertedID.(primitive.ObjectID)

	_ = r.Redis.Publish(ctx, fmt.Sprintf(redisx.ChanChatUser, userID), "changed").Err()
	return m, nil
}

// ContactSupport sends the fixed template message carrying a snapshot
// of the named order as it is right now. Owner only.
func (r *Repo) ContactSupport(ctx context.Context, userID, orderID string) (Message, error) {
	o, err := r.Orders.Get(ctx, orderID)
	if err != nil {
		return Message{}, err
	}
	if o.UserID != userID {
		return Message{}, fmt.Errorf("order %s belongs to another customer: %w", orderID, errs.ErrUnauthorized)
	}

	linked := Snapshot(o)
	return r.Send(ctx, userID, SenderUser, fmt.Sprintf(supportTemplate, o.ProductName), &linked)
}

// Conversation returns the stored log in ascending timestamp order with
// the synthetic greeting prepended. The greeting is client-facing only
// and is never written back.
func (r *Repo) Conversation(ctx context.Context, userID string) ([]Message, error) {
	cur, err := r.Col.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, errs.Store(err)
	}
	defer cur.Close(ctx)

	out := []Message{Greeting(userID)}
	for cur.Next(ctx) {
		var m Message
		if err := cur.Decode(&m); err != nil {
			return nil, errs.Store(err)
		}
		out = append(out, m)
	}
	if err := cur.Err(); err != nil {
		return nil, errs.Store(err)
	}
	return out, nil
}

func Greeting(userID string) Message {
	return Message{
		UserID:    userID,
		Sender:    SenderAdmin,
		Text:      greetingText,
		Synthetic: true,
	}
}
