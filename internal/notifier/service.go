package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/ariefcatur/go-engrave-orders.git/internal/chat"
	kafkax "github.com/ariefcatur/go-engrave-orders.git/internal/kafka"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// ChatSender is the one chat operation the notifier needs. *chat.Repo
// satisfies it.
type ChatSender interface {
	Send(ctx context.Context, userID string, sender chat.Sender, text string, linked *chat.LinkedOrder) (chat.Message, error)
}

// Service turns order status changes into admin-side chat messages in
// the owning customer's conversation, so the support thread doubles as
// an order timeline.
type Service struct {
	Chat        ChatSender
	Redis       *redis.Client
	ServiceName string
}

// HandleStatusChanged is the consumer handler for order.status.changed.
func (s *Service) HandleStatusChanged(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderStatusChanged {
		return nil // ignore
	}

	// dedup by event_id so a replayed partition does not repost. The
	// key is claimed only after the message is stored: a failed send
	// leaves it unclaimed, the offset stays uncommitted, and the
	// broker's redelivery retries the whole delivery.
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if seen, err := redisx.Exists(ctx, s.Redis, dkey); err != nil {
		log.Printf("notifier: dedup check: %v", err)
	} else if seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return err
	}

	text := StatusLine(p.To, p.ProductName)
	if text == "" {
		return nil
	}

	linked := &chat.LinkedOrder{
		OrderID: p.OrderID,
		Name:    p.ProductName,
		Img:     p.ImageURL,
		Status:  p.To,
	}
	if _, err := s.Chat.Send(ctx, p.UserID, chat.SenderAdmin, text, linked); err != nil {
		return err
	}
	if _, err := redisx.SetIfAbsent(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		log.Printf("notifier: dedup mark: %v", err)
	}
	return nil
}

// StatusLine is the message posted for a transition target. Statuses a
// customer caused themselves (Cancelled) or that say nothing new
// (Pending) produce no message.
func StatusLine(to orders.Status, productName string) string {
	switch to {
	case orders.StatusPreparing:
		return fmt.Sprintf("Your order for %q was accepted and is now being engraved.", productName)
	case orders.StatusReady:
		return fmt.Sprintf("Your order for %q is ready for pick up.", productName)
	case orders.StatusCompleted:
		return fmt.Sprintf("Your order for %q is completed. Thank you for shopping with us!", productName)
	case orders.StatusRejected:
		return fmt.Sprintf("We are sorry, we could not accept your order for %q. Reply here for details.", productName)
	default:
		return ""
	}
}
