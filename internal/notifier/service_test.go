package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ariefcatur/go-engrave-orders.git/internal/chat"
	kafkax "github.com/ariefcatur/go-engrave-orders.git/internal/kafka"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	UserID string
	Sender chat.Sender
	Text   string
	Linked *chat.LinkedOrder
}

// recordingSender stands in for the chat repo; fail simulates the store
// being down.
type recordingSender struct {
	fail bool
	sent []sentMessage
}

func (f *recordingSender) Send(ctx context.Context, userID string, sender chat.Sender, text string, linked *chat.LinkedOrder) (chat.Message, error) {
	if f.fail {
		return chat.Message{}, errors.New("store down")
	}
	f.sent = append(f.sent, sentMessage{UserID: userID, Sender: sender, Text: text, Linked: linked})
	return chat.Message{UserID: userID, Sender: sender, Text: text}, nil
}

func newTestService(t *testing.T) (*Service, *recordingSender) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	sender := &recordingSender{}
	return &Service{Chat: sender, Redis: rdb, ServiceName: "engrave-notifier"}, sender
}

func statusChangedMessage(eventID string, to orders.Status) kafkago.Message {
	env := orders.Envelope{
		EventID:       eventID,
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "engrave-api",
		CorrelationID: "order-1",
		Payload: kafkax.MustMarshal(orders.OrderStatusChangedPayload{
			OrderID:     "order-1",
			UserID:      "u1",
			ProductName: "Pet Tag",
			ImageURL:    "https://cdn.example/pet-tag.png",
			From:        orders.StatusPreparing,
			To:          to,
		}),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleStatusChangedPostsAdminMessage(t *testing.T) {
	svc, sender := newTestService(t)

	err := svc.HandleStatusChanged(context.Background(), statusChangedMessage("ev-1", orders.StatusReady))
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	got := sender.sent[0]
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, chat.SenderAdmin, got.Sender)
	assert.Contains(t, got.Text, "ready for pick up")
	require.NotNil(t, got.Linked)
	assert.Equal(t, "order-1", got.Linked.OrderID)
	assert.Equal(t, orders.StatusReady, got.Linked.Status)
}

func TestHandleStatusChangedDedupsReplay(t *testing.T) {
	svc, sender := newTestService(t)
	msg := statusChangedMessage("ev-1", orders.StatusReady)

	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))
	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))

	assert.Len(t, sender.sent, 1, "replayed event must not repost")
}

func TestHandleStatusChangedRetriesAfterSendFailure(t *testing.T) {
	svc, sender := newTestService(t)
	msg := statusChangedMessage("ev-1", orders.StatusReady)

	// first delivery fails to store; the event must not be marked seen
	sender.fail = true
	require.Error(t, svc.HandleStatusChanged(context.Background(), msg))
	assert.Empty(t, sender.sent)

	// broker redelivers once the store is back
	sender.fail = false
	require.NoError(t, svc.HandleStatusChanged(context.Background(), msg))
	assert.Len(t, sender.sent, 1, "redelivery must deliver the lost notification")
}

func TestHandleStatusChangedIgnoresOtherEvents(t *testing.T) {
	svc, sender := newTestService(t)

	env := orders.Envelope{
		EventID:   "ev-2",
		EventType: orders.EventOrderPlaced,
		Payload:   kafkax.MustMarshal(orders.OrderPlacedPayload{OrderID: "order-2"}),
	}
	err := svc.HandleStatusChanged(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestStatusLine(t *testing.T) {
	assert.Contains(t, StatusLine(orders.StatusPreparing, "Pet Tag"), "being engraved")
	assert.Contains(t, StatusLine(orders.StatusReady, "Pet Tag"), "ready for pick up")
	assert.Contains(t, StatusLine(orders.StatusCompleted, "Pet Tag"), "Thank you")
	assert.Contains(t, StatusLine(orders.StatusRejected, "Pet Tag"), "could not accept")
}

func TestStatusLineSilentStatuses(t *testing.T) {
	// nothing to tell the customer about these
	for _, s := range []orders.Status{orders.StatusPending, orders.StatusAccepted, orders.StatusCancelled} {
		assert.Empty(t, StatusLine(s, "Pet Tag"), "status %s", s)
	}
}
