package chat

import (
	"testing"

	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewMessageEscapesHTML(t *testing.T) {
	m, err := newMessage("u-1", SenderUser, `<script>alert("hi")</script>`, nil)
	require.NoError(t, err)

	assert.Equal(t, "&lt;script&gt;alert(&#34;hi&#34;)&lt;/script&gt;", m.Text)
	assert.Equal(t, SenderUser, m.Sender)
	assert.False(t, m.Timestamp.IsZero())
}

func TestNewMessageRejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := newMessage("u-1", SenderUser, text, nil)
		assert.ErrorIs(t, err, errs.ErrValidation, "text %q", text)
	}
}

func TestNewMessageRejectsUnknownSender(t *testing.T) {
	_, err := newMessage("u-1", Sender("bot"), "hi", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = newMessage("", SenderUser, "hi", nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestNewMessageAttachesLinkedOrder(t *testing.T) {
	linked := &LinkedOrder{
		OrderID: "o-1",
		Name:    "Custom Pet Tag",
		Img:     "/img/pet-tag.jpg",
		Status:  orders.StatusReady,
	}
	m, err := newMessage("u-1", SenderUser, "where is my order?", linked)
	require.NoError(t, err)

	assert.Equal(t, "o-1", m.LinkedOrderID)
	assert.Equal(t, "Custom Pet Tag", m.LinkedOrderName)
	assert.Equal(t, orders.StatusReady, m.LinkedOrderStatus)
}

func TestGreetingIsSyntheticOnly(t *testing.T) {
	g := Greeting("u-1")

	assert.True(t, g.Synthetic)
	assert.Equal(t, SenderAdmin, g.Sender)
	assert.Equal(t, primitive.NilObjectID, g.ID, "greeting must never look persisted")
}

func TestSnapshotCapturesOrderFields(t *testing.T) {
	oid := primitive.NewObjectID()
	o := orders.Order{
		ID:          oid,
		ProductName: "Engraved Glass Award",
		ImageURL:    "/img/glass-award.jpg",
		Status:      orders.StatusPreparing,
	}

	s := Snapshot(o)
	assert.Equal(t, oid.Hex(), s.OrderID)
	assert.Equal(t, "Engraved Glass Award", s.Name)
	assert.Equal(t, orders.StatusPreparing, s.Status)
}
