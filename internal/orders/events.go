package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventOrderCancelled     = "OrderCancelled"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "engrave-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload per event ----

type OrderPlacedPayload struct {
	OrderID         string `json:"order_id"`
	UserID          string `json:"user_id"`
	UserEmail       string `json:"user_email"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"qty"`
	TotalCents      int64  `json:"total_cents"`
	Personalization string `json:"personalization,omitempty"`
}

type OrderStatusChangedPayload struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ProductName string `json:"product_name"`
	ImageURL    string `json:"image_url,omitempty"`
	From        Status `json:"from"`
	To          Status `json:"to"`
}

type OrderCancelledPayload struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason,omitempty"`
}
