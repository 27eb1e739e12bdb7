package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/catalog"
	kafkax "github.com/ariefcatur/go-engrave-orders.git/internal/kafka"
	"github.com/ariefcatur/go-engrave-orders.git/internal/live"
	"github.com/ariefcatur/go-engrave-orders.git/internal/metrics"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersHandler struct {
	Orders  *orders.Repo
	Catalog *catalog.Products
	Users   *catalog.Users
	Hub     *live.Hub
	Metrics *metrics.Metrics

	PlacedProducer *kafkax.Producer
	StatusProducer *kafkax.Producer
	CancelProducer *kafkax.Producer
	Service        string
}

type PlaceOrderReq struct {
	UserID          string `json:"user_id"`
	UserEmail       string `json:"user_email"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	Personalization string `json:"personalization,omitempty"`
}

type CancelOrderReq struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

type AdvanceStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(15 * time.Second))
		g.Post("/orders", h.placeOrder)
		g.Get("/orders", h.listOrders)
		g.Get("/orders/{id}", h.getOrder)
		g.Get("/orders/{id}/tracker", h.tracker)
		g.Post("/orders/{id}/cancel", h.cancelOrder)
		g.Get("/admin/orders", h.listAllOrders)
		g.Post("/admin/orders/{id}/status", h.advanceStatus)
	})
	// streams carry no blanket timeout, they live until unsubscribe
	r.Get("/orders/stream", h.streamUserOrders)
	r.Get("/admin/orders/stream", h.streamAllOrders)
}

// roleOf trusts the gateway-provided role header. Authentication itself
// is outside this service.
func roleOf(r *http.Request) orders.Role {
	if r.Header.Get("X-Role") == string(orders.RoleAdmin) {
		return orders.RoleAdmin
	}
	return orders.RoleCustomer
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	p, err := h.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}

	// some clients omit the email, the profile then fills it in
	if req.UserEmail == "" {
		if u, err := h.Users.Get(r.Context(), req.UserID); err == nil {
			req.UserEmail = u.Email
		}
	}

	o, err := h.Orders.Place(r.Context(), orders.Placement{
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		Product: orders.ProductSnapshot{
			ProductID:  p.ID.Hex(),
			Name:       p.Name,
			ImageURL:   p.ImageURL,
			PriceCents: p.PriceCents,
			Stock:      p.Stock,
		},
		Quantity:        req.Quantity,
		Personalization: req.Personalization,
	})
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publish(h.PlacedProducer, orders.EventOrderPlaced, o.ID.Hex(), r, orders.OrderPlacedPayload{
		OrderID:         o.ID.Hex(),
		UserID:          o.UserID,
		UserEmail:       o.UserEmail,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		Quantity:        o.Quantity,
		TotalCents:      o.TotalCents,
		Personalization: o.Personalization,
	})
	h.Metrics.OrdersPlaced.Add(r.Context(), 1)

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// tracker serves the derived progress view; status comes from the hot
// cache when fresh.
func (h *OrdersHandler) tracker(w http.ResponseWriter, r *http.Request) {
	s, err := h.Orders.StatusOf(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders.Tracker(s))
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}
	out, err := h.Orders.ListForUser(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	out, err := h.Orders.ListAll(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	var req AdvanceStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	id := chi.URLParam(r, "id")
	o, from, err := h.Orders.AdvanceStatus(r.Context(), id, req.Status, roleOf(r))
	if err != nil {
		writeErr(w, err)
		return
	}

	if from != o.Status {
		h.publish(h.StatusProducer, orders.EventOrderStatusChanged, o.ID.Hex(), r, orders.OrderStatusChangedPayload{
			OrderID:     o.ID.Hex(),
			UserID:      o.UserID,
			ProductName: o.ProductName,
			ImageURL:    o.ImageURL,
			From:        from,
			To:          o.Status,
		})
		h.Metrics.StatusChanges.Add(r.Context(), 1)
	}

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Orders.Cancel(r.Context(), chi.URLParam(r, "id"), req.UserID, req.Reason)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publish(h.CancelProducer, orders.EventOrderCancelled, o.ID.Hex(), r, orders.OrderCancelledPayload{
		OrderID:     o.ID.Hex(),
		UserID:      o.UserID,
		ProductName: o.ProductName,
		Reason:      o.CancelReason,
	})
	h.Metrics.OrdersCancelled.Add(r.Context(), 1)

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) streamUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}

	ch, stop, err := live.Subscribe(r.Context(), h.Hub, "orders:user:"+userID,
		func(ctx context.Context) ([]orders.Order, error) { return h.Orders.ListForUser(ctx, userID) },
		fmt.Sprintf(redisx.ChanOrdersUser, userID),
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	streamSSE(w, r, ch, stop)
}

func (h *OrdersHandler) streamAllOrders(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}

	ch, stop, err := live.Subscribe(r.Context(), h.Hub, "orders:all",
		func(ctx context.Context) ([]orders.Order, error) { return h.Orders.ListAll(ctx) },
		redisx.ChanOrdersAll,
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	streamSSE(w, r, ch, stop)
}

// publish wraps a payload in the versioned envelope and hands it to the
// async producer.
func (h *OrdersHandler) publish(p *kafkax.Producer, eventType, orderID string, r *http.Request, payload any) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
