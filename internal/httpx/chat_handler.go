package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/chat"
	"github.com/ariefcatur/go-engrave-orders.git/internal/errs"
	"github.com/ariefcatur/go-engrave-orders.git/internal/live"
	"github.com/ariefcatur/go-engrave-orders.git/internal/metrics"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ChatHandler struct {
	Chat    *chat.Repo
	Hub     *live.Hub
	Metrics *metrics.Metrics
}

type SendMessageReq struct {
	Sender chat.Sender `json:"sender"`
	Text   string      `json:"text"`
}

type ContactSupportReq struct {
	OrderID string `json:"order_id"`
}

func (h *ChatHandler) Register(r *chi.Mux) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(15 * time.Second))
		g.Get("/chats/{userID}", h.conversation)
		g.Post("/chats/{userID}/messages", h.sendMessage)
		g.Post("/chats/{userID}/support", h.contactSupport)
	})
	r.Get("/chats/{userID}/stream", h.streamConversation)
}

func (h *ChatHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Sender == chat.SenderAdmin && roleOf(r) != orders.RoleAdmin {
		writeErr(w, fmt.Errorf("sender %q requires the admin role: %w", req.Sender, errs.ErrUnauthorized))
		return
	}

	m, err := h.Chat.Send(r.Context(), chi.URLParam(r, "userID"), req.Sender, req.Text, nil)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.Metrics.MessagesSent.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, m)
}

func (h *ChatHandler) contactSupport(w http.ResponseWriter, r *http.Request) {
	var req ContactSupportReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	m, err := h.Chat.ContactSupport(r.Context(), chi.URLParam(r, "userID"), req.OrderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.Metrics.MessagesSent.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, m)
}

func (h *ChatHandler) conversation(w http.ResponseWriter, r *http.Request) {
	out, err := h.Chat.Conversation(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ChatHandler) streamConversation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	ch, stop, err := live.Subscribe(r.Context(), h.Hub, "chat:user:"+userID,
		func(ctx context.Context) ([]chat.Message, error) { return h.Chat.Conversation(ctx, userID) },
		fmt.Sprintf(redisx.ChanChatUser, userID),
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	streamSSE(w, r, ch, stop)
}
