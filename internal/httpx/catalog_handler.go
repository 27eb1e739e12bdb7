package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-engrave-orders.git/internal/catalog"
	"github.com/ariefcatur/go-engrave-orders.git/internal/live"
	"github.com/ariefcatur/go-engrave-orders.git/internal/metrics"
	"github.com/ariefcatur/go-engrave-orders.git/internal/orders"
	"github.com/ariefcatur/go-engrave-orders.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type CatalogHandler struct {
	Products *catalog.Products
	Wishlist *catalog.Wishlist
	Users    *catalog.Users
	Hub      *live.Hub
	Metrics  *metrics.Metrics
}

type AdjustStockReq struct {
	Delta int `json:"delta"`
}

type ToggleWishlistReq struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(15 * time.Second))
		g.Get("/products", h.listProducts)
		g.Get("/products/{id}", h.getProduct)
		g.Post("/admin/products", h.createProduct)
		g.Put("/admin/products/{id}", h.updateProduct)
		g.Delete("/admin/products/{id}", h.deleteProduct)
		g.Post("/admin/products/{id}/stock", h.adjustStock)
		g.Get("/wishlist", h.listWishlist)
		g.Post("/wishlist/toggle", h.toggleWishlist)
		g.Get("/users/{id}", h.getUser)
		g.Put("/users/{id}", h.putUser)
	})
	r.Get("/products/stream", h.streamProducts)
	r.Get("/wishlist/stream", h.streamWishlist)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.Products.List(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	created, err := h.Products.Create(r.Context(), p)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Products.Update(r.Context(), chi.URLParam(r, "id"), p); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *CatalogHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	if err := h.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// adjustStock is the manual inventory control: placing an order never
// touches stock, staff do it here.
func (h *CatalogHandler) adjustStock(w http.ResponseWriter, r *http.Request) {
	if roleOf(r) != orders.RoleAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
		return
	}
	var req AdjustStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	p, err := h.Products.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) listWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}
	out, err := h.Wishlist.List(r.Context(), userID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	var req ToggleWishlistReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	liked, err := h.Wishlist.Toggle(r.Context(), req.UserID, req.ProductID)
	if err != nil {
		writeErr(w, err)
		return
	}
	h.Metrics.WishlistToggles.Add(r.Context(), 1)
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *CatalogHandler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) putUser(w http.ResponseWriter, r *http.Request) {
	var u catalog.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	u.ID = chi.URLParam(r, "id")
	if err := h.Users.Upsert(r.Context(), u); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *CatalogHandler) streamProducts(w http.ResponseWriter, r *http.Request) {
	ch, stop, err := live.Subscribe(r.Context(), h.Hub, "products",
		func(ctx context.Context) ([]catalog.Product, error) { return h.Products.List(ctx) },
		redisx.ChanProducts,
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	streamSSE(w, r, ch, stop)
}

func (h *CatalogHandler) streamWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user"})
		return
	}
	ch, stop, err := live.Subscribe(r.Context(), h.Hub, "wishlist:user:"+userID,
		func(ctx context.Context) ([]catalog.WishlistEntry, error) { return h.Wishlist.List(ctx, userID) },
		fmt.Sprintf(redisx.ChanWishUser, userID),
	)
	if err != nil {
		writeErr(w, err)
		return
	}
	streamSSE(w, r, ch, stop)
}
