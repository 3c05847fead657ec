package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/session"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// Sessions opens the per-request view of a shopper session.
type Sessions interface {
	Open(ctx context.Context, sessionID string) *session.Shopper
}

// CartHandler serves the shopper's cart.
type CartHandler struct {
	sessions Sessions
	catalogs CatalogService
	currency string
	logger   *slog.Logger
}

// NewCartHandler creates a cart HTTP handler.
func NewCartHandler(sessions Sessions, catalogs CatalogService, currency string, logger *slog.Logger) *CartHandler {
	return &CartHandler{sessions: sessions, catalogs: catalogs, currency: currency, logger: logger}
}

// AddItemRequest is the body of POST /api/v1/cart/items.
type AddItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=9999"`
}

// UpdateQuantityRequest is the body of PUT /api/v1/cart/items/{itemId}.
// A quantity of zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=9999"`
}

func (h *CartHandler) shopper(r *http.Request) *session.Shopper {
	return h.sessions.Open(r.Context(), session.ID(r.Context()))
}

func (h *CartHandler) writeCart(w http.ResponseWriter, status int, s *session.Shopper) {
	httputil.WriteJSON(w, status, httputil.Response{Data: newCartView(s.Cart.Snapshot(), h.currency)})
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK, h.shopper(r))
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	item, ref, err := h.catalogs.ResolveItem(r.Context(), req.ItemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	s := h.shopper(r)
	if !s.Cart.AddItem(r.Context(), item, req.Quantity, ref) {
		httputil.WriteError(w, r, apperrors.InvalidInput("item cannot be added to the cart"), h.logger)
		return
	}
	h.writeCart(w, http.StatusOK, s)
}

// UpdateQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	itemID := chi.URLParam(r, "itemId")
	s := h.shopper(r)
	if !s.Cart.UpdateQuantity(r.Context(), itemID, *req.Quantity) {
		httputil.WriteError(w, r, apperrors.NotFound("cart line", itemID), h.logger)
		return
	}
	h.writeCart(w, http.StatusOK, s)
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	s := h.shopper(r)
	if !s.Cart.RemoveItem(r.Context(), itemID) {
		httputil.WriteError(w, r, apperrors.NotFound("cart line", itemID), h.logger)
		return
	}
	h.writeCart(w, http.StatusOK, s)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.shopper(r)
	s.Cart.Clear(r.Context())
	h.writeCart(w, http.StatusOK, s)
}
