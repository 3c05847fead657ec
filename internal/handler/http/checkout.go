package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/checkout"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/render"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

// Assembler places orders and reads back checkout state.
type Assembler interface {
	Submit(ctx context.Context, store *cart.Store, session, local storage.KV, in checkout.Input) (*domain.Order, error)
	Prefill(ctx context.Context, local storage.KV) (domain.ShippingInfo, bool)
	LastOrder(ctx context.Context, session storage.KV) (*domain.Order, bool)
}

// CheckoutHandler serves checkout and the placed order's artifacts.
type CheckoutHandler struct {
	sessions  Sessions
	assembler Assembler
	renderer  *render.Renderer
	currency  string
	logger    *slog.Logger
}

// NewCheckoutHandler creates a checkout HTTP handler.
func NewCheckoutHandler(sessions Sessions, assembler Assembler, renderer *render.Renderer, currency string, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		sessions:  sessions,
		assembler: assembler,
		renderer:  renderer,
		currency:  currency,
		logger:    logger,
	}
}

func (h *CheckoutHandler) shopper(r *http.Request) *session.Shopper {
	return h.sessions.Open(r.Context(), session.ID(r.Context()))
}

type prefillResponse struct {
	Found    bool                `json:"found"`
	Shipping domain.ShippingInfo `json:"shipping"`
}

// Prefill handles GET /api/v1/checkout/prefill
func (h *CheckoutHandler) Prefill(w http.ResponseWriter, r *http.Request) {
	info, ok := h.assembler.Prefill(r.Context(), h.shopper(r).Local)
	httputil.WriteData(w, prefillResponse{Found: ok, Shipping: info})
}

// Submit handles POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in checkout.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteBadRequest(w, "invalid request body")
		return
	}

	s := h.shopper(r)
	order, err := h.assembler.Submit(r.Context(), s.Cart, s.Session, s.Local, in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: newOrderView(order, h.currency)})
}

func (h *CheckoutHandler) currentOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	order, ok := h.assembler.LastOrder(r.Context(), h.shopper(r).Session)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("order", "current"), h.logger)
		return nil, false
	}
	return order, true
}

// CurrentOrder handles GET /api/v1/orders/current
func (h *CheckoutHandler) CurrentOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.currentOrder(w, r)
	if !ok {
		return
	}
	httputil.WriteData(w, newOrderView(order, h.currency))
}

// OrderPDF handles GET /api/v1/orders/current/pdf
func (h *CheckoutHandler) OrderPDF(w http.ResponseWriter, r *http.Request) {
	order, ok := h.currentOrder(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.renderer.PDF(&buf, order)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type shareResponse struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// ShareOrder handles GET /api/v1/orders/current/share
func (h *CheckoutHandler) ShareOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := h.currentOrder(w, r)
	if !ok {
		return
	}
	link, err := h.renderer.ShareLink(order)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}
	httputil.WriteData(w, shareResponse{URL: link, Text: h.renderer.ShareText(order)})
}
