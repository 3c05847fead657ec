// Package checkout turns a cart and a shipping form into an Order.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/money"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

// ErrEmptyCart rejects a checkout of an empty cart.
var ErrEmptyCart = apperrors.Conflict("EMPTY_CART", "cannot check out an empty cart")

var (
	ordersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_placed_total",
		Help:      "Orders assembled by checkout",
	}, []string{"payment_method"})

	checkoutRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkout_rejected_total",
		Help:      "Checkout attempts rejected before an order was built",
	}, []string{"reason"})
)

// Input is the checkout form.
type Input struct {
	Name             string `json:"name" validate:"required,min=2"`
	Address          string `json:"address" validate:"required,min=5"`
	Phone            string `json:"phone" validate:"required,phone"`
	Email            string `json:"email" validate:"required,email"`
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=transfer cash"`
	RememberShipping bool   `json:"remember_shipping"`
}

func (in Input) trimmed() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	return in
}

func (in Input) shipping() domain.ShippingInfo {
	return domain.ShippingInfo{Name: in.Name, Address: in.Address, Phone: in.Phone, Email: in.Email}
}

// Publisher announces placed orders. Failures never undo a checkout.
type Publisher interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides time.Now for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithIDs overrides the order id generator.
func WithIDs(next func() string) Option {
	return func(a *Assembler) { a.newID = next }
}

// Assembler validates checkout input and builds orders.
type Assembler struct {
	logger    *slog.Logger
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

// NewAssembler creates an Assembler. publisher may be nil.
func NewAssembler(logger *slog.Logger, publisher Publisher, opts ...Option) *Assembler {
	a := &Assembler{
		logger:    logger,
		publisher: publisher,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit places an order from store. It fails with ErrEmptyCart or a
// *validator.ValidationError, in which case nothing is written and the
// cart is untouched. Otherwise the order is handed over through session
// storage, the shipping preference is saved or erased, and the cart is
// cleared. Storage and publish failures after the order is built are
// logged and do not fail the checkout.
func (a *Assembler) Submit(ctx context.Context, store *cart.Store, session, local storage.KV, in Input) (order *domain.Order, err error) {
	ctx, span := tracing.Start(ctx, "checkout.submit")
	defer func() { tracing.End(span, err) }()

	if store.IsEmpty() {
		checkoutRejected.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	in = in.trimmed()
	if err := validator.Validate(in); err != nil {
		checkoutRejected.WithLabelValues("validation").Inc()
		return nil, err
	}

	order, err = a.assemble(store.Lines(), in)
	if err != nil {
		checkoutRejected.WithLabelValues("empty_cart").Inc()
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.lines", len(order.Lines)),
	)

	l := a.logger.With(slog.String("order_id", order.ID))

	if err := storage.SetJSON(ctx, session, storage.KeyOrder, order); err != nil {
		l.ErrorContext(ctx, "failed to hand over order through session storage", slog.String("error", err.Error()))
	}

	if in.RememberShipping {
		if err := storage.SetJSON(ctx, local, storage.KeyCheckoutPrefs, order.Shipping); err != nil {
			l.WarnContext(ctx, "failed to save shipping preference", slog.String("error", err.Error()))
		}
	} else if err := local.Remove(ctx, storage.KeyCheckoutPrefs); err != nil {
		l.WarnContext(ctx, "failed to erase shipping preference", slog.String("error", err.Error()))
	}

	store.Clear(ctx)
	ordersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()

	if a.publisher != nil {
		if err := a.publisher.OrderPlaced(ctx, order); err != nil {
			l.WarnContext(ctx, "order.placed not published", slog.String("error", err.Error()))
		}
	}

	l.InfoContext(ctx, "order placed",
		slog.Int("lines", len(order.Lines)),
		slog.String("total", order.Total.StringFixed(money.Places)),
		slog.String("payment_method", string(order.PaymentMethod)),
	)
	return order, nil
}

// assemble copies lines by value into a new Order. The total is summed
// from the copied lines, not read from the cart.
func (a *Assembler) assemble(lines []domain.CartLine, in Input) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	totals := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		lt := l.LineTotal()
		orderLines = append(orderLines, domain.OrderLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: lt,
		})
		totals = append(totals, lt)
	}

	return &domain.Order{
		ID:            a.newID(),
		Shipping:      in.shipping(),
		PaymentMethod: domain.PaymentMethod(in.PaymentMethod),
		Lines:         orderLines,
		Total:         money.Sum(totals...),
		CatalogName:   sharedCatalog(lines),
		CreatedAt:     a.now().UTC(),
	}, nil
}

// sharedCatalog returns the catalog name when every line came from the
// same catalog.
func sharedCatalog(lines []domain.CartLine) string {
	first := lines[0]
	for _, l := range lines[1:] {
		if l.CatalogID != first.CatalogID {
			return ""
		}
	}
	return first.CatalogName
}

// Prefill returns the saved shipping preference, if any.
func (a *Assembler) Prefill(ctx context.Context, local storage.KV) (domain.ShippingInfo, bool) {
	var info domain.ShippingInfo
	if err := storage.GetJSON(ctx, local, storage.KeyCheckoutPrefs, &info); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.WarnContext(ctx, "shipping preference unreadable", slog.String("error", err.Error()))
		}
		return domain.ShippingInfo{}, false
	}
	return info, true
}

// LastOrder returns the order handed over through session storage.
func (a *Assembler) LastOrder(ctx context.Context, session storage.KV) (*domain.Order, bool) {
	var order domain.Order
	if err := storage.GetJSON(ctx, session, storage.KeyOrder, &order); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.WarnContext(ctx, "stored order unreadable", slog.String("error", err.Error()))
		}
		return nil, false
	}
	return &order, true
}
