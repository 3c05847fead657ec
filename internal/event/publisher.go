// Package event publishes storefront domain events to Kafka.
package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Topics written by the storefront.
var (
	TopicCartUpdated = pkgkafka.Topic("cart", "updated")
	TopicOrderPlaced = pkgkafka.Topic("order", "placed")
)

// Source identifies the storefront in event envelopes.
const Source = "storefront"

const cartPublishTimeout = 5 * time.Second

// ErrDraining is reported for cart changes made after Drain started.
var ErrDraining = errors.New("event: publisher is draining")

// OrderPlacedData is the payload of order.placed.
type OrderPlacedData struct {
	OrderID       string              `json:"order_id"`
	Shipping      domain.ShippingInfo `json:"shipping"`
	PaymentMethod string              `json:"payment_method"`
	Lines         []domain.OrderLine  `json:"lines"`
	Total         decimal.Decimal     `json:"total"`
	CatalogName   string              `json:"catalog_name,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CartUpdatedData is the payload of cart.updated.
type CartUpdatedData struct {
	SessionID string          `json:"session_id"`
	State     string          `json:"state"`
	Lines     int             `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
}

type eventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Publisher turns domain changes into Kafka events.
type Publisher struct {
	writer eventWriter
	logger *slog.Logger

	mu       sync.Mutex
	draining bool
	inflight sync.WaitGroup
}

// NewPublisher creates a Publisher over a Kafka producer.
func NewPublisher(writer eventWriter, logger *slog.Logger) *Publisher {
	return &Publisher{writer: writer, logger: logger}
}

// OrderPlaced publishes order.placed keyed by order id.
func (p *Publisher) OrderPlaced(ctx context.Context, o *domain.Order) error {
	data := OrderPlacedData{
		OrderID:       o.ID,
		Shipping:      o.Shipping,
		PaymentMethod: string(o.PaymentMethod),
		Lines:         o.Lines,
		Total:         o.Total,
		CatalogName:   o.CatalogName,
		CreatedAt:     o.CreatedAt,
	}
	return p.publish(ctx, TopicOrderPlaced, "order.placed", o.ID, data)
}

// CartUpdated publishes cart.updated keyed by session id.
func (p *Publisher) CartUpdated(ctx context.Context, sessionID string, snap cart.Snapshot) error {
	data := CartUpdatedData{
		SessionID: sessionID,
		State:     snap.State.String(),
		Lines:     len(snap.Lines),
		ItemCount: snap.ItemCount,
		Subtotal:  snap.Subtotal,
		Total:     snap.Total,
	}
	return p.publish(ctx, TopicCartUpdated, "cart.updated", sessionID, data)
}

// CartListener returns a cart.Listener publishing cart.updated for
// sessionID. Publication runs in the background so the cart is not held
// while the broker answers; done, when non-nil, is called after each
// attempt. After Drain starts, changes are logged and dropped.
func (p *Publisher) CartListener(sessionID string, done func(error)) cart.Listener {
	return func(ctx context.Context, snap cart.Snapshot) {
		p.mu.Lock()
		if p.draining {
			p.mu.Unlock()
			p.logger.WarnContext(ctx, "cart.updated dropped during shutdown")
			if done != nil {
				done(ErrDraining)
			}
			return
		}
		p.inflight.Add(1)
		p.mu.Unlock()

		ctx = context.WithoutCancel(ctx)
		go func() {
			defer p.inflight.Done()
			ctx, cancel := context.WithTimeout(ctx, cartPublishTimeout)
			defer cancel()
			err := p.CartUpdated(ctx, sessionID, snap)
			if err != nil {
				p.logger.WarnContext(ctx, "cart.updated not published", slog.String("error", err.Error()))
			}
			if done != nil {
				done(err)
			}
		}()
	}
}

// Drain stops accepting background publications and waits for those in
// flight, or until ctx is done. Call it before closing the writer.
func (p *Publisher) Drain(ctx context.Context) error {
	p.mu.Lock()
	p.draining = true
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain cart events: %w", ctx.Err())
	}
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, key string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, key, Source, data)
	if err != nil {
		return err
	}
	evt.CorrelationID = logger.CorrelationIDFromContext(ctx)
	evt.SessionID = logger.SessionIDFromContext(ctx)
	return p.writer.Publish(ctx, topic, evt)
}
