// Package cart implements the shopper's cart: an ordered set of lines with
// derived totals, mirrored into durable storage on every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/money"
)

// State is the externally visible cart state.
type State int

const (
	StateEmpty State = iota
	StateNonEmpty
)

func (s State) String() string {
	if s == StateNonEmpty {
		return "non_empty"
	}
	return "empty"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "empty":
		*s = StateEmpty
	case "non_empty":
		*s = StateNonEmpty
	default:
		return fmt.Errorf("unknown cart state %q", b)
	}
	return nil
}

// Snapshot is a copy of the cart and its totals at one instant.
type Snapshot struct {
	Lines     []domain.CartLine `json:"lines"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int               `json:"item_count"`
	State     State             `json:"state"`
}

// Listener receives the post-mutation snapshot. Listeners run while the
// store is locked and must not call back into the store.
type Listener func(ctx context.Context, snap Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithShippingCost sets the flat shipping cost added to the subtotal.
func WithShippingCost(cost decimal.Decimal) Option {
	return func(s *Store) { s.shipping = cost }
}

// Store is one shopper's cart. It is safe for concurrent use; operations
// and listener delivery are serialised.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	logger    *slog.Logger
	shipping  decimal.Decimal
	lines     []domain.CartLine
	listeners []subscription
	nextSubID int
}

// New opens the cart persisted in kv. A missing, unreadable or corrupt
// cart yields an empty store.
func New(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		logger:   slog.Default(),
		shipping: decimal.Zero,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	raw, err := s.kv.Get(ctx, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			restoreFailures.WithLabelValues("read").Inc()
			s.logger.WarnContext(ctx, "cart restore failed, starting empty", slog.String("error", err.Error()))
		}
		return
	}

	var stored []domain.CartLine
	if err := json.Unmarshal(raw, &stored); err != nil {
		restoreFailures.WithLabelValues("corrupt").Inc()
		s.logger.WarnContext(ctx, "stored cart is corrupt, starting empty", slog.String("error", err.Error()))
		return
	}

	for _, l := range stored {
		if !l.Valid() {
			s.logger.WarnContext(ctx, "dropping invalid stored cart line", slog.String("item_id", l.ItemID))
			continue
		}
		if i := s.indexOf(l.ItemID); i >= 0 {
			s.lines[i].Quantity = min(s.lines[i].Quantity+l.Quantity, domain.MaxLineQuantity)
			continue
		}
		s.lines = append(s.lines, l)
	}
}

// Subscribe registers fn for every subsequent mutation. The returned func
// removes it and may be called any number of times.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// AddItem adds quantity units of item, merging into an existing line with
// the same id. Items without an id or a non-negative price, quantities
// below 1, and adds that would push the line past domain.MaxLineQuantity
// are ignored and false is returned.
func (s *Store) AddItem(ctx context.Context, item domain.Item, quantity int, catalog domain.CatalogRef) bool {
	if !item.Purchasable() || quantity < 1 || quantity > domain.MaxLineQuantity {
		rejectedAdds.Inc()
		s.logger.DebugContext(ctx, "ignoring unusable cart add",
			slog.String("item_id", item.ID),
			slog.Int("quantity", quantity),
		)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ID); i >= 0 {
		l := &s.lines[i]
		if quantity > domain.MaxLineQuantity-l.Quantity {
			rejectedAdds.Inc()
			s.logger.DebugContext(ctx, "ignoring cart add past line limit",
				slog.String("item_id", item.ID),
				slog.Int("quantity", quantity),
				slog.Int("current", l.Quantity),
			)
			return false
		}
		l.Quantity += quantity
		l.Name = item.Name
		l.UnitPrice = item.Price.Decimal
		l.ImageRef = item.ImageRef
		if catalog.ID != "" {
			l.CatalogID, l.CatalogName = catalog.ID, catalog.Name
		}
	} else {
		catalogID := catalog.ID
		if catalogID == "" {
			catalogID = item.CatalogID
		}
		s.lines = append(s.lines, domain.CartLine{
			ItemID:      item.ID,
			Name:        item.Name,
			UnitPrice:   item.Price.Decimal,
			Quantity:    quantity,
			ImageRef:    item.ImageRef,
			CatalogID:   catalogID,
			CatalogName: catalog.Name,
		})
	}

	s.commit(ctx)
	return true
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line. Returns false when the item is not in the cart
// or quantity exceeds domain.MaxLineQuantity.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) bool {
	if quantity > domain.MaxLineQuantity {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(itemID)
	if i < 0 {
		return false
	}
	if quantity <= 0 {
		s.lines = slices.Delete(s.lines, i, i+1)
	} else {
		s.lines[i].Quantity = quantity
	}

	s.commit(ctx)
	return true
}

// RemoveItem deletes a line. Returns false when the item is not in the cart.
func (s *Store) RemoveItem(ctx context.Context, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(itemID)
	if i < 0 {
		return false
	}
	s.lines = slices.Delete(s.lines, i, i+1)

	s.commit(ctx)
	return true
}

// Clear empties the cart and removes it from storage.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.commit(ctx)
}

// Subtotal is the exact sum of line totals.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotal()
}

// ShippingCost is the configured flat shipping cost.
func (s *Store) ShippingCost() decimal.Decimal {
	return s.shipping
}

// Total is Subtotal plus ShippingCost.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtotal().Add(s.shipping)
}

// ItemCount is the sum of quantities across lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemCount()
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// IsEmpty reports whether the cart has no lines.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// State reports StateEmpty or StateNonEmpty.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Snapshot returns the lines and totals.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) indexOf(itemID string) int {
	return slices.IndexFunc(s.lines, func(l domain.CartLine) bool { return l.ItemID == itemID })
}

func (s *Store) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func (s *Store) itemCount() int {
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) state() State {
	if len(s.lines) == 0 {
		return StateEmpty
	}
	return StateNonEmpty
}

func (s *Store) snapshot() Snapshot {
	sub := s.subtotal()
	lines := slices.Clone(s.lines)
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return Snapshot{
		Lines:     lines,
		Subtotal:  sub,
		Shipping:  s.shipping,
		Total:     money.Sum(sub, s.shipping),
		ItemCount: s.itemCount(),
		State:     s.state(),
	}
}

// commit persists the current lines and notifies listeners. Persistence
// failures are logged and counted; the in-memory change stands.
func (s *Store) commit(ctx context.Context) {
	if err := s.persist(ctx); err != nil {
		persistFailures.Inc()
		s.logger.ErrorContext(ctx, "cart persist failed", slog.String("error", err.Error()))
	}

	if len(s.listeners) == 0 {
		return
	}
	snap := s.snapshot()
	for _, sub := range s.listeners {
		sub.fn(ctx, snap)
	}
}

func (s *Store) persist(ctx context.Context) error {
	if len(s.lines) == 0 {
		return s.kv.Remove(ctx, storage.KeyCart)
	}
	raw, err := json.Marshal(s.lines)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, storage.KeyCart, raw)
}
