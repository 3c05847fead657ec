package cart

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/storage/memory"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockKV) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockKV) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string) domain.Item {
	return domain.Item{
		ID:        id,
		CatalogID: "cat-1",
		Name:      "Item " + id,
		Price:     decimal.NewNullDecimal(dec(price)),
	}
}

var summer = domain.CatalogRef{ID: "cat-1", Name: "Summer"}

func newStore(t *testing.T, opts ...Option) (*Store, *memory.KV) {
	t.Helper()
	kv := memory.NewKV()
	return New(context.Background(), kv, opts...), kv
}

// ---------------------------------------------------------------------------
// AddItem
// ---------------------------------------------------------------------------

func TestAddItem_InsertsLine(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.True(t, s.AddItem(ctx, item("A", "10"), 2, summer))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].ItemID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "cat-1", lines[0].CatalogID)
	assert.Equal(t, "Summer", lines[0].CatalogName)
	assert.Equal(t, StateNonEmpty, s.State())
}

func TestAddItem_MergesSameItem(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	for _, q := range []int{1, 3, 2} {
		require.True(t, s.AddItem(ctx, item("A", "10"), q, summer))
	}

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 6, lines[0].Quantity)
}

func TestAddItem_RefreshesDisplayFields(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	s.AddItem(ctx, item("A", "10"), 1, summer)
	renamed := item("A", "12.50")
	renamed.Name = "Renamed"
	renamed.ImageRef = "img/a.png"
	s.AddItem(ctx, renamed, 1, summer)

	l := s.Lines()[0]
	assert.Equal(t, "Renamed", l.Name)
	assert.True(t, dec("12.50").Equal(l.UnitPrice))
	assert.Equal(t, "img/a.png", l.ImageRef)
	assert.Equal(t, 2, l.Quantity)
}

func TestAddItem_FallsBackToItemCatalog(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(context.Background(), item("A", "1"), 1, domain.CatalogRef{})
	assert.Equal(t, "cat-1", s.Lines()[0].CatalogID)
}

func TestAddItem_RejectsUnusableInput(t *testing.T) {
	noPrice := item("A", "1")
	noPrice.Price = decimal.NullDecimal{}

	tests := []struct {
		name string
		item domain.Item
		qty  int
	}{
		{"no id", item("", "1"), 1},
		{"null price", noPrice, 1},
		{"negative price", item("A", "-1"), 1},
		{"zero quantity", item("A", "1"), 0},
		{"negative quantity", item("A", "1"), -3},
		{"over line limit", item("A", "1"), domain.MaxLineQuantity + 1},
		{"max int", item("A", "1"), math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := &mockKV{}
			kv.On("Get", mock.Anything, storage.KeyCart).Return(nil, storage.ErrNotFound)
			s := New(context.Background(), kv)

			notified := false
			s.Subscribe(func(context.Context, Snapshot) { notified = true })

			assert.False(t, s.AddItem(context.Background(), tt.item, tt.qty, summer))
			assert.True(t, s.IsEmpty())
			assert.False(t, notified)
			kv.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAddItem_MergePastLineLimitIsRejected(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	require.True(t, s.AddItem(ctx, item("A", "1"), domain.MaxLineQuantity, summer))
	notified := 0
	s.Subscribe(func(context.Context, Snapshot) { notified++ })

	assert.False(t, s.AddItem(ctx, item("A", "1"), 1, summer))
	assert.False(t, s.AddItem(ctx, item("A", "1"), math.MaxInt, summer))
	assert.Equal(t, 0, notified)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.MaxLineQuantity, lines[0].Quantity)
	assert.True(t, s.Subtotal().Equal(decimal.NewFromInt(domain.MaxLineQuantity)))

	reopened := New(ctx, kv).Lines()
	require.Len(t, reopened, 1)
	assert.Equal(t, domain.MaxLineQuantity, reopened[0].Quantity)
}

// ---------------------------------------------------------------------------
// UpdateQuantity / RemoveItem / Clear
// ---------------------------------------------------------------------------

func TestUpdateQuantity_FloorRule(t *testing.T) {
	tests := []struct {
		name    string
		updates []int
		present bool
		want    int
	}{
		{"positive sets exactly", []int{7}, true, 7},
		{"removed line stays removed", []int{0, 3}, false, 0},
		{"zero removes", []int{5, 0}, false, 0},
		{"negative removes", []int{-1}, false, 0},
		{"one keeps line", []int{4, 1}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newStore(t)
			ctx := context.Background()
			s.AddItem(ctx, item("A", "2"), 2, summer)

			for _, q := range tt.updates {
				s.UpdateQuantity(ctx, "A", q)
			}

			lines := s.Lines()
			if !tt.present {
				assert.Empty(t, lines)
				assert.Equal(t, StateEmpty, s.State())
				return
			}
			require.Len(t, lines, 1)
			assert.Equal(t, tt.want, lines[0].Quantity)
		})
	}
}

func TestUpdateQuantity_PastLineLimitIsRejected(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddItem(ctx, item("A", "2"), 2, summer)

	assert.False(t, s.UpdateQuantity(ctx, "A", domain.MaxLineQuantity+1))
	assert.True(t, s.UpdateQuantity(ctx, "A", domain.MaxLineQuantity))
	assert.Equal(t, domain.MaxLineQuantity, s.Lines()[0].Quantity)
}

func TestUpdateQuantity_AbsentIsNoop(t *testing.T) {
	s, _ := newStore(t)
	notified := 0
	s.Subscribe(func(context.Context, Snapshot) { notified++ })

	assert.False(t, s.UpdateQuantity(context.Background(), "missing", 3))
	assert.Equal(t, 0, notified)
}

func TestRemoveItem(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	s.AddItem(ctx, item("A", "1"), 1, summer)
	s.AddItem(ctx, item("B", "1"), 1, summer)

	assert.True(t, s.RemoveItem(ctx, "A"))
	assert.False(t, s.RemoveItem(ctx, "A"))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0].ItemID)
}

func TestClear_RemovesStoredCart(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()
	s.AddItem(ctx, item("A", "3"), 1, summer)

	s.Clear(ctx)

	assert.True(t, s.IsEmpty())
	assert.True(t, s.Subtotal().IsZero())
	_, err := kv.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Totals
// ---------------------------------------------------------------------------

func TestTotals_Exact(t *testing.T) {
	s, _ := newStore(t, WithShippingCost(dec("4.99")))
	ctx := context.Background()

	s.AddItem(ctx, item("A", "0.10"), 3, summer)
	s.AddItem(ctx, item("B", "19.99"), 2, summer)

	assert.Equal(t, "40.28", s.Subtotal().StringFixed(2))
	assert.True(t, dec("40.28").Equal(s.Subtotal()))
	assert.True(t, dec("4.99").Equal(s.ShippingCost()))
	assert.True(t, dec("45.27").Equal(s.Total()))
	assert.Equal(t, 5, s.ItemCount())
}

func TestTotals_EmptyCart(t *testing.T) {
	s, _ := newStore(t)
	assert.True(t, s.Subtotal().IsZero())
	assert.True(t, s.Total().IsZero())
	assert.Equal(t, 0, s.ItemCount())

	snap := s.Snapshot()
	assert.NotNil(t, snap.Lines)
	assert.Equal(t, StateEmpty, snap.State)
}

func TestScenario_AddUpdateMerge(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	s.AddItem(ctx, item("A", "10"), 2, summer)
	s.AddItem(ctx, item("B", "5"), 1, summer)
	assert.True(t, dec("25").Equal(s.Subtotal()))

	s.UpdateQuantity(ctx, "A", 0)
	assert.True(t, dec("5").Equal(s.Subtotal()))

	s.AddItem(ctx, item("B", "5"), 3, summer)
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.True(t, dec("20").Equal(s.Subtotal()))
}

// ---------------------------------------------------------------------------
// Persistence
// ---------------------------------------------------------------------------

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	s := New(ctx, kv)
	s.AddItem(ctx, item("A", "10.50"), 2, summer)
	s.AddItem(ctx, item("B", "0.01"), 9, summer)

	reopened := New(ctx, kv)
	assertSameLines(t, s.Lines(), reopened.Lines())

	// Re-persisting an untouched restore is idempotent.
	reopened.UpdateQuantity(ctx, "A", 2)
	again := New(ctx, kv)
	assertSameLines(t, s.Lines(), again.Lines())
}

func assertSameLines(t *testing.T, want, got []domain.CartLine) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ItemID, got[i].ItemID)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
		assert.True(t, want[i].UnitPrice.Equal(got[i].UnitPrice), "unit price of %s", want[i].ItemID)
		assert.Equal(t, want[i].CatalogName, got[i].CatalogName)
	}
}

func TestRestore_CorruptOrInvalidData(t *testing.T) {
	ctx := context.Background()

	kv := memory.NewKV()
	require.NoError(t, kv.Set(ctx, storage.KeyCart, []byte("{not json")))
	assert.True(t, New(ctx, kv).IsEmpty())

	require.NoError(t, kv.Set(ctx, storage.KeyCart, []byte(`[
		{"item_id":"A","name":"ok","unit_price":"2","quantity":1},
		{"item_id":"","name":"no id","unit_price":"2","quantity":1},
		{"item_id":"C","name":"zero","unit_price":"2","quantity":0},
		{"item_id":"A","name":"dup","unit_price":"2","quantity":2}
	]`)))
	lines := New(ctx, kv).Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].ItemID)
	assert.Equal(t, 3, lines[0].Quantity)

	require.NoError(t, kv.Set(ctx, storage.KeyCart, []byte(`[
		{"item_id":"A","name":"ok","unit_price":"2","quantity":9000},
		{"item_id":"A","name":"dup","unit_price":"2","quantity":9000},
		{"item_id":"B","name":"huge","unit_price":"2","quantity":9223372036854775807}
	]`)))
	lines = New(ctx, kv).Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.MaxLineQuantity, lines[0].Quantity)
}

func TestRestore_StorageUnavailable(t *testing.T) {
	kv := &mockKV{}
	kv.On("Get", mock.Anything, storage.KeyCart).Return(nil, errors.New("redis down"))

	s := New(context.Background(), kv)
	assert.True(t, s.IsEmpty())
}

func TestPersistFailure_KeepsInMemoryChange(t *testing.T) {
	kv := &mockKV{}
	kv.On("Get", mock.Anything, storage.KeyCart).Return(nil, storage.ErrNotFound)
	kv.On("Set", mock.Anything, storage.KeyCart, mock.Anything).Return(errors.New("quota exceeded"))
	kv.On("Remove", mock.Anything, storage.KeyCart).Return(errors.New("quota exceeded"))

	s := New(context.Background(), kv)
	var snaps []Snapshot
	s.Subscribe(func(_ context.Context, snap Snapshot) { snaps = append(snaps, snap) })

	require.True(t, s.AddItem(context.Background(), item("A", "1"), 1, summer))
	assert.Equal(t, 1, s.ItemCount())

	s.Clear(context.Background())
	assert.True(t, s.IsEmpty())
	assert.Len(t, snaps, 2)
	kv.AssertExpectations(t)
}

func TestTwoStoresLastWriterWins(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()

	tab1 := New(ctx, kv)
	tab2 := New(ctx, kv)
	tab1.AddItem(ctx, item("A", "1"), 1, summer)
	tab2.AddItem(ctx, item("B", "1"), 1, summer)

	lines := New(ctx, kv).Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0].ItemID)
}

// ---------------------------------------------------------------------------
// Subscriptions
// ---------------------------------------------------------------------------

func TestSubscribe_SynchronousInOrder(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var order []string
	s.Subscribe(func(_ context.Context, snap Snapshot) { order = append(order, "first:"+snap.Subtotal.String()) })
	s.Subscribe(func(_ context.Context, snap Snapshot) { order = append(order, "second:"+snap.Subtotal.String()) })

	s.AddItem(ctx, item("A", "10"), 2, summer)

	assert.Equal(t, []string{"first:20", "second:20"}, order)
}

func TestSubscribe_StateTransitions(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var states []State
	s.Subscribe(func(_ context.Context, snap Snapshot) { states = append(states, snap.State) })

	s.AddItem(ctx, item("A", "1"), 1, summer)
	s.AddItem(ctx, item("B", "1"), 1, summer)
	s.RemoveItem(ctx, "A")
	s.UpdateQuantity(ctx, "B", 0)

	assert.Equal(t, []State{StateNonEmpty, StateNonEmpty, StateNonEmpty, StateEmpty}, states)
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	calls := 0
	unsubscribe := s.Subscribe(func(context.Context, Snapshot) { calls++ })
	other := 0
	s.Subscribe(func(context.Context, Snapshot) { other++ })

	s.AddItem(ctx, item("A", "1"), 1, summer)
	unsubscribe()
	unsubscribe()
	s.AddItem(ctx, item("A", "1"), 1, summer)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestLines_ReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	s.AddItem(context.Background(), item("A", "1"), 1, summer)

	lines := s.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, s.Lines()[0].Quantity)
}

func TestConcurrentMutations(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	var delivered int
	s.Subscribe(func(context.Context, Snapshot) { delivered++ })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddItem(ctx, item("A", "1"), 1, summer)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.ItemCount())
	assert.Equal(t, 50, delivered)
}

func TestState_MarshalText(t *testing.T) {
	b, err := StateNonEmpty.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "non_empty", string(b))
	assert.Equal(t, "empty", StateEmpty.String())
}
