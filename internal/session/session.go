// Package session identifies shoppers and opens their per-request state.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/cart"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/middleware"
)

// CookieName carries the shopper session id.
const CookieName = "sf_session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// Middleware resolves the shopper session from the cookie, or the
// X-Session-ID header for cookie-less clients, issuing a new id when
// neither holds a valid one. The cookie is refreshed on every response.
func Middleware(cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := resolve(r)

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge / time.Second),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(middleware.SessionHeader, sid)

			ctx := logger.WithSessionID(r.Context(), sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolve(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && valid(c.Value) {
		return c.Value
	}
	if h := r.Header.Get(middleware.SessionHeader); valid(h) {
		return h
	}
	return uuid.NewString()
}

func valid(id string) bool {
	_, err := uuid.Parse(id)
	return id != "" && err == nil
}

// ID returns the session id resolved by Middleware.
func ID(ctx context.Context) string {
	return logger.SessionIDFromContext(ctx)
}

// Shopper is one request's view of a session: its cart and both stores.
type Shopper struct {
	ID      string
	Cart    *cart.Store
	Local   storage.KV
	Session storage.KV
}

// Manager opens shoppers over a storage provider.
type Manager struct {
	provider  storage.Provider
	shipping  decimal.Decimal
	listeners []func(sessionID string) cart.Listener
}

// NewManager creates a Manager. shipping is the flat cost every cart
// carries.
func NewManager(provider storage.Provider, shipping decimal.Decimal) *Manager {
	return &Manager{provider: provider, shipping: shipping}
}

// OnCartChange subscribes a listener built per session to every cart the
// Manager opens.
func (m *Manager) OnCartChange(build func(sessionID string) cart.Listener) {
	m.listeners = append(m.listeners, build)
}

// Open restores the shopper's cart from durable storage. Each call reads
// storage afresh; concurrent requests of one session do not share state
// and the last one to persist wins.
func (m *Manager) Open(ctx context.Context, sessionID string) *Shopper {
	local := m.provider.Local(sessionID)
	store := cart.New(ctx, local,
		cart.WithLogger(logger.FromContext(ctx).With(slog.String("component", "cart"))),
		cart.WithShippingCost(m.shipping),
	)
	for _, build := range m.listeners {
		store.Subscribe(build(sessionID))
	}
	return &Shopper{
		ID:      sessionID,
		Cart:    store,
		Local:   local,
		Session: m.provider.Session(sessionID),
	}
}

// Ping checks the storage backend.
func (m *Manager) Ping(ctx context.Context) error {
	return m.provider.Ping(ctx)
}
