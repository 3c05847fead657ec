// Package storage models the two per-shopper stores a browser offers: a
// durable local store that outlives visits and a short-lived session store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// Keys used by the storefront.
const (
	KeyCart          = "cart"
	KeyOrder         = "order"
	KeyCheckoutPrefs = "checkout_prefs"
)

// KV is a string-keyed byte store scoped to one shopper.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Provider opens the local and session stores of a shopper session.
type Provider interface {
	Local(sessionID string) KV
	Session(sessionID string) KV
	Ping(ctx context.Context) error
}

// GetJSON reads key and decodes it into dst.
func GetJSON(ctx context.Context, kv KV, key string, dst any) error {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
