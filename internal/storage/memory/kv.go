package memory

import (
	"context"
	"sync"

	"github.com/utafrali/storefront/internal/storage"
)

// KV is an in-process store. Values are copied on the way in and out.
// Entries never expire.
type KV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewKV creates an empty store.
func NewKV() *KV {
	return &KV{data: make(map[string][]byte)}
}

func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *KV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *KV) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Provider keeps one KV per session and namespace for the life of the
// process. Used with STORAGE_DRIVER=memory.
type Provider struct {
	mu     sync.Mutex
	stores map[string]*KV
}

// NewProvider creates an empty Provider.
func NewProvider() *Provider {
	return &Provider{stores: make(map[string]*KV)}
}

func (p *Provider) open(name string) *KV {
	p.mu.Lock()
	defer p.mu.Unlock()
	kv, ok := p.stores[name]
	if !ok {
		kv = NewKV()
		p.stores[name] = kv
	}
	return kv
}

func (p *Provider) Local(sessionID string) storage.KV   { return p.open("local:" + sessionID) }
func (p *Provider) Session(sessionID string) storage.KV { return p.open("session:" + sessionID) }
func (p *Provider) Ping(context.Context) error          { return nil }
