package store

import (
	"context"
	"sync"
	"time"

	"github.com/trezcool/shule/core"
)

// Manager binds the shared cache, remote store, debounce window and logger,
// and hands out slot options scoped to a tenant.
type Manager struct {
	cache    LocalCache
	remote   RemoteStore
	debounce time.Duration
	logger   core.Logger
}

func NewManager(cache LocalCache, remote RemoteStore, debounce time.Duration, logger core.Logger) *Manager {
	return &Manager{cache: cache, remote: remote, debounce: debounce, logger: logger}
}

func (m *Manager) Options(tenantID, key string) Options {
	return Options{
		TenantID: tenantID,
		Key:      key,
		Cache:    m.cache,
		Remote:   m.remote,
		Debounce: m.debounce,
		Logger:   m.logger,
	}
}

func (m *Manager) SystemOptions(key string) Options {
	opts := m.Options("", key)
	opts.System = true
	return opts
}

// TenantSlots lazily creates one slot of a given kind per tenant. Each slot's
// initial remote fetch runs in its own goroutine; reads before it completes
// are served local-first.
type TenantSlots[T any] struct {
	m   *Manager
	key string
	def func() T

	mu    sync.Mutex
	slots map[string]*Slot[T]
}

func NewTenantSlots[T any](m *Manager, key string, def func() T) *TenantSlots[T] {
	return &TenantSlots[T]{m: m, key: key, def: def, slots: make(map[string]*Slot[T])}
}

func (ts *TenantSlots[T]) Slot(tenantID string) *Slot[T] {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if s, ok := ts.slots[tenantID]; ok {
		return s
	}
	s := NewSlot(ts.m.Options(tenantID, ts.key), ts.def())
	ts.slots[tenantID] = s
	go s.Open(context.Background())
	return s
}

// CloseAll flushes every open slot's pending remote write.
func (ts *TenantSlots[T]) CloseAll() {
	ts.mu.Lock()
	slots := make([]*Slot[T], 0, len(ts.slots))
	for _, s := range ts.slots {
		slots = append(slots, s)
	}
	ts.mu.Unlock()

	for _, s := range slots {
		s.Close()
	}
}
