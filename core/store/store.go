// Package store implements the synced tenant store: per (tenant, slot)
// state kept in a synchronous local cache and mirrored, best effort and
// debounced, to a remote document store.
package store

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoDocument is returned by RemoteStore implementations when no
	// document exists for the requested key.
	ErrNoDocument = errors.New("store: no document")

	// ErrNotLoaded is returned by Slot.Set before the initial remote
	// reconciliation has completed; such writes are dropped so a transient
	// default never clobbers a not-yet-fetched remote value.
	ErrNotLoaded = errors.New("store: slot not loaded yet")
)

type (
	// LocalCache is a synchronous key-value cache. Implementations must be
	// safe for concurrent use. Keys are already namespaced by the caller
	// ("{tenantID}_{slotKey}").
	LocalCache interface {
		Get(key string) ([]byte, bool)
		Set(key string, val []byte) error
		Delete(key string) error
	}

	// RemoteStore is a tenant-scoped remote document store plus a
	// system-scoped namespace for registry/configuration documents.
	// All calls are best effort from the slot's perspective.
	RemoteStore interface {
		GetSlot(ctx context.Context, tenantID, slotKey string) ([]byte, error)
		SetSlot(ctx context.Context, tenantID, slotKey string, val []byte) error
		GetSystem(ctx context.Context, key string) ([]byte, error)
		SetSystem(ctx context.Context, key string, val []byte) error
	}
)
