package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// remoteWriteTimeout bounds a single fire-and-forget remote write.
const remoteWriteTimeout = 10 * time.Second

// Options configures a Slot.
type Options struct {
	TenantID string
	Key      string

	// System slots live outside any tenant: the local key is Key itself and
	// remote reads/writes go through the system namespace. Used for the
	// school registry and platform configuration documents.
	System bool

	Cache  LocalCache
	Remote RemoteStore // nil disables remote mirroring
	// Debounce is the quiet window after the last Set before the remote
	// write fires; restarted on every change so only the last value of a
	// burst reaches the remote store.
	Debounce time.Duration
	Logger   core.Logger
}

// Slot is a named, typed state bucket scoped to one tenant. Reads are served
// from memory (seeded from the local cache); every Set writes the local cache
// synchronously and schedules a debounced remote write. The remote store wins
// exactly once, on initial load.
type Slot[T any] struct {
	opts Options

	mu       sync.Mutex
	val      T
	loaded   bool
	fetched  bool
	closed   bool
	pending  bool
	pendingB []byte
	timer    *time.Timer
	onRemote []func(T)
}

// NewSlot returns a slot seeded with the locally cached value when present
// and parseable, else def. The slot reports loaded immediately when no remote
// store is configured; otherwise Open must run the initial reconciliation.
func NewSlot[T any](opts Options, def T) *Slot[T] {
	s := &Slot[T]{opts: opts, val: def}
	if raw, ok := opts.Cache.Get(s.localKey()); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			s.val = v
		} else if opts.Logger != nil {
			opts.Logger.Warn("store: discarding unparseable cache entry "+s.localKey(), err)
		}
	}
	s.loaded = opts.Remote == nil
	return s
}

func (s *Slot[T]) localKey() string {
	if s.opts.System {
		return s.opts.Key
	}
	return s.opts.TenantID + "_" + s.opts.Key
}

// Open performs the once-only remote fetch. The remote value, when present,
// overwrites both the in-memory value and the local cache. A miss or an error
// keeps the local value; either way the slot is marked loaded so callers are
// never blocked indefinitely. A cancelled ctx discards the fetched result
// entirely. Callers typically run Open in its own goroutine.
func (s *Slot[T]) Open(ctx context.Context) {
	s.mu.Lock()
	if s.fetched || s.opts.Remote == nil {
		s.loaded = true
		s.mu.Unlock()
		return
	}
	s.fetched = true
	s.mu.Unlock()

	var raw []byte
	var err error
	if s.opts.System {
		raw, err = s.opts.Remote.GetSystem(ctx, s.opts.Key)
	} else {
		raw, err = s.opts.Remote.GetSlot(ctx, s.opts.TenantID, s.opts.Key)
	}
	if ctx.Err() != nil {
		// consumer torn down mid-fetch: no state update
		return
	}

	var applied bool
	var v T
	s.mu.Lock()
	switch {
	case err == nil && raw != nil:
		if uerr := json.Unmarshal(raw, &v); uerr == nil {
			s.val = v
			if cerr := s.opts.Cache.Set(s.localKey(), raw); cerr != nil && s.opts.Logger != nil {
				s.opts.Logger.Error("store: caching remote value for "+s.localKey(), cerr)
			}
			applied = true
		} else if s.opts.Logger != nil {
			s.opts.Logger.Warn("store: unparseable remote document "+s.localKey(), uerr)
		}
	case err != nil && !errors.Is(err, ErrNoDocument):
		if s.opts.Logger != nil {
			s.opts.Logger.Warn("store: remote fetch failed for "+s.localKey()+", keeping local value", err)
		}
	}
	s.loaded = true
	callbacks := append([]func(T){}, s.onRemote...)
	s.mu.Unlock()

	if applied {
		for _, fn := range callbacks {
			fn(v)
		}
	}
}

// Loaded reports whether the initial remote reconciliation has completed
// (immediately true when remote sync is disabled).
func (s *Slot[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Get returns the current in-memory value.
func (s *Slot[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.val
}

// Set replaces the slot value. It returns ErrNotLoaded before the initial
// reconciliation completes (the write is dropped). The local cache is written
// synchronously; a cache failure is logged and the in-memory value remains
// authoritative for the session. When a remote store is configured the remote
// write is (re)scheduled after the debounce window.
func (s *Slot[T]) Set(v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		return ErrNotLoaded
	}
	raw, err := json.Marshal(v)
	if err != nil {
		if s.opts.Logger != nil {
			s.opts.Logger.Error("store: serializing value for "+s.localKey(), err)
		}
		return errors.Wrap(err, "store: serializing slot value")
	}

	s.val = v
	if cerr := s.opts.Cache.Set(s.localKey(), raw); cerr != nil && s.opts.Logger != nil {
		s.opts.Logger.Error("store: local write failed for "+s.localKey(), cerr)
	}

	if s.opts.Remote != nil && !s.closed {
		s.pendingB = raw
		s.pending = true
		if s.timer != nil {
			s.timer.Stop()
		}
		s.timer = time.AfterFunc(s.opts.Debounce, s.flush)
	}
	return nil
}

// OnRemoteUpdated registers fn to run when the initial remote fetch replaces
// the local value.
func (s *Slot[T]) OnRemoteUpdated(fn func(T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemote = append(s.onRemote, fn)
}

// flush sends the latest pending value to the remote store. Failures are
// logged only; the value is not retried until the next local change.
func (s *Slot[T]) flush() {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	raw := s.pendingB
	s.pending = false
	s.pendingB = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), remoteWriteTimeout)
	defer cancel()

	var err error
	if s.opts.System {
		err = s.opts.Remote.SetSystem(ctx, s.opts.Key, raw)
	} else {
		err = s.opts.Remote.SetSlot(ctx, s.opts.TenantID, s.opts.Key, raw)
	}
	if err != nil && s.opts.Logger != nil {
		s.opts.Logger.Error("store: remote write failed for "+s.localKey(), err)
	}
}

// Close flushes any pending debounced write before returning: durability is
// favored over consumer lifecycle, a tenant switching views must not lose its
// last edit.
func (s *Slot[T]) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.flush()
}
