package school

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/store"
)

var (
	ErrNotFound   = errors.New("school not found")
	ErrNameExists = errors.New("a school with this name already exists")
)

// Registry is the explicit repository of tenants; injected wherever the
// active school list is needed instead of ambient global state.
type Registry interface {
	List() ([]School, error)
	Get(id string) (School, error)
	Add(sch School) (School, error)
	Update(sch School) (School, error)
	// Remove deletes the registry entry only; slot documents already
	// mirrored remotely are not purged.
	Remove(id string) error
}

// slotRegistry keeps the ordered school list in the system-scoped
// schools_registry_v1 slot (local cache + debounced remote mirror).
type slotRegistry struct {
	slot *store.Slot[[]School]
}

var _ Registry = (*slotRegistry)(nil)

// NewRegistry builds the slot-backed registry and kicks off its remote
// reconciliation.
func NewRegistry(m *store.Manager) Registry {
	slot := store.NewSlot(m.SystemOptions(store.SchoolRegistryKey), []School(nil))
	go slot.Open(context.Background())
	return &slotRegistry{slot: slot}
}

func (reg *slotRegistry) List() ([]School, error) {
	return reg.slot.Get(), nil
}

func (reg *slotRegistry) Get(id string) (School, error) {
	for _, sch := range reg.slot.Get() {
		if sch.ID == id {
			return sch, nil
		}
	}
	return School{}, ErrNotFound
}

func (reg *slotRegistry) Add(sch School) (School, error) {
	schools := reg.slot.Get()
	for _, existing := range schools {
		if strings.TrimSpace(existing.Name) == strings.TrimSpace(sch.Name) {
			return School{}, ErrNameExists
		}
	}
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	if sch.CreatedAt.IsZero() {
		sch.CreatedAt = time.Now().UTC()
	}
	if err := reg.slot.Set(append(schools, sch)); err != nil {
		return School{}, errors.Wrap(err, "persisting school registry")
	}
	return sch, nil
}

func (reg *slotRegistry) Update(sch School) (School, error) {
	schools := reg.slot.Get()
	for i, existing := range schools {
		if existing.ID != sch.ID {
			continue
		}
		sch.CreatedAt = existing.CreatedAt
		updated := append(append([]School(nil), schools[:i]...), sch)
		updated = append(updated, schools[i+1:]...)
		if err := reg.slot.Set(updated); err != nil {
			return School{}, errors.Wrap(err, "persisting school registry")
		}
		return sch, nil
	}
	return School{}, ErrNotFound
}

func (reg *slotRegistry) Remove(id string) error {
	schools := reg.slot.Get()
	kept := make([]School, 0, len(schools))
	for _, sch := range schools {
		if sch.ID != id {
			kept = append(kept, sch)
		}
	}
	if len(kept) == len(schools) {
		return ErrNotFound
	}
	return errors.Wrap(reg.slot.Set(kept), "persisting school registry")
}
