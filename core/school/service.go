package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

// Service wraps the Registry with validation and owns each school's
// settings slot.
type Service struct {
	reg      Registry
	settings *store.TenantSlots[Settings]
	validate *validator.Validate
}

func NewService(reg Registry, m *store.Manager, validate *validator.Validate) *Service {
	return &Service{
		reg:      reg,
		settings: store.NewTenantSlots(m, store.SettingsKey, func() Settings { return Settings{} }),
		validate: validate,
	}
}

func (svc *Service) List() ([]School, error) { return svc.reg.List() }

func (svc *Service) Get(id string) (School, error) { return svc.reg.Get(id) }

func (svc *Service) Create(ns NewSchool) (School, error) {
	ns.Name = core.CleanString(ns.Name)
	if err := svc.validate.Struct(ns); err != nil {
		return School{}, err
	}
	sch := School{
		Name:      ns.Name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	sch, err := svc.reg.Add(sch)
	if err == ErrNameExists {
		return School{}, core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	}
	return sch, err
}

func (svc *Service) Update(id string, us UpdateSchool) (School, error) {
	us.Name = core.CleanString(us.Name)
	if err := svc.validate.Struct(us); err != nil {
		return School{}, err
	}
	sch, err := svc.reg.Get(id)
	if err != nil {
		return School{}, err
	}
	sch.Name = us.Name
	if us.IsActive != nil {
		sch.IsActive = *us.IsActive
	}
	return svc.reg.Update(sch)
}

func (svc *Service) Remove(id string) error { return svc.reg.Remove(id) }

func (svc *Service) Settings(schoolID string) (Settings, error) {
	return svc.settings.Slot(schoolID).Get(), nil
}

func (svc *Service) SaveSettings(schoolID string, s Settings) error {
	return svc.settings.Slot(schoolID).Set(s)
}

// Close flushes pending remote writes.
func (svc *Service) Close() { svc.settings.CloseAll() }
