package plan

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

// Service manages subjects, teachers, the week, the schedule grid, plan
// entries and archives over their tenant slots.
type Service struct {
	subjects *store.TenantSlots[[]Subject]
	teachers *store.TenantSlots[[]Teacher]
	week     *store.TenantSlots[WeekInfo]
	schedule *store.TenantSlots[[]ScheduleSlot]
	plans    *store.TenantSlots[[]PlanEntry]
	archives *store.TenantSlots[[]ArchivedPlan]
	validate *validator.Validate
}

func NewService(m *store.Manager, validate *validator.Validate) *Service {
	return &Service{
		subjects: store.NewTenantSlots(m, store.SubjectsKey, func() []Subject { return nil }),
		teachers: store.NewTenantSlots(m, store.TeachersKey, func() []Teacher { return nil }),
		week:     store.NewTenantSlots(m, store.WeekKey, func() WeekInfo { return WeekInfo{} }),
		schedule: store.NewTenantSlots(m, store.ScheduleKey, func() []ScheduleSlot { return nil }),
		plans:    store.NewTenantSlots(m, store.PlansKey, func() []PlanEntry { return nil }),
		archives: store.NewTenantSlots(m, store.ArchivesKey, func() []ArchivedPlan { return nil }),
		validate: validate,
	}
}

// Subjects

func (svc *Service) Subjects(schoolID string) ([]Subject, error) {
	return svc.subjects.Slot(schoolID).Get(), nil
}

func (svc *Service) CreateSubject(schoolID, name string) (Subject, error) {
	sub := Subject{ID: uuid.NewString(), SchoolID: schoolID, Name: core.CleanString(name)}
	if err := svc.validate.Struct(sub); err != nil {
		return Subject{}, err
	}
	slot := svc.subjects.Slot(schoolID)
	if err := slot.Set(append(slot.Get(), sub)); err != nil {
		return Subject{}, errors.Wrap(err, "persisting subjects")
	}
	return sub, nil
}

func (svc *Service) DeleteSubject(schoolID, id string) error {
	slot := svc.subjects.Slot(schoolID)
	subjects := slot.Get()
	kept := make([]Subject, 0, len(subjects))
	for _, sub := range subjects {
		if sub.ID != id {
			kept = append(kept, sub)
		}
	}
	if len(kept) == len(subjects) {
		return ErrSubjectNotFound
	}
	return errors.Wrap(slot.Set(kept), "persisting subjects")
}

// Teachers

func (svc *Service) Teachers(schoolID string) ([]Teacher, error) {
	return svc.teachers.Slot(schoolID).Get(), nil
}

func (svc *Service) CreateTeacher(schoolID string, nt NewTeacher) (Teacher, error) {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true)
	if err := svc.validate.Struct(nt); err != nil {
		return Teacher{}, err
	}
	tch := Teacher{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		Name:       nt.Name,
		Username:   nt.Username,
		SubjectIDs: nt.SubjectIDs,
	}
	if nt.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(nt.Password), bcrypt.DefaultCost)
		if err != nil {
			return Teacher{}, errors.Wrap(err, "hashing password")
		}
		tch.PasswordHash = hash
	}
	slot := svc.teachers.Slot(schoolID)
	for _, existing := range slot.Get() {
		if nt.Username != "" && existing.Username == nt.Username {
			return Teacher{}, core.NewValidationError(errors.New("teacher already exists"),
				core.FieldError{Field: "username", Error: "a teacher with this username already exists"})
		}
	}
	if err := slot.Set(append(slot.Get(), tch)); err != nil {
		return Teacher{}, errors.Wrap(err, "persisting teachers")
	}
	return tch, nil
}

func (svc *Service) DeleteTeacher(schoolID, id string) error {
	slot := svc.teachers.Slot(schoolID)
	teachers := slot.Get()
	kept := make([]Teacher, 0, len(teachers))
	for _, tch := range teachers {
		if tch.ID != id {
			kept = append(kept, tch)
		}
	}
	if len(kept) == len(teachers) {
		return ErrTeacherNotFound
	}
	return errors.Wrap(slot.Set(kept), "persisting teachers")
}

// SetTeacherPassword rehashes a teacher's login password.
func (svc *Service) SetTeacherPassword(schoolID, username, password string) error {
	username = core.CleanString(username, true)
	slot := svc.teachers.Slot(schoolID)
	teachers := slot.Get()
	for i, tch := range teachers {
		if tch.Username == "" || tch.Username != username {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return errors.Wrap(err, "hashing password")
		}
		updated := append([]Teacher(nil), teachers...)
		updated[i].PasswordHash = hash
		return errors.Wrap(slot.Set(updated), "persisting teachers")
	}
	return ErrTeacherNotFound
}

// FindTeacherAccount resolves a teacher login record by username across the
// school's staff.
func (svc *Service) FindTeacherAccount(schoolID, username string) (Teacher, error) {
	for _, tch := range svc.teachers.Slot(schoolID).Get() {
		if tch.Username != "" && tch.Username == username {
			return tch, nil
		}
	}
	return Teacher{}, ErrTeacherNotFound
}

// Week

func (svc *Service) Week(schoolID string) (WeekInfo, error) {
	return svc.week.Slot(schoolID).Get(), nil
}

func (svc *Service) SaveWeek(schoolID string, w WeekInfo) error {
	return errors.Wrap(svc.week.Slot(schoolID).Set(w), "persisting week")
}

// Schedule

func (svc *Service) Schedule(schoolID string) ([]ScheduleSlot, error) {
	return svc.schedule.Slot(schoolID).Get(), nil
}

// UpsertScheduleSlot replaces any existing slot with the same
// (class, day, period) key, else appends; the collection order is stable for
// replaced entries.
func (svc *Service) UpsertScheduleSlot(schoolID string, ss ScheduleSlot) (ScheduleSlot, error) {
	if err := svc.validate.Struct(ss); err != nil {
		return ScheduleSlot{}, err
	}
	ss.SchoolID = schoolID
	slot := svc.schedule.Slot(schoolID)
	current := slot.Get()
	updated, i, replaced := upsertByKey(current, ss, ScheduleSlot.key)
	if replaced {
		updated[i].ID = current[i].ID
	} else if updated[i].ID == "" {
		updated[i].ID = uuid.NewString()
	}
	if err := slot.Set(updated); err != nil {
		return ScheduleSlot{}, errors.Wrap(err, "persisting schedule")
	}
	return updated[i], nil
}

func (svc *Service) RemoveScheduleSlot(schoolID, classID string, dayIndex, period int) error {
	slot := svc.schedule.Slot(schoolID)
	slots := slot.Get()
	key := periodKey{classID, dayIndex, period}
	kept := make([]ScheduleSlot, 0, len(slots))
	for _, ss := range slots {
		if ss.key() != key {
			kept = append(kept, ss)
		}
	}
	return errors.Wrap(slot.Set(kept), "persisting schedule")
}

// Plan entries

func (svc *Service) Entries(schoolID string) ([]PlanEntry, error) {
	return svc.plans.Slot(schoolID).Get(), nil
}

// UpsertEntry replaces any existing entry with the same (class, day, period)
// key, else appends.
func (svc *Service) UpsertEntry(schoolID string, pe PlanEntry) (PlanEntry, error) {
	if err := svc.validate.Struct(pe); err != nil {
		return PlanEntry{}, err
	}
	pe.SchoolID = schoolID
	slot := svc.plans.Slot(schoolID)
	current := slot.Get()
	updated, i, replaced := upsertByKey(current, pe, PlanEntry.key)
	if replaced {
		updated[i].ID = current[i].ID
	} else if updated[i].ID == "" {
		updated[i].ID = uuid.NewString()
	}
	if err := slot.Set(updated); err != nil {
		return PlanEntry{}, errors.Wrap(err, "persisting plan entries")
	}
	return updated[i], nil
}

// Archives

func (svc *Service) Archives(schoolID string) ([]ArchivedPlan, error) {
	return svc.archives.Slot(schoolID).Get(), nil
}

func (svc *Service) GetArchive(schoolID, id string) (ArchivedPlan, error) {
	for _, ap := range svc.archives.Slot(schoolID).Get() {
		if ap.ID == id {
			return ap, nil
		}
	}
	return ArchivedPlan{}, ErrArchiveNotFound
}

// ArchiveWeek snapshots the current plan entries under the week's label and
// clears the working plan. The two slot writes are independent; a crash in
// between leaves an archive without a cleared plan, which a re-run resolves
// (archiving is additive).
func (svc *Service) ArchiveWeek(schoolID string) (ArchivedPlan, error) {
	planSlot := svc.plans.Slot(schoolID)
	entries := planSlot.Get()

	ap := ArchivedPlan{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		WeekLabel:  svc.week.Slot(schoolID).Get().Label,
		ArchivedAt: time.Now().UTC(),
		Entries:    entries,
	}
	archSlot := svc.archives.Slot(schoolID)
	if err := archSlot.Set(append(archSlot.Get(), ap)); err != nil {
		return ArchivedPlan{}, errors.Wrap(err, "persisting archives")
	}
	if err := planSlot.Set(nil); err != nil {
		return ArchivedPlan{}, errors.Wrap(err, "clearing plan entries")
	}
	return ap, nil
}

// Close flushes pending remote writes for every slot kind.
func (svc *Service) Close() {
	svc.subjects.CloseAll()
	svc.teachers.CloseAll()
	svc.week.CloseAll()
	svc.schedule.CloseAll()
	svc.plans.CloseAll()
	svc.archives.CloseAll()
}

// upsertByKey replaces the element sharing v's composite key in place, else
// appends v. Returns the new slice, the index v landed at and whether a
// replacement happened.
func upsertByKey[T any](items []T, v T, keyOf func(T) periodKey) ([]T, int, bool) {
	key := keyOf(v)
	out := append([]T(nil), items...)
	for i, item := range out {
		if keyOf(item) == key {
			out[i] = v
			return out, i, true
		}
	}
	return append(out, v), len(out), false
}
