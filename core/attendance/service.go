package attendance

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

// AbsenceCounter is satisfied by the roster service; the absence counter on
// the student record mirrors this package's absent marks.
type AbsenceCounter interface {
	AdjustAbsences(schoolID, studentID string, delta int) error
}

// Service manages attendance records over their tenant slot and keeps
// per-student absence counters in step.
type Service struct {
	records  *store.TenantSlots[[]Record]
	counter  AbsenceCounter
	validate *validator.Validate
	logger   core.Logger
}

func NewService(m *store.Manager, counter AbsenceCounter, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		records:  store.NewTenantSlots(m, store.AttendanceKey, func() []Record { return nil }),
		counter:  counter,
		validate: validate,
		logger:   logger,
	}
}

// Mark records a student's status for a day, replacing any earlier mark for
// the same (student, date). The student's absence counter moves only when a
// mark transitions into or out of absent.
func (svc *Service) Mark(schoolID string, rec Record) (Record, error) {
	if err := svc.validate.Struct(rec); err != nil {
		return Record{}, err
	}
	if !rec.Status.Valid() {
		return Record{}, core.NewValidationError(errors.New("invalid status"),
			core.FieldError{Field: "status", Error: "must be one of: present, absent, late, excused"})
	}
	rec.SchoolID = schoolID

	slot := svc.records.Slot(schoolID)
	records := slot.Get()

	prev := StatusPresent
	replaced := -1
	for i, existing := range records {
		if existing.StudentID == rec.StudentID && existing.Date == rec.Date {
			prev, replaced = existing.Status, i
			break
		}
	}

	updated := append([]Record(nil), records...)
	if replaced >= 0 {
		rec.ID = updated[replaced].ID
		updated[replaced] = rec
	} else {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		updated = append(updated, rec)
	}
	if err := slot.Set(updated); err != nil {
		return Record{}, errors.Wrap(err, "persisting attendance")
	}

	svc.adjustCounter(schoolID, rec.StudentID, prev, rec.Status)
	return rec, nil
}

// Unmark removes a student's mark for a day; an absent mark gives the
// student their absence back.
func (svc *Service) Unmark(schoolID, studentID, date string) error {
	slot := svc.records.Slot(schoolID)
	records := slot.Get()

	removed := Record{Status: StatusPresent}
	kept := make([]Record, 0, len(records))
	found := false
	for _, rec := range records {
		if rec.StudentID == studentID && rec.Date == date {
			removed, found = rec, true
			continue
		}
		kept = append(kept, rec)
	}
	if !found {
		return ErrRecordNotFound
	}
	if err := slot.Set(kept); err != nil {
		return errors.Wrap(err, "persisting attendance")
	}

	svc.adjustCounter(schoolID, studentID, removed.Status, StatusPresent)
	return nil
}

// adjustCounter moves the roster absence counter across a status transition.
// Counter failures are logged, not surfaced: the mark itself is already
// committed and the counter is derived data.
func (svc *Service) adjustCounter(schoolID, studentID string, from, to Status) {
	delta := 0
	if from != StatusAbsent && to == StatusAbsent {
		delta = 1
	} else if from == StatusAbsent && to != StatusAbsent {
		delta = -1
	}
	if delta == 0 || svc.counter == nil {
		return
	}
	if err := svc.counter.AdjustAbsences(schoolID, studentID, delta); err != nil {
		svc.logger.Error("adjusting absence counter", err, "student_id", studentID)
	}
}

// Sheet returns the marks of one class on one day.
func (svc *Service) Sheet(schoolID, classID, date string) ([]Record, error) {
	var out []Record
	for _, rec := range svc.records.Slot(schoolID).Get() {
		if rec.ClassID == classID && rec.Date == date {
			out = append(out, rec)
		}
	}
	return out, nil
}

// StudentSummary aggregates one student's marks across all recorded days.
func (svc *Service) StudentSummary(schoolID, studentID string) (Summary, error) {
	sum := Summary{StudentID: studentID}
	for _, rec := range svc.records.Slot(schoolID).Get() {
		if rec.StudentID != studentID {
			continue
		}
		switch rec.Status {
		case StatusPresent:
			sum.Present++
		case StatusAbsent:
			sum.Absent++
		case StatusLate:
			sum.Late++
		case StatusExcused:
			sum.Excused++
		}
	}
	return sum, nil
}

// Records returns every mark of the school, newest input order preserved.
func (svc *Service) Records(schoolID string) ([]Record, error) {
	return svc.records.Slot(schoolID).Get(), nil
}

func (svc *Service) Close() {
	svc.records.CloseAll()
}
