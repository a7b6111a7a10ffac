package roster

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
)

// CSVTemplate is the downloadable import template offered to schools.
const CSVTemplate = "اسم الطالب,جوال ولي الأمر,الصف,الفصل\n" +
	"أحمد محمد,0501111111,الصف الأول,1\n" +
	"سالم خالد,0502222222,الصف الأول,1\n"

// Format identifies a roster file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Service manages classes and students over their tenant slots.
type Service struct {
	classes  *store.TenantSlots[[]ClassGroup]
	students *store.TenantSlots[[]Student]
	validate *validator.Validate
}

func NewService(m *store.Manager, validate *validator.Validate) *Service {
	return &Service{
		classes:  store.NewTenantSlots(m, store.ClassesKey, func() []ClassGroup { return nil }),
		students: store.NewTenantSlots(m, store.StudentsKey, func() []Student { return nil }),
		validate: validate,
	}
}

// Classes

func (svc *Service) Classes(schoolID string) ([]ClassGroup, error) {
	return svc.classes.Slot(schoolID).Get(), nil
}

func (svc *Service) GetClass(schoolID, id string) (ClassGroup, error) {
	for _, cg := range svc.classes.Slot(schoolID).Get() {
		if cg.ID == id {
			return cg, nil
		}
	}
	return ClassGroup{}, ErrClassNotFound
}

func (svc *Service) CreateClass(schoolID string, nc NewClass) (ClassGroup, error) {
	nc.Name = core.CleanString(nc.Name)
	nc.Grade = core.CleanString(nc.Grade)
	if err := svc.validate.Struct(nc); err != nil {
		return ClassGroup{}, err
	}
	slot := svc.classes.Slot(schoolID)
	cg := ClassGroup{ID: uuid.NewString(), SchoolID: schoolID, Name: nc.Name, Grade: nc.Grade}
	if err := slot.Set(append(slot.Get(), cg)); err != nil {
		return ClassGroup{}, errors.Wrap(err, "persisting classes")
	}
	return cg, nil
}

func (svc *Service) UpdateClass(schoolID string, cg ClassGroup) (ClassGroup, error) {
	cg.Name = core.CleanString(cg.Name)
	slot := svc.classes.Slot(schoolID)
	classes := slot.Get()
	for i, existing := range classes {
		if existing.ID != cg.ID {
			continue
		}
		cg.SchoolID = schoolID
		updated := append(append([]ClassGroup(nil), classes[:i]...), cg)
		updated = append(updated, classes[i+1:]...)
		return cg, errors.Wrap(slot.Set(updated), "persisting classes")
	}
	return ClassGroup{}, ErrClassNotFound
}

// DeleteClass removes the class only; enrolled students keep their soft
// ClassID reference.
func (svc *Service) DeleteClass(schoolID, id string) error {
	slot := svc.classes.Slot(schoolID)
	classes := slot.Get()
	kept := make([]ClassGroup, 0, len(classes))
	for _, cg := range classes {
		if cg.ID != id {
			kept = append(kept, cg)
		}
	}
	if len(kept) == len(classes) {
		return ErrClassNotFound
	}
	return errors.Wrap(slot.Set(kept), "persisting classes")
}

// Students

func (svc *Service) Students(schoolID string) ([]Student, error) {
	return svc.students.Slot(schoolID).Get(), nil
}

func (svc *Service) GetStudent(schoolID, id string) (Student, error) {
	for _, st := range svc.students.Slot(schoolID).Get() {
		if st.ID == id {
			return st, nil
		}
	}
	return Student{}, ErrStudentNotFound
}

func (svc *Service) CreateStudent(schoolID string, ns NewStudent) (Student, error) {
	ns.Name = core.CleanString(ns.Name)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}
	slot := svc.students.Slot(schoolID)
	st := Student{
		ID:          uuid.NewString(),
		SchoolID:    schoolID,
		Name:        ns.Name,
		ParentPhone: ns.ParentPhone,
		ClassID:     ns.ClassID,
	}
	if err := slot.Set(append(slot.Get(), st)); err != nil {
		return Student{}, errors.Wrap(err, "persisting students")
	}
	return st, nil
}

func (svc *Service) UpdateStudent(schoolID string, st Student) (Student, error) {
	st.Name = core.CleanString(st.Name)
	slot := svc.students.Slot(schoolID)
	students := slot.Get()
	for i, existing := range students {
		if existing.ID != st.ID {
			continue
		}
		st.SchoolID = schoolID
		updated := append(append([]Student(nil), students[:i]...), st)
		updated = append(updated, students[i+1:]...)
		return st, errors.Wrap(slot.Set(updated), "persisting students")
	}
	return Student{}, ErrStudentNotFound
}

func (svc *Service) DeleteStudent(schoolID, id string) error {
	slot := svc.students.Slot(schoolID)
	students := slot.Get()
	kept := make([]Student, 0, len(students))
	for _, st := range students {
		if st.ID != id {
			kept = append(kept, st)
		}
	}
	if len(kept) == len(students) {
		return ErrStudentNotFound
	}
	return errors.Wrap(slot.Set(kept), "persisting students")
}

// AdjustAbsences shifts a student's absence counter by delta, floored at 0.
func (svc *Service) AdjustAbsences(schoolID, studentID string, delta int) error {
	slot := svc.students.Slot(schoolID)
	students := slot.Get()
	for i, st := range students {
		if st.ID != studentID {
			continue
		}
		st.AbsenceCount += delta
		if st.AbsenceCount < 0 {
			st.AbsenceCount = 0
		}
		updated := append(append([]Student(nil), students[:i]...), st)
		updated = append(updated, students[i+1:]...)
		return errors.Wrap(slot.Set(updated), "persisting students")
	}
	return ErrStudentNotFound
}

// Import stages a roster file against the school's current data and commits
// any new classes and students, one slot write per entity kind. Zero
// additions is a valid success. A parse/read failure aborts before anything
// is committed.
func (svc *Service) Import(schoolID string, r io.Reader, format Format) (Report, error) {
	classSlot := svc.classes.Slot(schoolID)
	studentSlot := svc.students.Slot(schoolID)

	var staged Staging
	var err error
	switch format {
	case FormatXLSX:
		staged, err = StageXLSX(r, schoolID, classSlot.Get(), studentSlot.Get())
	default:
		staged, err = StageCSV(r, schoolID, classSlot.Get(), studentSlot.Get())
	}
	if err != nil {
		return Report{}, err
	}

	if len(staged.Classes) > 0 {
		if err := classSlot.Set(append(classSlot.Get(), staged.Classes...)); err != nil {
			return Report{}, errors.Wrap(err, "persisting imported classes")
		}
	}
	if len(staged.Students) > 0 {
		if err := studentSlot.Set(append(studentSlot.Get(), staged.Students...)); err != nil {
			return Report{}, errors.Wrap(err, "persisting imported students")
		}
	}
	return Report{
		ClassesAdded:  len(staged.Classes),
		StudentsAdded: len(staged.Students),
		RowsSkipped:   staged.Skipped,
	}, nil
}

// Close flushes pending remote writes.
func (svc *Service) Close() {
	svc.classes.CloseAll()
	svc.students.CloseAll()
}
