package plan

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrArchiveNotFound = errors.New("archived plan not found")
)

// Subject is a taught subject owned by one school.
type Subject struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name" validate:"required"`
}

// Teacher is a staff member who fills in lesson plans and marks attendance.
// Username/PasswordHash double as the school's teacher login records.
type Teacher struct {
	ID           string   `json:"id"`
	SchoolID     string   `json:"school_id"`
	Name         string   `json:"name" validate:"required"`
	Username     string   `json:"username"`
	PasswordHash []byte   `json:"-"`
	SubjectIDs   []string `json:"subject_ids"`
}

// WeekInfo describes the week currently being planned.
type WeekInfo struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	Label     string `json:"label"`
	Notes     string `json:"notes"`
}

// ScheduleSlot assigns a subject/teacher to one period of a class's week.
// Unique per (ClassID, DayIndex, Period); the storage layer knows nothing
// of this, the upsert enforces it.
type ScheduleSlot struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	ClassID   string `json:"class_id" validate:"required"`
	DayIndex  int    `json:"day_index" validate:"min=0,max=6"`
	Period    int    `json:"period" validate:"min=1"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
}

// PlanEntry is one filled-in lesson plan cell. Unique per
// (ClassID, DayIndex, Period), same as the schedule grid.
type PlanEntry struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	ClassID   string `json:"class_id" validate:"required"`
	DayIndex  int    `json:"day_index" validate:"min=0,max=6"`
	Period    int    `json:"period" validate:"min=1"`
	SubjectID string `json:"subject_id"`
	Topic     string `json:"topic"`
	Homework  string `json:"homework"`
	Notes     string `json:"notes"`
}

// ArchivedPlan snapshots a finished week's entries.
type ArchivedPlan struct {
	ID         string      `json:"id"`
	SchoolID   string      `json:"school_id"`
	WeekLabel  string      `json:"week_label"`
	ArchivedAt time.Time   `json:"archived_at"`
	Entries    []PlanEntry `json:"entries"`
}

// periodKey is the composite natural key shared by ScheduleSlot and PlanEntry.
type periodKey struct {
	classID  string
	dayIndex int
	period   int
}

func (s ScheduleSlot) key() periodKey { return periodKey{s.ClassID, s.DayIndex, s.Period} }
func (e PlanEntry) key() periodKey    { return periodKey{e.ClassID, e.DayIndex, e.Period} }

// NewTeacher contains information needed to register a Teacher, including
// their login credentials.
type NewTeacher struct {
	Name       string   `json:"name" validate:"required"`
	Username   string   `json:"username" validate:"omitempty,min=4,alphanum_"`
	Password   string   `json:"password" validate:"omitempty,min=8"`
	SubjectIDs []string `json:"subject_ids"`
}
