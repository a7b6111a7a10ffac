package roster

import "github.com/pkg/errors"

var (
	ErrClassNotFound   = errors.New("class not found")
	ErrStudentNotFound = errors.New("student not found")
)

// ClassGroup is a class owned by one school; referenced by students,
// schedule slots and plan entries.
type ClassGroup struct {
	ID       string `json:"id"`
	SchoolID string `json:"school_id"`
	Name     string `json:"name" validate:"required"`
	Grade    string `json:"grade"`
}

// Student belongs to one school. ClassID is a soft reference: deleting a
// class leaves its students pointing at a gone id.
type Student struct {
	ID           string `json:"id"`
	SchoolID     string `json:"school_id"`
	Name         string `json:"name" validate:"required,personname"`
	ParentPhone  string `json:"parent_phone"`
	ClassID      string `json:"class_id"`
	AbsenceCount int    `json:"absence_count"`
}

// NewClass contains information needed to create a ClassGroup.
type NewClass struct {
	Name  string `json:"name" validate:"required"`
	Grade string `json:"grade"`
}

// NewStudent contains information needed to enroll a Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required,min=2,personname"`
	ParentPhone string `json:"parent_phone"`
	ClassID     string `json:"class_id"`
}
