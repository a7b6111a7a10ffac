package attendance

import (
	"github.com/pkg/errors"
)

var ErrRecordNotFound = errors.New("attendance record not found")

// Status is a student's state for one school day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Record marks one student's attendance on one day. Unique per
// (StudentID, Date); marking the same day again replaces the earlier mark.
type Record struct {
	ID        string `json:"id"`
	SchoolID  string `json:"school_id"`
	StudentID string `json:"student_id" validate:"required"`
	ClassID   string `json:"class_id"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    Status `json:"status"`
	Note      string `json:"note"`
}

// Summary aggregates one student's marks.
type Summary struct {
	StudentID string `json:"student_id"`
	Present   int    `json:"present"`
	Absent    int    `json:"absent"`
	Late      int    `json:"late"`
	Excused   int    `json:"excused"`
}
