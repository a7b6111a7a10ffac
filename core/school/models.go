package school

import "time"

// School is one tenant: an isolated data partition identified by ID.
// Every persisted slot key is namespaced by the school's ID.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings is the per-school settings_v1 slot payload.
type Settings struct {
	SchoolName    string `json:"school_name"`
	PrincipalName string `json:"principal_name"`
	AcademicYear  string `json:"academic_year"`
	Semester      string `json:"semester"`
	CloudSync     bool   `json:"cloud_sync"`
}

// NewSchool contains information needed to register a new School.
type NewSchool struct {
	Name string `json:"name" validate:"required"`
}

// UpdateSchool defines what may be modified on an existing School.
type UpdateSchool struct {
	Name     string `json:"name" validate:"required"`
	IsActive *bool  `json:"is_active"`
}
