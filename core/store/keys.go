package store

// Slot keys. Local cache entries are addressed as "{tenantID}_{key}";
// remote documents by (tenantID, key). The version suffix is part of the
// persisted key shape, not a migration scheme.
const (
	SettingsKey   = "settings_v1"
	WeekKey       = "week_v1"
	SubjectsKey   = "subjects_v1"
	ClassesKey    = "classes_v1"
	ScheduleKey   = "schedule_v1"
	StudentsKey   = "students_v1"
	TeachersKey   = "teachers_v1"
	PlansKey      = "plans_v1"
	ArchivesKey   = "archives_v1"
	AttendanceKey = "attendance_v1"
	MessagesKey   = "messages_v1"

	// SchoolRegistryKey addresses the system-scoped ordered list of schools.
	SchoolRegistryKey = "schools_registry_v1"
)
