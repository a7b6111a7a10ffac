package school

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/store"
	inmemcache "github.com/trezcool/shule/storage/cache/inmem"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := core.NewStdLogger(log.New(os.Stderr, "test ", log.LstdFlags))
	m := store.NewManager(inmemcache.New(), nil, time.Millisecond, logger)
	validate, _ := core.NewValidator()
	svc := NewService(NewRegistry(m), m, validate)
	t.Cleanup(svc.Close)
	return svc
}

func TestService_registry(t *testing.T) {
	svc := newTestService(t)

	sch, err := svc.Create(NewSchool{Name: "  Al Noor  "})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if sch.Name != "Al Noor" {
		t.Errorf("name = %q; want trimmed", sch.Name)
	}
	if sch.ID == "" || !sch.IsActive {
		t.Errorf("school = %+v", sch)
	}

	if _, err = svc.Create(NewSchool{}); err == nil {
		t.Error("nameless school accepted")
	}

	// name uniqueness surfaces as a field error
	_, err = svc.Create(NewSchool{Name: "Al Noor"})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("err = %v; want *core.ValidationError", err)
	}

	got, err := svc.Get(sch.ID)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if got.Name != sch.Name {
		t.Errorf("Get() = %+v", got)
	}

	inactive := false
	updated, err := svc.Update(sch.ID, UpdateSchool{Name: "Al Noor", IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if updated.IsActive {
		t.Error("school still active after deactivation")
	}
	if updated.CreatedAt != sch.CreatedAt {
		t.Error("CreatedAt changed on update")
	}

	if err = svc.Remove(sch.ID); err != nil {
		t.Fatalf("Remove(): %v", err)
	}
	if err = svc.Remove(sch.ID); err != ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
	if schools, _ := svc.List(); len(schools) != 0 {
		t.Errorf("schools = %d; want 0", len(schools))
	}
}

func TestService_settings(t *testing.T) {
	svc := newTestService(t)

	// fresh tenants read the zero settings
	settings, err := svc.Settings("school1")
	if err != nil {
		t.Fatalf("Settings(): %v", err)
	}
	if settings != (Settings{}) {
		t.Errorf("settings = %+v; want zero", settings)
	}

	want := Settings{SchoolName: "مدرسة النور", AcademicYear: "1447", Semester: "الأول"}
	if err = svc.SaveSettings("school1", want); err != nil {
		t.Fatalf("SaveSettings(): %v", err)
	}
	if settings, _ = svc.Settings("school1"); settings != want {
		t.Errorf("settings = %+v; want %+v", settings, want)
	}

	// tenants do not bleed into each other
	if settings, _ = svc.Settings("school2"); settings != (Settings{}) {
		t.Errorf("school2 settings = %+v; want zero", settings)
	}
}
