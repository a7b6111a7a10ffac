package testutil

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/roster"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/store"
	inmemcache "github.com/trezcool/shule/storage/cache/inmem"
)

// Conf installs a minimal application config for tests.
func Conf() *core.Config {
	if core.Conf == nil {
		core.Conf = &core.Config{
			AppName:   "shule",
			Env:       "TEST",
			TestMode:  true,
			SecretKey: "test-secret-key",
			Server: core.ServerConfig{
				JWTExpirationDelta:        time.Hour,
				JWTRefreshExpirationDelta: time.Hour,
			},
		}
	}
	return core.Conf
}

// NewManager returns a store manager backed by the in-memory cache with no remote.
func NewManager() *store.Manager {
	logger := core.NewStdLogger(log.New(os.Stderr, "test ", log.LstdFlags))
	return store.NewManager(inmemcache.New(), nil, time.Millisecond, logger)
}

func CreateSchool(t *testing.T, svc *school.Service, name string) school.School {
	t.Helper()
	sch, err := svc.Create(school.NewSchool{Name: name})
	if err != nil {
		t.Fatalf("creating school %q: %v", name, err)
	}
	return sch
}

func CreateClass(t *testing.T, svc *roster.Service, schoolID, name string) roster.ClassGroup {
	t.Helper()
	cls, err := svc.CreateClass(schoolID, roster.NewClass{Name: name})
	if err != nil {
		t.Fatalf("creating class %q: %v", name, err)
	}
	return cls
}

func CreateStudent(t *testing.T, svc *roster.Service, schoolID string, ns roster.NewStudent) roster.Student {
	t.Helper()
	stu, err := svc.CreateStudent(schoolID, ns)
	if err != nil {
		t.Fatalf("creating student %q: %v", ns.Name, err)
	}
	return stu
}

func CreateTeacher(t *testing.T, svc *plan.Service, schoolID string, nt plan.NewTeacher) plan.Teacher {
	t.Helper()
	tch, err := svc.CreateTeacher(schoolID, nt)
	if err != nil {
		t.Fatalf("creating teacher %q: %v", nt.Username, err)
	}
	return tch
}
