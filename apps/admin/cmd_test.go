package main

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/store"
	inmemcache "github.com/trezcool/shule/storage/cache/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	if core.Conf == nil {
		core.Conf = &core.Config{AppName: "shule", TestMode: true}
	}
	m := store.NewManager(inmemcache.New(), nil, time.Millisecond,
		core.NewStdLogger(log.New(os.Stderr, "test ", log.LstdFlags)))
	validate, _ := core.NewValidator()

	schoolSvc := school.NewService(school.NewRegistry(m), m, validate)
	planSvc := plan.NewService(m, validate)
	t.Cleanup(func() {
		schoolSvc.Close()
		planSvc.Close()
	})

	return &commandLine{
		schoolSvc: schoolSvc,
		planSvc:   planSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_addSchool(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addschool"}, wantErr: errHelp},
		{name: "ok", args: []string{"addschool", "-name", "مدرسة النور"}},
		{name: "duplicate name", args: []string{"addschool", "-name", "مدرسة النور"}, wantErrStr: "a school with this name already exists"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Errorf("cli.run() expected error, got nil")
				}
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if tt.wantErrStr != "" {
				if err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			} else {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	schools, _ := cli.schoolSvc.List()
	if len(schools) != 1 {
		t.Errorf("registered schools = %d; want 1", len(schools))
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	tch, err := cli.planSvc.CreateTeacher("school1", plan.NewTeacher{
		Name:     "خالد",
		Username: "khalid22",
		Password: "0ld-secret-pass",
	})
	if err != nil {
		t.Fatalf("CreateTeacher(): %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no school", args: []string{"resetpassword", "-username", "khalid22"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-school", "school1", "-username", "khalid22"}, wantErr: errHelp},
		{name: "teacher not found", args: []string{"resetpassword", "-school", "school1", "-username", "lol"}, extra: extra{pwd: "n3w-secret-pass"}, wantErr: plan.ErrTeacherNotFound},
		{name: "weak password rejected", args: []string{"resetpassword", "-school", "school1", "-username", "khalid22"}, extra: extra{pwd: "short"}, wantErrStr: "password must contain at least 8 characters"},
		{name: "ok", args: []string{"resetpassword", "-school", "school1", "-username", "khalid22"}, extra: extra{pwd: "n3w-secret-pass"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Errorf("cli.run() expected error, got nil")
					return
				}
				refreshed, err := cli.planSvc.FindTeacherAccount("school1", "khalid22")
				if err != nil {
					t.Fatalf("FindTeacherAccount() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, tch.PasswordHash) {
					t.Error("failed to update new password")
				}
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if tt.wantErrStr != "" {
				if err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	// no postgres backend wired
	if err := cli.run([]string{"admin", "migrate", "up"}); err != errNoPostgres {
		t.Errorf("cli.run() error = %v, want errNoPostgres", err)
	}
	if err := cli.run([]string{"admin", "migrate"}); err != errHelp {
		t.Errorf("cli.run() without subcommand error = %v, want errHelp", err)
	}
}
