package user

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
)

func hash(t *testing.T, pwd string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return h
}

type stubTeachers struct {
	byUsername map[string]plan.Teacher
}

func (s stubTeachers) FindTeacherAccount(schoolID, username string) (plan.Teacher, error) {
	tch, ok := s.byUsername[schoolID+"|"+username]
	if !ok {
		return plan.Teacher{}, plan.ErrTeacherNotFound
	}
	return tch, nil
}

func newTestVerifier(t *testing.T) Verifier {
	t.Helper()
	boot := core.BootstrapConfig{
		AdminUsername:        "admin",
		AdminPasswordHash:    string(hash(t, "Adm1n-pass")),
		OperatorUsername:     "operator",
		OperatorPasswordHash: string(hash(t, "0perator-pass")),
	}
	teachers := stubTeachers{byUsername: map[string]plan.Teacher{
		"school1|khalid": {
			ID:           "t1",
			SchoolID:     "school1",
			Name:         "خالد",
			Username:     "khalid",
			PasswordHash: hash(t, "teach-12345"),
		},
	}}
	return NewVerifier(boot, teachers)
}

func TestVerifier_bootstrapAccounts(t *testing.T) {
	v := newTestVerifier(t)

	acct, err := v.Authenticate("", "admin", "Adm1n-pass")
	if err != nil {
		t.Fatalf("Authenticate(admin): %v", err)
	}
	if !acct.IsAdmin() || acct.SchoolID != "" {
		t.Errorf("admin account = %+v", acct)
	}

	// username match is case-insensitive, password is not
	if _, err = v.Authenticate("", "ADMIN", "Adm1n-pass"); err != nil {
		t.Errorf("Authenticate(ADMIN): %v", err)
	}
	if _, err = v.Authenticate("", "admin", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v; want ErrInvalidCredentials", err)
	}

	acct, err = v.Authenticate("", "operator", "0perator-pass")
	if err != nil {
		t.Fatalf("Authenticate(operator): %v", err)
	}
	if MaxRolePriority(acct.Roles) >= RolePriority(RoleAdmin) {
		t.Errorf("operator outranks admin: roles = %v", acct.Roles)
	}
	if !acct.IsAdmin() {
		t.Errorf("operator is an admin role: roles = %v", acct.Roles)
	}
}

func TestVerifier_teacherAccounts(t *testing.T) {
	v := newTestVerifier(t)

	acct, err := v.Authenticate("school1", "khalid", "teach-12345")
	if err != nil {
		t.Fatalf("Authenticate(teacher): %v", err)
	}
	if !acct.IsTeacher() || acct.SchoolID != "school1" || acct.ID != "t1" {
		t.Errorf("teacher account = %+v", acct)
	}

	if _, err = v.Authenticate("school1", "khalid", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("wrong password: err = %v; want ErrInvalidCredentials", err)
	}
	// a teacher login needs its school
	if _, err = v.Authenticate("", "khalid", "teach-12345"); err != ErrInvalidCredentials {
		t.Errorf("missing school: err = %v; want ErrInvalidCredentials", err)
	}
	if _, err = v.Authenticate("school2", "khalid", "teach-12345"); err != ErrInvalidCredentials {
		t.Errorf("other school: err = %v; want ErrInvalidCredentials", err)
	}
	if _, err = v.Authenticate("school1", "ghost", "teach-12345"); err != ErrInvalidCredentials {
		t.Errorf("unknown username: err = %v; want ErrInvalidCredentials", err)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		attrs   []string
		wantErr bool
	}{
		{"ok", "s3cret-pass", nil, false},
		{"too short", "s3cret", nil, true},
		{"whitespace", "s3cret pass", nil, true},
		{"all numeric", "12345678", nil, true},
		{"similar to username", "khalid221", []string{"khalid22"}, true},
		{"unrelated attr", "s3cret-pass", []string{"khalid22"}, false},
		{"empty attr ignored", "s3cret-pass", []string{""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.pwd, tt.attrs...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v; wantErr %v", tt.pwd, err, tt.wantErr)
			}
			if err != nil {
				if _, ok := err.(*core.ValidationError); !ok {
					t.Errorf("error type = %T; want *core.ValidationError", err)
				}
			}
		})
	}
}

func TestAccount_passwordRoundTrip(t *testing.T) {
	acct := Account{Username: "khalid"}
	if err := acct.SetPassword("teach-12345"); err != nil {
		t.Fatalf("SetPassword(): %v", err)
	}
	if err := acct.CheckPassword("teach-12345"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}
	if err := acct.CheckPassword("other"); err == nil {
		t.Error("CheckPassword() with wrong password: want error")
	}
}
