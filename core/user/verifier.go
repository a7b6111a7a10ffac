package user

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
)

var (
	// ErrInvalidCredentials is deliberately the only failure surfaced for a
	// bad username, unknown school or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TeacherAccounts resolves per-school teacher login records; satisfied by the
// plan service.
type TeacherAccounts interface {
	FindTeacherAccount(schoolID, username string) (plan.Teacher, error)
}

// Verifier authenticates a principal against its credential source.
type Verifier interface {
	Authenticate(schoolID, username, password string) (Account, error)
}

// verifier resolves two credential sources: the bootstrap admin/operator
// pair from configuration, and each school's teacher accounts.
type verifier struct {
	boot     core.BootstrapConfig
	teachers TeacherAccounts
}

var _ Verifier = (*verifier)(nil)

func NewVerifier(boot core.BootstrapConfig, teachers TeacherAccounts) Verifier {
	return &verifier{boot: boot, teachers: teachers}
}

// Authenticate resolves username against the bootstrap accounts first, then
// the school's teachers. Admin logins ignore schoolID; they pick a school
// per request instead.
func (v *verifier) Authenticate(schoolID, username, password string) (Account, error) {
	username = core.CleanString(username, true)

	if username != "" && username == core.CleanString(v.boot.AdminUsername, true) {
		return v.checkBootstrap(username, password, v.boot.AdminPasswordHash, RoleAdmin)
	}
	if username != "" && username == core.CleanString(v.boot.OperatorUsername, true) {
		return v.checkBootstrap(username, password, v.boot.OperatorPasswordHash, RoleAdminOperator)
	}

	if v.teachers == nil || schoolID == "" {
		return Account{}, ErrInvalidCredentials
	}
	tch, err := v.teachers.FindTeacherAccount(schoolID, username)
	if err != nil {
		return Account{}, ErrInvalidCredentials
	}
	acct := Account{
		ID:           tch.ID,
		Name:         tch.Name,
		Username:     tch.Username,
		SchoolID:     schoolID,
		Roles:        []string{RoleTeacher},
		PasswordHash: tch.PasswordHash,
	}
	if err = acct.CheckPassword(password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

func (v *verifier) checkBootstrap(username, password, hash, role string) (Account, error) {
	if hash == "" {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return Account{
		ID:           username,
		Name:         username,
		Username:     username,
		Roles:        []string{role},
		PasswordHash: []byte(hash),
	}, nil
}
