package user

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/shule/core"
)

// password policy
var (
	pwdMinLen     = 8
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to account attributes"
)

// ValidatePassword applies the password policy:
// - minLen: 8
// - no whitespace
// - not all numeric
// - no similarity to account attributes (name, username)
func ValidatePassword(pwd string, attrs ...string) error {
	fieldErr := func(text string) error {
		return core.NewValidationError(errors.New(text), core.FieldError{Field: "password", Error: text})
	}

	if len(pwd) < pwdMinLen {
		return fieldErr(pwdMinLenText)
	}

	digitCount := 0
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return fieldErr(pwdNoSpaceText)
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(pwd) {
		return fieldErr(pwdNotAllNumText)
	}

	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, ""))
		if m.QuickRatio() >= pwdMaxSim {
			return fieldErr(pwdAttrSimText)
		}
	}
	return nil
}
