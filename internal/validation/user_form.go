// Package validation checks a new-user form before it is committed.
package validation

import (
	"regexp"
	"strings"

	"github.com/BradenHooton/warden/internal/models"
	"github.com/BradenHooton/warden/internal/rbac"
	"github.com/BradenHooton/warden/pkg/auth"
)

const (
	MsgInvalidEmail = "Invalid email format"
	MsgEmailTaken   = "Email already exists"
)

// emailPattern treats vertical tab, Unicode separators and BOM as whitespace;
// RE2's \s covers only [\t\n\f\r ].
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// NewUserForm carries the submitted values. Permissions is only consulted for
// the Custom role.
type NewUserForm struct {
	Name        string
	Email       string
	Password    string
	Role        models.Role
	Permissions models.PermissionMatrix
}

// ValidateNewUser runs every check and concatenates the messages in order:
// email format, email uniqueness, password strength, permission legality.
// It never mutates its inputs.
func ValidateNewUser(form NewUserForm, existing []*models.User) []string {
	errs := make([]string, 0)

	emailErrs := ValidateEmail(form.Email)
	errs = append(errs, emailErrs...)
	if len(emailErrs) == 0 && !IsEmailUnique(form.Email, existing) {
		errs = append(errs, MsgEmailTaken)
	}

	errs = append(errs, auth.PasswordProblems(form.Password)...)

	if form.Role == models.RoleCustom {
		if permErrs := rbac.Validate(form.Permissions); len(permErrs) > 0 {
			errs = append(errs, permErrs...)
			errs = append(errs, rbac.InvalidPermissionsMessage)
		}
	}

	return errs
}

// ValidateEmail checks the local@domain.tld shape.
func ValidateEmail(email string) []string {
	if !emailPattern.MatchString(email) {
		return []string{MsgInvalidEmail}
	}
	return nil
}

// IsEmailUnique reports whether no existing user holds email, ignoring case.
func IsEmailUnique(email string, existing []*models.User) bool {
	for _, u := range existing {
		if u != nil && strings.EqualFold(u.Email, email) {
			return false
		}
	}
	return true
}
