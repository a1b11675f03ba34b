// Package forms validates user input as pure functions over structured
// form records. Validation runs entirely client-side; a form that fails
// here never reaches the network. Errors are reported per field so views
// can render them inline.
package forms

import (
	"regexp"
	"strings"
)

// FieldError points at the offending field of a form
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address has a plausible structure
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// LoginForm is the email/password login form state
type LoginForm struct {
	Email    string
	Password string
}

// Validate returns the field-level errors of a login attempt
func (f LoginForm) Validate() []FieldError {
	var errs []FieldError

	email := strings.TrimSpace(f.Email)
	if email == "" {
		errs = append(errs, FieldError{"email", "email is required"})
	} else if !ValidEmail(email) {
		errs = append(errs, FieldError{"email", "email format is invalid"})
	}

	if f.Password == "" {
		errs = append(errs, FieldError{"password", "password is required"})
	} else if len(f.Password) < 6 {
		errs = append(errs, FieldError{"password", "password must have at least 6 characters"})
	}

	return errs
}

// RegisterForm is the account registration form state
type RegisterForm struct {
	FirstName       string
	LastName        string
	Email           string
	CPF             string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
}

// FullName joins the name fields for the registration request
func (f RegisterForm) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

// Validate returns the field-level errors of a registration attempt
func (f RegisterForm) Validate() []FieldError {
	var errs []FieldError

	if strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" {
		errs = append(errs, FieldError{"name", "full name is required"})
	}

	email := strings.TrimSpace(f.Email)
	if email == "" {
		errs = append(errs, FieldError{"email", "email is required"})
	} else if !ValidEmail(email) {
		errs = append(errs, FieldError{"email", "email format is invalid"})
	}

	if strings.TrimSpace(f.CPF) == "" {
		errs = append(errs, FieldError{"cpf", "cpf is required"})
	} else if !ValidCPF(f.CPF) {
		errs = append(errs, FieldError{"cpf", "cpf is invalid"})
	}

	if f.Password == "" {
		errs = append(errs, FieldError{"password", "password is required"})
	} else if len(f.Password) < 8 {
		errs = append(errs, FieldError{"password", "password must have at least 8 characters"})
	}

	if f.Password != "" && f.ConfirmPassword != f.Password {
		errs = append(errs, FieldError{"confirm_password", "passwords do not match"})
	}

	if !f.TermsAccepted {
		errs = append(errs, FieldError{"terms", "terms of use must be accepted"})
	}

	return errs
}
