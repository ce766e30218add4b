package tui

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/plannerhq/planner/internal/models"
)

// MinNameLength is the shortest accepted employee or project name.
const MinNameLength = 3

var (
	ErrRequired     = errors.New("this field is required")
	ErrInvalidEmail = errors.New("must be a valid email address")
	ErrInvalidColor = errors.New("must be a hex color like #1a73e8")
)

// Required rejects blank input.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrRequired
	}
	return nil
}

// MinLength returns a validator for required input of at least n runes.
func MinLength(n int) func(string) error {
	return func(s string) error {
		if err := Required(s); err != nil {
			return err
		}
		if utf8.RuneCountInString(strings.TrimSpace(s)) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

// Email requires a bare address such as ada@example.com.
func Email(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) || addr.Name != "" {
		return ErrInvalidEmail
	}
	return nil
}

// Color requires #rgb or #rrggbb.
func Color(s string) error {
	if err := Required(s); err != nil {
		return err
	}
	if !IsHexColor(strings.TrimSpace(s)) {
		return ErrInvalidColor
	}
	return nil
}

// FieldError names the field that failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }

func (e *FieldError) Unwrap() error { return e.Err }

func check(field, value string, rule func(string) error) error {
	if err := rule(value); err != nil {
		return &FieldError{Field: field, Err: err}
	}
	return nil
}

// ValidateEmployee applies the employee form rules.
func ValidateEmployee(p models.EmployeeProperties) error {
	return errors.Join(
		check("name", p.Name, MinLength(MinNameLength)),
		check("surname", p.Surname, MinLength(MinNameLength)),
		check("email", p.Email, Email),
	)
}

// ValidateProject applies the project form rules.
func ValidateProject(p models.ProjectProperties) error {
	return errors.Join(
		check("name", p.Name, MinLength(MinNameLength)),
		check("color", p.Color, Color),
	)
}
