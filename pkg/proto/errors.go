// Package proto holds the types shared between the backend and its
// transports.
package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller is not authenticated.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is the base of every "not found" error.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is the base of every conflict error.
	ErrAlreadyExists = errors.New("already exists")
	// ErrTokenExpired is returned when a token is expired.
	ErrTokenExpired = errors.New("token expired")
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrSchoolNotFound is returned when a school is not found.
	ErrSchoolNotFound = fmt.Errorf("school %w", ErrNotFound)
	// ErrEditionNotFound is returned when an edition is not found.
	ErrEditionNotFound = fmt.Errorf("edition %w", ErrNotFound)
	// ErrOpportunityNotFound is returned when an opportunity is not found.
	ErrOpportunityNotFound = fmt.Errorf("opportunity %w", ErrNotFound)
	// ErrActivityNotFound is returned when an activity is not found.
	ErrActivityNotFound = fmt.Errorf("activity %w", ErrNotFound)
	// ErrOrganizationNotFound is returned when an organization is not found.
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	// ErrGroupNotFound is returned when an advisory group is not found.
	ErrGroupNotFound = fmt.Errorf("advisory group %w", ErrNotFound)
	// ErrSettingNotFound is returned when a setting key is not found.
	ErrSettingNotFound = fmt.Errorf("setting %w", ErrNotFound)

	// ErrUserExists is returned when the email is taken.
	ErrUserExists = fmt.Errorf("user %w", ErrAlreadyExists)
	// ErrOrganizationExists is returned when the organization name is taken.
	ErrOrganizationExists = fmt.Errorf("organization %w", ErrAlreadyExists)
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError returns a *ValidationError for field.
func NewValidationError(field string, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
