// Package common holds the errors and logging setup shared by climbr's packages.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a stored setting or wall set does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDatabaseCorrupted is returned when a stored row cannot be decoded.
	ErrDatabaseCorrupted = errors.New("database corrupted")
	// ErrInvalidConfig is returned for unusable configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError pairs an underlying error with the message printed for the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the friendly message carried by err, or err's own text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}
