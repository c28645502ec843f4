package errors

import (
	"errors"
	"fmt"
)

// NotFound marks a referenced document (author, parent thread) that does not exist.
var NotFound = errors.New("Not found")

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// ThreadCreationError wraps any storage failure while creating a thread or a reply.
type ThreadCreationError struct {
	Err error
}

func (e *ThreadCreationError) Error() string {
	return fmt.Sprintf("Failed to create thread: %s", e.Err)
}

func (e *ThreadCreationError) Unwrap() error {
	return e.Err
}

// ThreadFetchError wraps any storage failure while reading threads.
type ThreadFetchError struct {
	Err error
}

func (e *ThreadFetchError) Error() string {
	return fmt.Sprintf("Failed to fetch thread: %s", e.Err)
}

func (e *ThreadFetchError) Unwrap() error {
	return e.Err
}

// UserSaveError wraps any storage failure while saving a user profile.
type UserSaveError struct {
	Err error
}

func (e *UserSaveError) Error() string {
	return fmt.Sprintf("Failed to save user: %s", e.Err)
}

func (e *UserSaveError) Unwrap() error {
	return e.Err
}

// NotFoundf returns an error matching NotFound with a description of what is missing.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), NotFound)
}
