package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput means the analysis document failed shape or parse validation
	ErrMalformedInput = errors.New("malformed input")
	// ErrNotFound means the referenced user does not exist
	ErrNotFound = errors.New("user not found")
	// ErrUserExists is returned when creating a user id that is already taken
	ErrUserExists = errors.New("user already exists")
)

// StoreError wraps any failure coming out of the persistence layer
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}
