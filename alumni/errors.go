// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package alumni

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a profile does not exist.
var ErrNotFound = errors.New("alumni: profile not found")

// ValidationError reports a profile field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Field, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err, or any error it wraps, is a
// ValidationError.
func IsValidationError(err error) bool {
	return AsValidationError(err) != nil
}

// AsValidationError returns the first ValidationError in err's chain, or nil.
func AsValidationError(err error) *ValidationError {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr
	}

	return nil
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
