package upsert

import (
	"errors"
	"fmt"
)

// ErrInvalidInput matches every InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid upsert input")

// InvalidInputError reports misuse detected before any statement is built.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "upsert: " + e.Reason
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}
