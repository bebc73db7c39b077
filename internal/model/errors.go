package model

import (
	"errors"
	"fmt"
)

// ErrFieldType is returned when a call payload field carries a value of an unexpected JSON type.
var ErrFieldType = errors.New("unexpected field type")

// FieldError wraps a decoding error with the name of the offending field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
