package entitlement

import (
	"errors"
	"fmt"
)

// ErrInvalidEnumValue reports a tier, rank, feature or action outside the
// known set. It is a programming error at the call site, never defaulted.
var ErrInvalidEnumValue = errors.New("invalid enum value")

// InvalidEnumError carries the offending value; errors.Is matches
// ErrInvalidEnumValue.
type InvalidEnumError struct {
	Kind  string
	Value string
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("%s: unknown %s %q", ErrInvalidEnumValue, e.Kind, e.Value)
}

func (e *InvalidEnumError) Unwrap() error { return ErrInvalidEnumValue }

func invalid(kind, value string) error {
	return &InvalidEnumError{Kind: kind, Value: value}
}
