package mmi

import (
	"errors"
	"fmt"
)

// MMI dispatch errors.
var (
	// ErrUnknownMMI is returned when a proxy has no handler for an MMI.
	ErrUnknownMMI = errors.New("mmi not implemented")

	// ErrUnknownProfile is returned when no proxy serves the requested profile.
	ErrUnknownProfile = errors.New("no proxy for profile")

	// ErrDescriptionMismatch is returned when the PTS description differs
	// from the one the handler expects.
	ErrDescriptionMismatch = errors.New("mmi description mismatch")

	// ErrInvalidAddress is returned for malformed Bluetooth addresses.
	ErrInvalidAddress = errors.New("invalid bluetooth address")
)

// DescriptionMismatchError reports the expected and received descriptions.
type DescriptionMismatchError struct {
	MMI      string
	Expected string
	Got      string
}

func (e *DescriptionMismatchError) Error() string {
	return fmt.Sprintf("%s: %s:\n  expected: %q\n  got:      %q", ErrDescriptionMismatch, e.MMI, e.Expected, e.Got)
}

// Unwrap allows errors.Is(err, ErrDescriptionMismatch).
func (e *DescriptionMismatchError) Unwrap() error {
	return ErrDescriptionMismatch
}
