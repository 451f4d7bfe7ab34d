package sff

import (
	"errors"
	"fmt"
)

// Container format errors.
var (
	ErrBadSignature       = errors.New("invalid SFF signature: expected 'ElecbyteSpr\\0'")
	ErrUnsupportedVersion = errors.New("unsupported SFF version")
	ErrTruncated          = errors.New("truncated SFF data")
)

// Lookup errors.
var (
	ErrNotFound        = errors.New("sprite not found")
	ErrLinkCycle       = errors.New("sprite link chain does not terminate")
	ErrBrokenLink      = errors.New("sprite link index out of range")
	ErrPaletteNotFound = errors.New("palette not found")
)

// Decode errors.
var (
	ErrUnknownFormat    = errors.New("unknown sprite format")
	ErrInvalidImageSize = errors.New("invalid image dimensions")
)

// FormatError reports a container that could not be loaded.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("sff: %s: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// LookupError reports a request that cannot be served by a loaded store.
// The store stays usable.
type LookupError struct {
	Group, Image int
	Err          error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("sff: sprite %d,%d: %v", e.Group, e.Image, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

// DecodeError reports a sprite whose pixel data cannot be decoded at all.
// Truncated pixel streams are not errors; they decode to partial images.
type DecodeError struct {
	Group, Image int
	Format       Format
	Err          error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sff: sprite %d,%d (%s): %v", e.Group, e.Image, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func truncated(op string, err error) error {
	return &FormatError{Op: op, Err: fmt.Errorf("%w: %w", ErrTruncated, err)}
}
