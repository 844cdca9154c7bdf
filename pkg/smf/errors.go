// Package smf decodes Standard MIDI Files into an immutable, strongly typed document.
// This file defines the error taxonomy shared by the cursor, VLQ decoder and parser.
package smf

import (
	"errors"
	"fmt"
)

// Structural errors: the bytes are present but do not follow the SMF grammar.
var (
	// ErrBadMagic is returned when a chunk tag is not the expected "MThd" or "MTrk".
	ErrBadMagic = errors.New("bad chunk magic")

	// ErrBadHeaderLength is returned when the MThd body length is not 6.
	ErrBadHeaderLength = errors.New("bad header length")

	// ErrUnsupportedFormat is returned for SMF formats other than 0, 1 and 2.
	ErrUnsupportedFormat = errors.New("unsupported SMF format")

	// ErrInvalidDivision is returned when the header division cannot drive any clock
	// (PPQ of zero, unknown SMPTE frame rate, zero ticks per frame).
	ErrInvalidDivision = errors.New("invalid time division")

	// ErrUnsupportedEventStatus is returned for system common and real-time status bytes.
	ErrUnsupportedEventStatus = errors.New("unsupported event status")

	// ErrRunningStatusWithoutContext is returned when a data byte appears where a status
	// byte is required and no channel status has been seen in the track yet.
	ErrRunningStatusWithoutContext = errors.New("running status without context")

	// ErrVLQTooLong is returned when a variable-length quantity does not terminate within 4 bytes.
	ErrVLQTooLong = errors.New("variable-length quantity too long")
)

// ErrUnexpectedEndOfData is the truncation error: a read asked for more bytes than remain.
var ErrUnexpectedEndOfData = errors.New("unexpected end of data")

// Category classifies a ParseError.
type Category string

const (
	CategoryStructural Category = "STRUCTURAL"
	CategoryTruncation Category = "TRUNCATION"
)

// ParseError describes why and where decoding stopped.
// Every ParseError is fatal: Parse never returns a partial document.
type ParseError struct {
	Err       error  // one of the sentinel errors above
	Offset    int    // byte offset into the input where the problem was detected
	Tag       string // expected chunk tag for ErrBadMagic, found tag in Found
	Found     string
	Value     int // offending value (format, header length, status byte)
	Requested int // bytes requested for ErrUnexpectedEndOfData
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Err {
	case ErrBadMagic:
		return fmt.Sprintf("%v at offset %d: expected %q, found %q", e.Err, e.Offset, e.Tag, e.Found)
	case ErrUnexpectedEndOfData:
		return fmt.Sprintf("%v at offset %d: requested %d bytes", e.Err, e.Offset, e.Requested)
	case ErrUnsupportedEventStatus:
		return fmt.Sprintf("%v 0x%02X at offset %d", e.Err, e.Value, e.Offset)
	case ErrBadHeaderLength, ErrUnsupportedFormat, ErrInvalidDivision:
		return fmt.Sprintf("%v %d at offset %d", e.Err, e.Value, e.Offset)
	default:
		return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
	}
}

// Unwrap allows errors.Is against the sentinel errors.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Category reports whether the input was malformed or merely cut short.
func (e *ParseError) Category() Category {
	if e.Err == ErrUnexpectedEndOfData {
		return CategoryTruncation
	}
	return CategoryStructural
}

func structuralError(err error, offset, value int) *ParseError {
	return &ParseError{Err: err, Offset: offset, Value: value}
}

func truncationError(offset, requested int) *ParseError {
	return &ParseError{Err: ErrUnexpectedEndOfData, Offset: offset, Requested: requested}
}

func magicError(offset int, expected, found string) *ParseError {
	return &ParseError{Err: ErrBadMagic, Offset: offset, Tag: expected, Found: found}
}
