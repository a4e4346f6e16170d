// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "fmt"

// MalformedEncodingError reports input that is truncated, carries
// trailing bytes, or is otherwise not a valid encoding of a Value.
// Decoding never substitutes a default for malformed input.
type MalformedEncodingError struct {
	// Offset is the byte offset at which the problem was detected,
	// or -1 when the underlying decoder did not report one.
	Offset int
	Reason string
	Err    error
}

func (e *MalformedEncodingError) Error() string {
	message := "malformed encoding"
	if e.Offset >= 0 {
		message += fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Reason != "" {
		message += ": " + e.Reason
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *MalformedEncodingError) Unwrap() error { return e.Err }

func malformed(offset int, format string, args ...any) *MalformedEncodingError {
	return &MalformedEncodingError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// KindError reports a value of the wrong kind where a specific kind
// was required.
type KindError struct {
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

// RangeError reports an integer that does not fit the requested Go
// type.
type RangeError struct {
	Value string
	Type  string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("integer %s out of range for %s", e.Value, e.Type)
}

// FieldError attributes a conversion failure to a Record field index.
type FieldError struct {
	Index uint64
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", e.Index, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// UnknownEnumeratorError reports an enumerated wire value (a role, a
// feature, a transaction kind, a state) with no known name. Raw is
// the value exactly as received so that it can be re-encoded.
type UnknownEnumeratorError struct {
	Enumeration string
	Raw         Value
}

func (e *UnknownEnumeratorError) Error() string {
	return fmt.Sprintf("unknown %s %s", e.Enumeration, Describe(e.Raw))
}

// ReservedTagError reports a Tagged whose number is one of the bignum
// tags (2 and 3). Those tags are written only from Int values.
type ReservedTagError struct {
	Number uint64
}

func (e *ReservedTagError) Error() string {
	return fmt.Sprintf("tag %d is reserved for bignums (tags 2 and 3); use Int", e.Number)
}
