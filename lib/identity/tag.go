// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// IdentityTag marks a byte string as an address reference.
const IdentityTag uint64 = 10000

// TimestampTag marks an integer as seconds since the Unix epoch
// (RFC 8949 §3.4.2).
const TimestampTag uint64 = 1

// UnexpectedTagError reports a value that should have been an identity
// but carries a different tag, or no tag at all.
type UnexpectedTagError struct {
	Want uint64
	// Got is the tag number found; meaningful only when Untagged is
	// false.
	Got      uint64
	Untagged bool
	GotKind  codec.Kind
}

func (e *UnexpectedTagError) Error() string {
	if e.Untagged {
		return fmt.Sprintf("expected tag %d, got untagged %s", e.Want, e.GotKind)
	}
	return fmt.Sprintf("expected tag %d, got tag %d", e.Want, e.Got)
}

// MalformedAddressError reports bytes that do not form a valid
// address.
type MalformedAddressError struct {
	Bytes  []byte
	Reason string
}

func (e *MalformedAddressError) Error() string {
	return fmt.Sprintf("malformed address %x: %s", e.Bytes, e.Reason)
}

// AddressToIdentity wraps the address bytes in the identity tag.
func AddressToIdentity(a Address) codec.Tagged {
	return codec.Tagged{Number: IdentityTag, Content: codec.Bytes(a.Bytes())}
}

// IdentityToAddress unwraps an identity-tagged value. A value without
// the identity tag fails with *UnexpectedTagError; content that is not
// a valid address byte string fails with *MalformedAddressError.
func IdentityToAddress(v codec.Value) (Address, error) {
	tagged, ok := v.(codec.Tagged)
	if !ok {
		kind := codec.KindNull
		if v != nil {
			kind = v.Kind()
		}
		return Address{}, &UnexpectedTagError{Want: IdentityTag, Untagged: true, GotKind: kind}
	}
	if tagged.Number != IdentityTag {
		return Address{}, &UnexpectedTagError{Want: IdentityTag, Got: tagged.Number}
	}
	raw, ok := tagged.Content.(codec.Bytes)
	if !ok {
		kind := codec.KindNull
		if tagged.Content != nil {
			kind = tagged.Content.Kind()
		}
		return Address{}, &MalformedAddressError{Reason: fmt.Sprintf("identity content is %s, not bytes", kind)}
	}
	return FromBytes(raw)
}

// Interpreted is the meaning assigned to a tagged value: an [Identity],
// a [Timestamp] or an [Unknown]. Tagged returns the wire form, which
// is identical to the value that was interpreted.
type Interpreted interface {
	Tagged() codec.Tagged
	interpreted()
}

// Identity is an address reference.
type Identity struct {
	Address Address
}

func (i Identity) Tagged() codec.Tagged { return AddressToIdentity(i.Address) }
func (Identity) interpreted()           {}

// Timestamp is a point in time with one-second resolution.
type Timestamp struct {
	Time time.Time
}

func (t Timestamp) Tagged() codec.Tagged { return TimestampToValue(t.Time) }
func (Timestamp) interpreted()           {}

// Unknown is a tag this package assigns no meaning to, kept verbatim.
type Unknown struct {
	Value codec.Tagged
}

func (u Unknown) Tagged() codec.Tagged { return u.Value }
func (Unknown) interpreted()           {}

// Interpret classifies t. Recognized tags with invalid content fail
// rather than degrade to Unknown.
func Interpret(t codec.Tagged) (Interpreted, error) {
	switch t.Number {
	case IdentityTag:
		address, err := IdentityToAddress(t)
		if err != nil {
			return nil, err
		}
		return Identity{Address: address}, nil
	case TimestampTag:
		when, err := ValueToTimestamp(t)
		if err != nil {
			return nil, err
		}
		return Timestamp{Time: when}, nil
	default:
		return Unknown{Value: t}, nil
	}
}

// TimestampToValue returns the timestamp tag for when, truncated to
// whole seconds.
func TimestampToValue(when time.Time) codec.Tagged {
	return codec.Tagged{Number: TimestampTag, Content: codec.NewInt(when.Unix())}
}

// Timestamps must fall in years 1 through 9999. A millisecond count
// for any date after January 1978 is above the upper bound, so a
// server writing milliseconds is reported instead of decoded as a
// date tens of thousands of years away.
const (
	minTimestampSeconds int64 = -62135596800
	maxTimestampSeconds int64 = 253402300799
)

// ValueToTimestamp unwraps a timestamp tag holding integer seconds.
// Values outside years 1 through 9999 fail with *codec.RangeError.
func ValueToTimestamp(v codec.Value) (time.Time, error) {
	tagged, ok := v.(codec.Tagged)
	if !ok {
		kind := codec.KindNull
		if v != nil {
			kind = v.Kind()
		}
		return time.Time{}, &UnexpectedTagError{Want: TimestampTag, Untagged: true, GotKind: kind}
	}
	if tagged.Number != TimestampTag {
		return time.Time{}, &UnexpectedTagError{Want: TimestampTag, Got: tagged.Number}
	}
	seconds, err := codec.AsInt64(tagged.Content)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp content: %w", err)
	}
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return time.Time{}, &codec.RangeError{Value: strconv.FormatInt(seconds, 10), Type: "timestamp seconds (years 1-9999)"}
	}
	return time.Unix(seconds, 0).UTC(), nil
}
