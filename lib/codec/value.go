// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"fmt"
	"math"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindArray
	KindMap
	KindRecord
	KindTagged
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "integer",
	KindFloat:  "float",
	KindBytes:  "bytes",
	KindText:   "text",
	KindArray:  "array",
	KindMap:    "map",
	KindRecord: "record",
	KindTagged: "tagged value",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Value is one node of the wire value model. The set of
// implementations is closed: Null, Bool, Int, Float, Bytes, Text,
// Array, Map, Record and Tagged.
type Value interface {
	Kind() Kind
	// Equal reports structural equality. Map and Record comparisons
	// ignore entry order.
	Equal(other Value) bool
	MarshalCBOR() ([]byte, error)

	value()
}

// Null is the CBOR null. Undefined also decodes to Null.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

func (Null) MarshalCBOR() ([]byte, error) { return []byte{0xf6}, nil }

// Bool is a CBOR boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && o == b
}

func (b Bool) MarshalCBOR() ([]byte, error) { return Marshal(bool(b)) }

// Int is an arbitrary-precision integer. Ledger amounts routinely
// exceed 64 bits, so every integer is carried as a big.Int; the zero
// value is 0. Int is immutable: constructors and accessors copy.
type Int struct {
	n *big.Int
}

// NewInt returns the Int for a signed 64-bit value.
func NewInt(n int64) Int { return Int{n: big.NewInt(n)} }

// NewUint returns the Int for an unsigned 64-bit value.
func NewUint(n uint64) Int { return Int{n: new(big.Int).SetUint64(n)} }

// NewBigInt returns the Int for n. A nil n is 0.
func NewBigInt(n *big.Int) Int {
	if n == nil {
		return Int{}
	}
	return Int{n: new(big.Int).Set(n)}
}

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

func (i Int) big() *big.Int {
	if i.n == nil {
		return new(big.Int)
	}
	return i.n
}

// Big returns a copy of the integer.
func (i Int) Big() *big.Int { return new(big.Int).Set(i.big()) }

// Sign returns -1, 0 or +1.
func (i Int) Sign() int { return i.big().Sign() }

// Int64 returns the value and whether it fits in an int64.
func (i Int) Int64() (int64, bool) {
	n := i.big()
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

// Uint64 returns the value and whether it fits in a uint64.
func (i Int) Uint64() (uint64, bool) {
	n := i.big()
	if !n.IsUint64() {
		return 0, false
	}
	return n.Uint64(), true
}

func (i Int) String() string { return i.big().String() }

func (i Int) Equal(other Value) bool {
	o, ok := other.(Int)
	return ok && o.big().Cmp(i.big()) == 0
}

func (i Int) MarshalCBOR() ([]byte, error) { return Marshal(i.big()) }

// Float is a CBOR floating-point number. It is encoded in the
// shortest width that preserves the value.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) value()     {}

func (f Float) Equal(other Value) bool {
	o, ok := other.(Float)
	if !ok {
		return false
	}
	if math.IsNaN(float64(f)) {
		return math.IsNaN(float64(o))
	}
	return o == f
}

func (f Float) MarshalCBOR() ([]byte, error) { return Marshal(float64(f)) }

// Bytes is a CBOR byte string.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }
func (Bytes) value()     {}

func (b Bytes) Equal(other Value) bool {
	o, ok := other.(Bytes)
	return ok && bytes.Equal(o, b)
}

func (b Bytes) MarshalCBOR() ([]byte, error) {
	// A nil slice would otherwise encode as null.
	if b == nil {
		return []byte{0x40}, nil
	}
	return Marshal([]byte(b))
}

// Text is a CBOR UTF-8 text string.
type Text string

func (Text) Kind() Kind { return KindText }
func (Text) value()     {}

func (t Text) Equal(other Value) bool {
	o, ok := other.(Text)
	return ok && o == t
}

func (t Text) MarshalCBOR() ([]byte, error) { return Marshal(string(t)) }

// Array is an ordered sequence of values.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) value()     {}

func (a Array) Equal(other Value) bool {
	o, ok := other.(Array)
	if !ok || len(o) != len(a) {
		return false
	}
	for i := range a {
		if !equalValues(a[i], o[i]) {
			return false
		}
	}
	return true
}

func (a Array) MarshalCBOR() ([]byte, error) {
	items := make([]Value, len(a))
	for i, item := range a {
		items[i] = orNull(item)
	}
	return Marshal(items)
}

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map is a CBOR map whose keys are not all unsigned integers, such as
// the approver and role maps keyed by tagged identities. Entries keep
// their decoded order; encoding sorts them deterministically.
type Map []MapEntry

func (Map) Kind() Kind { return KindMap }
func (Map) value()     {}

// Lookup returns the value stored under key.
func (m Map) Lookup(key Value) (Value, bool) {
	for _, entry := range m {
		if equalValues(entry.Key, key) {
			return entry.Value, true
		}
	}
	return nil, false
}

func (m Map) Equal(other Value) bool {
	o, ok := other.(Map)
	if !ok || len(o) != len(m) {
		return false
	}
	for _, entry := range m {
		value, found := o.Lookup(entry.Key)
		if !found || !equalValues(entry.Value, value) {
			return false
		}
	}
	return true
}

// encodedKey carries a pre-encoded map key. It lets keys of any kind,
// including tagged byte strings, sit in a Go map handed to the
// encoder, which then sorts entries by their encoded bytes.
type encodedKey string

func (k encodedKey) MarshalCBOR() ([]byte, error) { return []byte(k), nil }

func (m Map) MarshalCBOR() ([]byte, error) {
	entries := make(map[encodedKey]Value, len(m))
	for _, entry := range m {
		key, err := Encode(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("encoding map key: %w", err)
		}
		if _, duplicate := entries[encodedKey(key)]; duplicate {
			return nil, fmt.Errorf("duplicate map key %s", Describe(entry.Key))
		}
		entries[encodedKey(key)] = orNull(entry.Value)
	}
	return Marshal(entries)
}

// Tagged is a value carrying a CBOR tag number. Tags 2 and 3
// (bignums) decode as Int, never as Tagged, and a Tagged carrying
// them cannot be encoded. Every other tag number is preserved,
// including numbers this module assigns no meaning to.
type Tagged struct {
	Number  uint64
	Content Value
}

func (Tagged) Kind() Kind { return KindTagged }
func (Tagged) value()     {}

func (t Tagged) Equal(other Value) bool {
	o, ok := other.(Tagged)
	return ok && o.Number == t.Number && equalValues(t.Content, o.Content)
}

// MarshalCBOR refuses the bignum tags 2 and 3: Decode reads them back
// as Int, so writing them from a Tagged would not round-trip.
func (t Tagged) MarshalCBOR() ([]byte, error) {
	if t.Number == tagPositiveBignum || t.Number == tagNegativeBignum {
		return nil, &ReservedTagError{Number: t.Number}
	}
	return Marshal(cbor.Tag{Number: t.Number, Content: orNull(t.Content)})
}

func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

func equalValues(a, b Value) bool {
	return orNull(a).Equal(orNull(b))
}

// Equal reports whether a and b are structurally equal. A nil Value
// equals Null.
func Equal(a, b Value) bool { return equalValues(a, b) }

// Encode serializes v. A nil v encodes as null.
func Encode(v Value) ([]byte, error) {
	return Marshal(orNull(v))
}
