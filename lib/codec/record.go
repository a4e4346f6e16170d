// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"math/big"
	"slices"
)

// Record is a map keyed by small non-negative integers: the argument
// and result container of every ledger call. A key that is absent
// means "field not present", which is distinct from a key holding
// Null.
//
// Record has map semantics: copies share storage. Set works on the
// zero value by returning the (possibly newly allocated) record, so
// build records by chaining from NewRecord.
type Record struct {
	fields map[uint64]Value
}

// NewRecord returns an empty record ready for Set.
func NewRecord() Record {
	return Record{fields: make(map[uint64]Value)}
}

func (Record) Kind() Kind { return KindRecord }
func (Record) value()     {}

// Set stores v under index. A nil v is stored as Null.
func (r Record) Set(index uint64, v Value) Record {
	if r.fields == nil {
		r.fields = make(map[uint64]Value)
	}
	r.fields[index] = orNull(v)
	return r
}

// Delete removes index.
func (r Record) Delete(index uint64) {
	delete(r.fields, index)
}

// Get returns the value under index and whether the field is present.
func (r Record) Get(index uint64) (Value, bool) {
	v, ok := r.fields[index]
	return v, ok
}

// Has reports whether index is present.
func (r Record) Has(index uint64) bool {
	_, ok := r.fields[index]
	return ok
}

// Len returns the number of present fields.
func (r Record) Len() int { return len(r.fields) }

// Keys returns the present field indices in ascending order.
func (r Record) Keys() []uint64 {
	keys := make([]uint64, 0, len(r.fields))
	for key := range r.fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (r Record) Equal(other Value) bool {
	o, ok := other.(Record)
	if !ok || o.Len() != r.Len() {
		return false
	}
	for key, value := range r.fields {
		otherValue, found := o.fields[key]
		if !found || !equalValues(value, otherValue) {
			return false
		}
	}
	return true
}

func (r Record) MarshalCBOR() ([]byte, error) {
	if r.fields == nil {
		return []byte{0xa0}, nil
	}
	return Marshal(r.fields)
}

// Presence distinguishes the three states a Record field can be in.
type Presence uint8

const (
	FieldAbsent Presence = iota
	FieldNull
	FieldPresent
)

func (p Presence) String() string {
	switch p {
	case FieldAbsent:
		return "absent"
	case FieldNull:
		return "null"
	case FieldPresent:
		return "present"
	}
	return "unknown"
}

// Field is a tri-state field value: absent, null, or present with a
// Value. Decoders return it instead of zero values so that callers
// must decide what a missing field means.
type Field[T any] struct {
	Value    T
	Presence Presence
}

// Some returns a present field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Presence: FieldPresent}
}

// Absent returns a field that is not present.
func Absent[T any]() Field[T] { return Field[T]{} }

// IsPresent reports whether the field holds a value.
func (f Field[T]) IsPresent() bool { return f.Presence == FieldPresent }

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) { return f.Value, f.Presence == FieldPresent }

// Lookup reads index from r and converts it with convert. Absent and
// null fields are reported through Presence without calling convert;
// conversion failures are returned as *FieldError.
func Lookup[T any](r Record, index uint64, convert func(Value) (T, error)) (Field[T], error) {
	raw, ok := r.Get(index)
	if !ok {
		return Field[T]{Presence: FieldAbsent}, nil
	}
	if raw.Kind() == KindNull {
		return Field[T]{Presence: FieldNull}, nil
	}
	converted, err := convert(raw)
	if err != nil {
		return Field[T]{}, &FieldError{Index: index, Err: err}
	}
	return Some(converted), nil
}

// Require is Lookup for fields that must be present and non-null.
func Require[T any](r Record, index uint64, convert func(Value) (T, error)) (T, error) {
	field, err := Lookup(r, index, convert)
	if err != nil {
		var zero T
		return zero, err
	}
	if !field.IsPresent() {
		var zero T
		return zero, &FieldError{Index: index, Err: &MissingError{Presence: field.Presence}}
	}
	return field.Value, nil
}

// MissingError reports a required field that was absent or null.
type MissingError struct {
	Presence Presence
}

func (e *MissingError) Error() string {
	return "required field is " + e.Presence.String()
}

// AsUint64 converts an integer value that fits in a uint64.
func AsUint64(v Value) (uint64, error) {
	i, ok := v.(Int)
	if !ok {
		return 0, &KindError{Want: KindInt, Got: kindOf(v)}
	}
	n, ok := i.Uint64()
	if !ok {
		return 0, &RangeError{Value: i.String(), Type: "uint64"}
	}
	return n, nil
}

// AsInt64 converts an integer value that fits in an int64.
func AsInt64(v Value) (int64, error) {
	i, ok := v.(Int)
	if !ok {
		return 0, &KindError{Want: KindInt, Got: kindOf(v)}
	}
	n, ok := i.Int64()
	if !ok {
		return 0, &RangeError{Value: i.String(), Type: "int64"}
	}
	return n, nil
}

// AsBigInt converts any integer value.
func AsBigInt(v Value) (*big.Int, error) {
	i, ok := v.(Int)
	if !ok {
		return nil, &KindError{Want: KindInt, Got: kindOf(v)}
	}
	return i.Big(), nil
}

func AsText(v Value) (string, error) {
	t, ok := v.(Text)
	if !ok {
		return "", &KindError{Want: KindText, Got: kindOf(v)}
	}
	return string(t), nil
}

func AsBool(v Value) (bool, error) {
	b, ok := v.(Bool)
	if !ok {
		return false, &KindError{Want: KindBool, Got: kindOf(v)}
	}
	return bool(b), nil
}

func AsBytes(v Value) ([]byte, error) {
	b, ok := v.(Bytes)
	if !ok {
		return nil, &KindError{Want: KindBytes, Got: kindOf(v)}
	}
	return []byte(b), nil
}

func AsArray(v Value) (Array, error) {
	a, ok := v.(Array)
	if !ok {
		return nil, &KindError{Want: KindArray, Got: kindOf(v)}
	}
	return a, nil
}

func AsMap(v Value) (Map, error) {
	switch m := v.(type) {
	case Map:
		return m, nil
	case Record:
		// An empty map, or one that happens to have only integer
		// keys, decodes as a Record.
		converted := make(Map, 0, m.Len())
		for _, key := range m.Keys() {
			value, _ := m.Get(key)
			converted = append(converted, MapEntry{Key: NewUint(key), Value: value})
		}
		return converted, nil
	}
	return nil, &KindError{Want: KindMap, Got: kindOf(v)}
}

func AsRecord(v Value) (Record, error) {
	r, ok := v.(Record)
	if !ok {
		return Record{}, &KindError{Want: KindRecord, Got: kindOf(v)}
	}
	return r, nil
}

func AsTagged(v Value) (Tagged, error) {
	t, ok := v.(Tagged)
	if !ok {
		return Tagged{}, &KindError{Want: KindTagged, Got: kindOf(v)}
	}
	return t, nil
}

// TextArray converts an array whose items are all text.
func TextArray(v Value) ([]string, error) {
	items, err := AsArray(v)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(items))
	for i, item := range items {
		text, err := AsText(item)
		if err != nil {
			return nil, &FieldError{Index: uint64(i), Err: err}
		}
		texts[i] = text
	}
	return texts, nil
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}
