// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/binary"
	"math/big"
)

// maxDepth bounds nesting of arrays, maps and tags. It matches the
// decoder's default so that anything Wellformed accepts, the walker
// accepts too.
const maxDepth = 32

// CBOR major types.
const (
	majorUnsigned = 0
	majorNegative = 1
	majorBytes    = 2
	majorText     = 3
	majorArray    = 4
	majorMap      = 5
	majorTag      = 6
	majorSimple   = 7
)

const (
	tagPositiveBignum = 2
	tagNegativeBignum = 3

	breakByte = 0xff
)

// Decode parses exactly one encoded value from data. Truncated input,
// trailing bytes, duplicate map keys and simple values outside
// false/true/null/undefined fail with *MalformedEncodingError.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, malformed(0, "empty input")
	}
	if err := decMode.Wellformed(data); err != nil {
		return nil, &MalformedEncodingError{Offset: -1, Err: err}
	}

	walker := decoder{data: data}
	v, err := walker.value(0)
	if err != nil {
		return nil, err
	}
	if walker.offset != len(data) {
		return nil, malformed(walker.offset, "%d trailing bytes", len(data)-walker.offset)
	}
	return v, nil
}

// DecodeRecord decodes data and requires the result to be a Record.
// A top-level null decodes to an empty record.
func DecodeRecord(data []byte) (Record, error) {
	v, err := Decode(data)
	if err != nil {
		return Record{}, err
	}
	switch r := v.(type) {
	case Record:
		return r, nil
	case Null:
		return NewRecord(), nil
	}
	return Record{}, &MalformedEncodingError{Offset: 0, Reason: "expected a record", Err: &KindError{Want: KindRecord, Got: v.Kind()}}
}

// decoder walks the structural items (arrays, maps, tags) itself and
// delegates leaf items to the CBOR library through UnmarshalFirst. The
// library has no token-level API, and decoding straight into Go maps
// would reject keys such as tagged byte strings.
type decoder struct {
	data   []byte
	offset int
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > maxDepth {
		return nil, malformed(d.offset, "nesting deeper than %d", maxDepth)
	}
	if d.offset >= len(d.data) {
		return nil, malformed(d.offset, "unexpected end of input")
	}

	initial := d.data[d.offset]
	switch initial >> 5 {
	case majorUnsigned, majorNegative:
		var n big.Int
		if err := d.leaf(&n); err != nil {
			return nil, err
		}
		return Int{n: &n}, nil

	case majorBytes:
		var b []byte
		if err := d.leaf(&b); err != nil {
			return nil, err
		}
		if b == nil {
			b = []byte{}
		}
		return Bytes(b), nil

	case majorText:
		var s string
		if err := d.leaf(&s); err != nil {
			return nil, err
		}
		return Text(s), nil

	case majorArray:
		return d.array(depth)

	case majorMap:
		return d.mapValue(depth)

	case majorTag:
		return d.tagged(depth)

	default:
		return d.simple()
	}
}

// leaf decodes one complete item at the current offset into target.
func (d *decoder) leaf(target any) error {
	start := d.offset
	rest, err := decMode.UnmarshalFirst(d.data[start:], target)
	if err != nil {
		return &MalformedEncodingError{Offset: start, Err: err}
	}
	d.offset = len(d.data) - len(rest)
	return nil
}

// head reads an initial byte and its argument. For indefinite-length
// items the argument is zero and indefinite is true.
func (d *decoder) head() (major byte, argument uint64, indefinite bool, err error) {
	start := d.offset
	if start >= len(d.data) {
		return 0, 0, false, malformed(start, "unexpected end of input")
	}
	initial := d.data[start]
	major = initial >> 5
	info := initial & 0x1f
	d.offset++

	var width int
	switch {
	case info < 24:
		return major, uint64(info), false, nil
	case info == 24:
		width = 1
	case info == 25:
		width = 2
	case info == 26:
		width = 4
	case info == 27:
		width = 8
	case info == 31:
		return major, 0, true, nil
	default:
		return 0, 0, false, malformed(start, "reserved additional information %d", info)
	}

	if d.offset+width > len(d.data) {
		return 0, 0, false, malformed(start, "truncated item head")
	}
	field := d.data[d.offset : d.offset+width]
	d.offset += width
	switch width {
	case 1:
		argument = uint64(field[0])
	case 2:
		argument = uint64(binary.BigEndian.Uint16(field))
	case 4:
		argument = uint64(binary.BigEndian.Uint32(field))
	default:
		argument = binary.BigEndian.Uint64(field)
	}
	return major, argument, false, nil
}

// atBreak consumes a break byte if one is next.
func (d *decoder) atBreak() (bool, error) {
	if d.offset >= len(d.data) {
		return false, malformed(d.offset, "missing break in indefinite-length item")
	}
	if d.data[d.offset] == breakByte {
		d.offset++
		return true, nil
	}
	return false, nil
}

// capacity bounds a preallocation by what the remaining input could
// possibly hold, one byte per item.
func (d *decoder) capacity(count uint64) int {
	remaining := uint64(len(d.data) - d.offset)
	if count > remaining {
		return int(remaining)
	}
	return int(count)
}

func (d *decoder) array(depth int) (Value, error) {
	_, count, indefinite, err := d.head()
	if err != nil {
		return nil, err
	}

	items := make(Array, 0, d.capacity(count))
	for i := uint64(0); indefinite || i < count; i++ {
		if indefinite {
			done, err := d.atBreak()
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
		}
		item, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (d *decoder) mapValue(depth int) (Value, error) {
	start := d.offset
	_, count, indefinite, err := d.head()
	if err != nil {
		return nil, err
	}

	entries := make(Map, 0, d.capacity(count))
	for i := uint64(0); indefinite || i < count; i++ {
		if indefinite {
			done, err := d.atBreak()
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
		}
		key, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		value, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MapEntry{Key: key, Value: value})
	}

	if record, ok := asRecord(entries); ok {
		if record.Len() != len(entries) {
			return nil, malformed(start, "duplicate record field index")
		}
		return record, nil
	}
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if equalValues(entries[i].Key, entries[j].Key) {
				return nil, malformed(start, "duplicate map key %s", Describe(entries[i].Key))
			}
		}
	}
	return entries, nil
}

// asRecord converts entries to a Record when every key is an unsigned
// integer. An empty map is a Record.
func asRecord(entries Map) (Record, bool) {
	record := Record{fields: make(map[uint64]Value, len(entries))}
	for _, entry := range entries {
		key, ok := entry.Key.(Int)
		if !ok {
			return Record{}, false
		}
		index, ok := key.Uint64()
		if !ok {
			return Record{}, false
		}
		record.fields[index] = entry.Value
	}
	return record, true
}

func (d *decoder) tagged(depth int) (Value, error) {
	start := d.offset
	_, number, _, err := d.head()
	if err != nil {
		return nil, err
	}

	if number == tagPositiveBignum || number == tagNegativeBignum {
		d.offset = start
		var n big.Int
		if err := d.leaf(&n); err != nil {
			return nil, err
		}
		return Int{n: &n}, nil
	}

	content, err := d.value(depth + 1)
	if err != nil {
		return nil, err
	}
	return Tagged{Number: number, Content: content}, nil
}

func (d *decoder) simple() (Value, error) {
	start := d.offset
	switch info := d.data[start] & 0x1f; info {
	case 20:
		d.offset++
		return Bool(false), nil
	case 21:
		d.offset++
		return Bool(true), nil
	case 22, 23:
		d.offset++
		return Null{}, nil
	case 25, 26, 27:
		var f float64
		if err := d.leaf(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		return nil, malformed(start, "unsupported simple value (additional information %d)", info)
	}
}
