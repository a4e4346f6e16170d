// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. Same logical value always
// produces identical bytes, which is what makes recorded wire
// fixtures comparable byte-for-byte.
var encMode cbor.EncMode

// decMode decodes the leaf items (integers, strings, floats) that the
// value walker hands it. Structure (arrays, maps, tags) is walked by
// this package so that map keys of any kind survive decoding.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Integers beyond the 64-bit CBOR range become bignum tags 2/3;
	// anything smaller is written as a plain integer.
	encOptions.BigIntConvert = cbor.BigIntConvertShortest
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels: maxDepth,
		UTF8:            cbor.UTF8RejectInvalid,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding. Values
// of this package's Value types encode through their MarshalCBOR
// methods.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for the
// entire contents of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// Describe renders a Value in CBOR diagnostic notation. Intended for
// log lines and test failure messages; encoding failures are rendered
// inline rather than returned.
func Describe(v Value) string {
	data, err := Encode(v)
	if err != nil {
		return "<unencodable: " + err.Error() + ">"
	}
	notation, err := Diagnose(data)
	if err != nil {
		return "<undiagnosable: " + err.Error() + ">"
	}
	return notation
}
