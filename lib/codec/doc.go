// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec implements the tagged binary value model spoken by the
// ledger service, encoded as CBOR (RFC 8949).
//
// A [Value] is one of [Null], [Bool], [Int], [Float], [Bytes], [Text],
// [Array], [Map], [Record] or [Tagged]. [Record] is the numeric-keyed
// map used as the argument and result container of every call; a CBOR
// map whose keys are all unsigned integers always decodes as a Record,
// any other map as a [Map].
//
// Integers are arbitrary precision. Values that fit the 64-bit CBOR
// integer range are written as plain integers and anything larger as
// bignum tags 2/3; both decode to [Int]. Every other tag number decodes
// to [Tagged] and survives a round trip unchanged, whether or not any
// layer above assigns it a meaning.
//
// Encoding uses Core Deterministic Encoding (sorted map keys, shortest
// integers), so equal values always produce identical bytes:
//
//	data, err := codec.Encode(codec.NewRecord().Set(0, codec.Text("m123")))
//	value, err := codec.Decode(data)
//
// Decoding never fills in defaults. Malformed input fails with
// [*MalformedEncodingError], and record accessors ([Lookup], [Require])
// report absent, null and present fields distinctly through [Field].
package codec
