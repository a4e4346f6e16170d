// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope frames ledger calls on the wire.
//
// A request is a two-element array: the method name and the argument
// [codec.Record]. A response is a single Record in which field 4 is the
// result slot, and its presence and shape are the only success/failure
// signal:
//
//   - field 4 absent: success, and the whole record is the payload;
//   - field 4 a map: failure, decoded as [*ProtocolError] (code,
//     message, optional arguments); every other field is ignored;
//   - field 4 a byte string: success, and the payload is the record
//     encoded inside it. This form lets payloads that use field 4
//     themselves, such as multisig info, travel unambiguously;
//   - anything else: malformed.
//
// A top-level null response, or an encoded null payload, is an empty
// success payload: "no content" is distinct from an error.
//
// There is no lower-level status code and no retry policy here; a
// ProtocolError is handed to the caller as is.
package envelope
