// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity converts ledger addresses to and from the tagged
// identity values that reference parties on the wire.
//
// An [Address] is an immutable byte string whose first byte says what
// kind of party it names: the anonymous identity, a public key hash,
// or a subresource of a public key hash. Every party field in a
// request or response (account, submitter, approver, from, to, token
// symbol) is carried as tag [IdentityTag] wrapping those bytes, and
// every one of them goes through [AddressToIdentity] and
// [IdentityToAddress]. Decoding rejects a wrong tag with
// [*UnexpectedTagError] and bad bytes with [*MalformedAddressError];
// it never returns an empty Address in place of an error.
//
// [Interpret] classifies any tagged value as an [Identity], a
// [Timestamp], or an [Unknown] that keeps the original tag and content
// so it can be written back unchanged.
package identity
