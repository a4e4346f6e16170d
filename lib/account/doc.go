// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package account maps the ledger's account and multisig calls onto
// typed Go requests and results.
//
// A [Module] wraps an [rpc.Caller] together with the transaction and
// role tables it encodes against. It keeps no state between calls: in
// particular [Module.MultisigInfo] returns a fresh snapshot of a
// transaction the service owns, and nothing here advances a multisig
// transaction through its lifecycle. The service moves a transaction
// from pending to executed (automatically once enough approvers have
// approved, or on an explicit execute), withdrawn or expired; clients
// observe those states through snapshots only.
//
// Decoding separates load-bearing fields from isolable ones. A bad
// token, submitter or threshold fails the whole call. A bad approver
// entry, memo, data, transaction or state is appended to the result's
// Problems and left out, so the rest of the snapshot stays usable.
package account
