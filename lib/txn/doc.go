// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package txn maps ledger transactions to and from their wire records.
//
// A submitted transaction is the record {0: index, 1: params}, where
// index identifies the transaction kind and params is the kind's own
// argument record. Kinds and indices are related by a [Table], which
// is built once and never modified; callers that need extra kinds
// build their own table with [NewTable] and pass it in.
//
// Only the send kind has a typed parameter codec ([SendParams]).
// Other kinds registered in a table travel as raw records.
package txn
