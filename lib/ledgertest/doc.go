// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledgertest provides test doubles for code that talks to the
// ledger through an [rpc.Transport].
//
// [FakeTransport] decodes each request, records it, and answers from a
// [Handler]. Handlers return a payload, an *envelope.ProtocolError
// (encoded as an error response), or any other error (returned as a
// transport failure).
//
// [ReplayTransport] plays back recorded wire exchanges loaded from a
// JSONC fixture file with [LoadFixtures]. Requests must match the
// recorded bytes exactly, which pins the encoding and not just the
// meaning of each request. Fixture files hold hex strings; whitespace
// inside them is ignored so that long encodings can be split at item
// boundaries, and comments may annotate them.
//
// Helpers that take a testing.TB call Fatalf on failure rather than
// returning errors, since test setup failures are not recoverable.
package ledgertest
