// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rpc is the seam between the ledger call layer and whatever
// carries bytes to the ledger service.
//
// A [Transport] moves one encoded request to the service and returns
// the encoded response. [Client] implements [Caller] on top of a
// Transport: it builds the request envelope, hands it to the
// transport, and classifies the response through package envelope.
// Remote failures come back as *envelope.ProtocolError, unwrapped, so
// callers can match them with errors.As without digging.
//
// The package does not retry, time out or reconnect. Cancellation is
// whatever the transport does with the context it is given.
package rpc
