// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledgertest

import (
	"fmt"
	"sync/atomic"
)

var tokenCounter atomic.Uint64

// UniqueToken returns a distinct multisig token of the form
// "prefix-N", for handlers that hand out tokens and tests that must
// tell them apart.
//
//	token := ledgertest.UniqueToken("send") // "send-1", "send-2", ...
func UniqueToken(prefix string) []byte {
	return []byte(fmt.Sprintf("%s-%d", prefix, tokenCounter.Add(1)))
}
