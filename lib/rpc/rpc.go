// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// Caller issues one ledger method call and returns the success
// payload. A failure reported by the service is returned as
// *envelope.ProtocolError.
type Caller interface {
	Call(ctx context.Context, method string, args codec.Record, options ...Option) (codec.Record, error)
}

// Transport carries an encoded request to the service and returns the
// encoded response. Options are passed through untouched; the
// transport decides what a nonce means.
type Transport interface {
	RoundTrip(ctx context.Context, request []byte, options Options) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, request []byte, options Options) ([]byte, error)

func (f TransportFunc) RoundTrip(ctx context.Context, request []byte, options Options) ([]byte, error) {
	return f(ctx, request, options)
}

// Options are the per-call settings collected from Option values.
type Options struct {
	// Nonce is an opaque value for replay protection. Nil when the
	// caller supplied none.
	Nonce []byte
}

// Option sets a per-call setting.
type Option func(*Options)

// WithNonce attaches a replay-protection nonce to the call.
func WithNonce(nonce []byte) Option {
	return func(o *Options) {
		o.Nonce = nonce
	}
}

// Collect applies options in order and returns the result. Later
// options override earlier ones.
func Collect(options ...Option) Options {
	var collected Options
	for _, option := range options {
		if option != nil {
			option(&collected)
		}
	}
	return collected
}
