// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/envelope"
	"github.com/bureau-foundation/ledgerwire/lib/rpc"
)

// Exchange is one call observed by a FakeTransport.
type Exchange struct {
	Method  string
	Args    codec.Record
	Options rpc.Options
}

// Handler answers a call.
type Handler func(method string, args codec.Record) (codec.Record, error)

// Respond returns a handler that answers every call with payload.
func Respond(payload codec.Record) Handler {
	return func(string, codec.Record) (codec.Record, error) {
		return payload, nil
	}
}

// Fail returns a handler that answers every call with a service error.
func Fail(code int64, message string) Handler {
	return func(string, codec.Record) (codec.Record, error) {
		return codec.Record{}, &envelope.ProtocolError{Code: code, Message: message}
	}
}

// FakeTransport is an rpc.Transport answering from a Handler. It is
// safe for concurrent use.
type FakeTransport struct {
	handler Handler

	mu        sync.Mutex
	exchanges []Exchange
}

// NewFakeTransport returns a transport answering from handler. A nil
// handler answers every call with an empty payload.
func NewFakeTransport(handler Handler) *FakeTransport {
	return &FakeTransport{handler: handler}
}

func (f *FakeTransport) RoundTrip(ctx context.Context, request []byte, options rpc.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	method, args, err := envelope.ParseRequest(request)
	if err != nil {
		return nil, fmt.Errorf("fake transport received an invalid request: %w", err)
	}

	f.mu.Lock()
	f.exchanges = append(f.exchanges, Exchange{Method: method, Args: args, Options: options})
	f.mu.Unlock()

	if f.handler == nil {
		return envelope.EncodeResponse(codec.NewRecord())
	}
	payload, err := f.handler(method, args)
	if err != nil {
		var protocolErr *envelope.ProtocolError
		if errors.As(err, &protocolErr) {
			return envelope.EncodeErrorResponse(protocolErr)
		}
		return nil, err
	}
	return envelope.EncodeResponse(payload)
}

// Exchanges returns the calls observed so far, oldest first.
func (f *FakeTransport) Exchanges() []Exchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Exchange(nil), f.exchanges...)
}

// Only returns the single call observed, failing the test if there
// were none or several.
func (f *FakeTransport) Only(t testing.TB) Exchange {
	t.Helper()
	exchanges := f.Exchanges()
	if len(exchanges) != 1 {
		methods := make([]string, len(exchanges))
		for i, exchange := range exchanges {
			methods[i] = exchange.Method
		}
		t.Fatalf("expected exactly one call, got %d: %v", len(exchanges), methods)
	}
	return exchanges[0]
}

// NewClient returns an rpc.Client over a FakeTransport answering from
// handler, logging through t.
func NewClient(t testing.TB, handler Handler) (*rpc.Client, *FakeTransport) {
	t.Helper()
	transport := NewFakeTransport(handler)
	return rpc.NewClient(transport, Logger(t)), transport
}

// Logger returns a debug-level logger writing to t.Log.
func Logger(t testing.TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
