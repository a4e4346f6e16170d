// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/envelope"
)

// Client implements Caller over a Transport. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger
}

// NewClient returns a client sending through transport. A nil logger
// discards log output.
func NewClient(transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		transport: transport,
		logger:    logger,
	}
}

// Call encodes method and args, sends them through the transport and
// parses the response.
//
// A remote failure is returned as *envelope.ProtocolError without
// wrapping. Encoding, transport and decoding failures are wrapped with
// the method name; a response that cannot be parsed still matches
// *codec.MalformedEncodingError through errors.As.
func (c *Client) Call(ctx context.Context, method string, args codec.Record, options ...Option) (codec.Record, error) {
	request, err := envelope.BuildRequest(method, args)
	if err != nil {
		return codec.Record{}, err
	}

	start := time.Now()
	response, err := c.transport.RoundTrip(ctx, request, Collect(options...))
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug("ledger call failed",
			"method", method,
			"elapsed", elapsed,
			"error", err,
		)
		return codec.Record{}, fmt.Errorf("calling %s: %w", method, err)
	}

	payload, err := envelope.ParseResponse(response)
	if err != nil {
		var protocolErr *envelope.ProtocolError
		if errors.As(err, &protocolErr) {
			c.logger.Debug("ledger call returned error",
				"method", method,
				"elapsed", elapsed,
				"code", protocolErr.Code,
				"message", protocolErr.Message,
			)
			return codec.Record{}, protocolErr
		}
		c.logger.Debug("ledger response malformed",
			"method", method,
			"elapsed", elapsed,
			"response_bytes", len(response),
			"error", err,
		)
		return codec.Record{}, fmt.Errorf("decoding %s response: %w", method, err)
	}

	c.logger.Debug("ledger call",
		"method", method,
		"elapsed", elapsed,
		"fields", payload.Len(),
	)
	return payload, nil
}
