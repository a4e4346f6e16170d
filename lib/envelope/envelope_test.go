// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	data, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		t.Fatalf("decoding hex %q: %v", s, err)
	}
	return data
}

func TestBuildRequestWireBytes(t *testing.T) {
	method := "account.multisigApprove"
	data, err := BuildRequest(method, codec.NewRecord().Set(0, codec.Bytes{}))
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	want := "8277" + hex.EncodeToString([]byte(method)) + "a10040"
	if got := hex.EncodeToString(data); got != want {
		t.Errorf("BuildRequest = %s, want %s", got, want)
	}

	parsedMethod, args, err := ParseRequest(data)
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if parsedMethod != method {
		t.Errorf("method = %q, want %q", parsedMethod, method)
	}
	if !codec.Equal(args, codec.NewRecord().Set(0, codec.Bytes{})) {
		t.Errorf("args = %s", codec.Describe(args))
	}
}

func TestBuildRequestRejectsEmptyMethod(t *testing.T) {
	if _, err := BuildRequest("", codec.NewRecord()); err == nil {
		t.Fatal("BuildRequest accepted an empty method")
	}
}

func TestParseRequestRejects(t *testing.T) {
	for name, data := range map[string]string{
		"not an array":    "a0",
		"one element":     "81 61 61",
		"method not text": "82 01 a0",
		"args not record": "82 61 61 01",
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseRequest(mustHex(t, data)); err == nil {
				t.Fatal("ParseRequest succeeded")
			}
		})
	}
}

func TestParseResponseSuccess(t *testing.T) {
	tests := []struct {
		name string
		data string
		want codec.Record
	}{
		{"null response", "f6", codec.NewRecord()},
		{"empty record", "a0", codec.NewRecord()},
		{"flat payload", "a1 00 40", codec.NewRecord().Set(0, codec.Bytes{})},
		{"nested payload", "a1 04 43 a1 00 01", codec.NewRecord().Set(0, codec.NewInt(1))},
		{"nested null payload", "a1 04 41 f6", codec.NewRecord()},
		{"nested payload using field 4", "a1 04 45 a2 00 01 04 02", codec.NewRecord().Set(0, codec.NewInt(1)).Set(4, codec.NewInt(2))},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := ParseResponse(mustHex(t, test.data))
			if err != nil {
				t.Fatalf("ParseResponse: %v", err)
			}
			if !codec.Equal(payload, test.want) {
				t.Errorf("payload = %s, want %s", codec.Describe(payload), codec.Describe(test.want))
			}
		})
	}
}

func TestParseResponseError(t *testing.T) {
	// {4: {0: -1, 1: "this is an error message"}}
	data := mustHex(t, "a1 04 a2 00 20 01 78 18"+hex.EncodeToString([]byte("this is an error message")))

	payload, err := ParseResponse(data)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("ParseResponse error = %v (payload %s), want *ProtocolError", err, codec.Describe(payload))
	}
	if protocolErr.Code != -1 {
		t.Errorf("code = %d, want -1", protocolErr.Code)
	}
	if protocolErr.Message != "this is an error message" {
		t.Errorf("message = %q", protocolErr.Message)
	}
}

func TestParseResponseErrorTakesPrecedence(t *testing.T) {
	// {0: "payload", 4: {0: 7, 1: "boom"}}
	data := mustHex(t, "a2 00 67 7061796c6f6164 04 a2 00 07 01 64 626f6f6d")

	payload, err := ParseResponse(data)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("ParseResponse error = %v, want *ProtocolError", err)
	}
	if protocolErr.Code != 7 || protocolErr.Message != "boom" {
		t.Errorf("ProtocolError = %+v", protocolErr)
	}
	if payload.Len() != 0 {
		t.Errorf("payload fields leaked alongside the error: %s", codec.Describe(payload))
	}
}

func TestParseResponseMalformed(t *testing.T) {
	tests := map[string]string{
		"not a record":            "82 01 02",
		"integer result field":    "a1 04 01",
		"error without message":   "a1 04 a1 00 01",
		"error with text code":    "a1 04 a2 00 61 31 01 61 78",
		"error with text keys":    "a1 04 a1 61 61 01",
		"payload not a record":    "a1 04 42 82 01",
		"truncated":               "a1 04",
		"bad error argument type": "a1 04 a3 00 01 01 61 78 02 a1 61 6b 01",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseResponse(mustHex(t, data))
			if err == nil {
				t.Fatal("ParseResponse succeeded")
			}
			var protocolErr *ProtocolError
			if errors.As(err, &protocolErr) {
				t.Fatalf("malformed response surfaced as ProtocolError: %v", err)
			}
			var malformedErr *codec.MalformedEncodingError
			if !errors.As(err, &malformedErr) {
				t.Errorf("error %v (%T) is not a *codec.MalformedEncodingError", err, err)
			}
		})
	}
}

func TestEncodeResponseRoundtrip(t *testing.T) {
	payload := codec.NewRecord().
		Set(0, codec.Text("memo")).
		Set(4, codec.NewInt(2)).
		Set(5, codec.Bool(false))

	data, err := EncodeResponse(payload)
	if err != nil {
		t.Fatalf("EncodeResponse: %v", err)
	}
	parsed, err := ParseResponse(data)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !codec.Equal(parsed, payload) {
		t.Errorf("payload = %s, want %s", codec.Describe(parsed), codec.Describe(payload))
	}
}

func TestEncodeErrorResponseRoundtrip(t *testing.T) {
	original := &ProtocolError{
		Code:      -4,
		Message:   "transaction {token} has expired",
		Arguments: map[string]string{"token": "0a0b"},
	}
	data, err := EncodeErrorResponse(original)
	if err != nil {
		t.Fatalf("EncodeErrorResponse: %v", err)
	}

	_, err = ParseResponse(data)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("ParseResponse error = %v, want *ProtocolError", err)
	}
	if protocolErr.Code != original.Code || protocolErr.Message != original.Message {
		t.Errorf("ProtocolError = %+v, want %+v", protocolErr, original)
	}
	if got := protocolErr.Formatted(); got != "transaction 0a0b has expired" {
		t.Errorf("Formatted() = %q", got)
	}
}
