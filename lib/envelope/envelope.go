// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// ResultField is the response field holding either the encoded
// payload or the error record.
const ResultField uint64 = 4

const (
	errorCodeField      uint64 = 0
	errorMessageField   uint64 = 1
	errorArgumentsField uint64 = 2
)

// ProtocolError is a failure reported by the ledger service. Code is
// opaque to this module; Message is the service's text, verbatim.
type ProtocolError struct {
	Code    int64
	Message string
	// Arguments holds the named values the service supplied for
	// placeholders in Message. Nil when the service sent none.
	Arguments map[string]string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ledger error %d: %s", e.Code, e.Message)
}

// Formatted returns Message with each "{name}" placeholder replaced by
// the matching argument. Placeholders without an argument are left in
// place.
func (e *ProtocolError) Formatted() string {
	if len(e.Arguments) == 0 {
		return e.Message
	}
	replacements := make([]string, 0, 2*len(e.Arguments))
	for name, value := range e.Arguments {
		replacements = append(replacements, "{"+name+"}", value)
	}
	return strings.NewReplacer(replacements...).Replace(e.Message)
}

// BuildRequest encodes a call to method with args.
func BuildRequest(method string, args codec.Record) ([]byte, error) {
	if method == "" {
		return nil, errors.New("building request: method name is empty")
	}
	data, err := codec.Encode(codec.Array{codec.Text(method), args})
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	return data, nil
}

// ParseRequest decodes a request produced by BuildRequest. Null
// arguments decode as an empty record.
func ParseRequest(data []byte) (string, codec.Record, error) {
	decoded, err := codec.Decode(data)
	if err != nil {
		return "", codec.Record{}, err
	}
	items, ok := decoded.(codec.Array)
	if !ok || len(items) != 2 {
		return "", codec.Record{}, &codec.MalformedEncodingError{Offset: 0, Reason: "request is not a [method, arguments] pair"}
	}
	method, err := codec.AsText(items[0])
	if err != nil || method == "" {
		return "", codec.Record{}, &codec.MalformedEncodingError{Offset: 0, Reason: "request method is not a non-empty text string", Err: err}
	}
	switch args := items[1].(type) {
	case codec.Record:
		return method, args, nil
	case codec.Null:
		return method, codec.NewRecord(), nil
	}
	return "", codec.Record{}, &codec.MalformedEncodingError{Offset: 0, Reason: "request arguments are not a record"}
}

// ParseResponse decodes a response into its success payload, or
// returns *ProtocolError when the result slot holds an error record.
// Malformed input, including a malformed error record, fails with
// *codec.MalformedEncodingError.
func ParseResponse(data []byte) (codec.Record, error) {
	decoded, err := codec.Decode(data)
	if err != nil {
		return codec.Record{}, err
	}

	var response codec.Record
	switch value := decoded.(type) {
	case codec.Null:
		return codec.NewRecord(), nil
	case codec.Record:
		response = value
	default:
		return codec.Record{}, &codec.MalformedEncodingError{Offset: 0, Reason: fmt.Sprintf("response is %s, not a record", value.Kind())}
	}

	result, ok := response.Get(ResultField)
	if !ok {
		return response, nil
	}

	switch result := result.(type) {
	case codec.Record:
		return codec.Record{}, decodeError(result)
	case codec.Map:
		return codec.Record{}, &codec.MalformedEncodingError{Offset: -1, Reason: "error record has non-integer keys"}
	case codec.Bytes:
		payload, err := codec.DecodeRecord(result)
		if err != nil {
			return codec.Record{}, fmt.Errorf("decoding response payload: %w", err)
		}
		return payload, nil
	default:
		return codec.Record{}, &codec.MalformedEncodingError{Offset: -1, Reason: fmt.Sprintf("result field is %s", result.Kind())}
	}
}

// decodeError builds the ProtocolError for an error record, or a
// malformed-encoding error when the record itself is unusable.
func decodeError(record codec.Record) error {
	code, err := codec.Require(record, errorCodeField, codec.AsInt64)
	if err != nil {
		return &codec.MalformedEncodingError{Offset: -1, Reason: "error record code", Err: err}
	}
	message, err := codec.Require(record, errorMessageField, codec.AsText)
	if err != nil {
		return &codec.MalformedEncodingError{Offset: -1, Reason: "error record message", Err: err}
	}
	arguments, err := codec.Lookup(record, errorArgumentsField, decodeArguments)
	if err != nil {
		return &codec.MalformedEncodingError{Offset: -1, Reason: "error record arguments", Err: err}
	}
	return &ProtocolError{Code: code, Message: message, Arguments: arguments.Value}
}

func decodeArguments(v codec.Value) (map[string]string, error) {
	entries, err := codec.AsMap(v)
	if err != nil {
		return nil, err
	}
	arguments := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, err := codec.AsText(entry.Key)
		if err != nil {
			return nil, fmt.Errorf("argument name: %w", err)
		}
		value, err := codec.AsText(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", name, err)
		}
		arguments[name] = value
	}
	return arguments, nil
}

// EncodeResponse encodes a success response carrying payload in the
// byte-string form of the result slot.
func EncodeResponse(payload codec.Record) ([]byte, error) {
	inner, err := codec.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding response payload: %w", err)
	}
	return codec.Encode(codec.NewRecord().Set(ResultField, codec.Bytes(inner)))
}

// EncodeErrorResponse encodes a failure response.
func EncodeErrorResponse(protocolError *ProtocolError) ([]byte, error) {
	errorRecord := codec.NewRecord().
		Set(errorCodeField, codec.NewInt(protocolError.Code)).
		Set(errorMessageField, codec.Text(protocolError.Message))
	if len(protocolError.Arguments) > 0 {
		names := make([]string, 0, len(protocolError.Arguments))
		for name := range protocolError.Arguments {
			names = append(names, name)
		}
		sort.Strings(names)
		arguments := make(codec.Map, 0, len(names))
		for _, name := range names {
			arguments = append(arguments, codec.MapEntry{Key: codec.Text(name), Value: codec.Text(protocolError.Arguments[name])})
		}
		errorRecord = errorRecord.Set(errorArgumentsField, arguments)
	}
	return codec.Encode(codec.NewRecord().Set(ResultField, errorRecord))
}
