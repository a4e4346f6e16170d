// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package txn

import (
	"fmt"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// Submitted transaction record fields.
const (
	submittedIndexField  uint64 = 0
	submittedParamsField uint64 = 1
)

// UnsupportedTransactionKindError reports a kind the table has no
// index for. Nothing is encoded when it is returned.
type UnsupportedTransactionKindError struct {
	Kind Kind
}

func (e *UnsupportedTransactionKindError) Error() string {
	return fmt.Sprintf("unsupported transaction kind %q", e.Kind)
}

// Transaction is a decoded submitted transaction.
type Transaction struct {
	// Kind is empty when Index is not in the table.
	Kind  Kind
	Index Index
	// Params is the parameter record as received.
	Params codec.Record
	// Send is set when Kind is Send and the parameters decoded.
	Send *SendParams
}

// BuildSubmittedTxn encodes a transaction of kind with an already
// encoded parameter record.
func (t *Table) BuildSubmittedTxn(kind Kind, params codec.Record) (codec.Record, error) {
	index, ok := t.IndexOf(kind)
	if !ok {
		return codec.Record{}, &UnsupportedTransactionKindError{Kind: kind}
	}
	return codec.NewRecord().
		Set(submittedIndexField, index.Value()).
		Set(submittedParamsField, params), nil
}

// BuildSend encodes a send transaction.
func (t *Table) BuildSend(params SendParams) (codec.Record, error) {
	if _, ok := t.IndexOf(Send); !ok {
		return codec.Record{}, &UnsupportedTransactionKindError{Kind: Send}
	}
	encoded, err := BuildSendParams(params)
	if err != nil {
		return codec.Record{}, err
	}
	return t.BuildSubmittedTxn(Send, encoded)
}

// DecodeSubmittedTxn reads a submitted transaction record.
//
// A record without a usable index or parameter record is an error and
// the returned Transaction is empty. An index missing from the table,
// or send parameters that do not decode, still return the raw index
// and parameters along with the error: *codec.UnknownEnumeratorError
// for the index, the parameter error otherwise.
func (t *Table) DecodeSubmittedTxn(v codec.Value) (Transaction, error) {
	record, err := codec.AsRecord(v)
	if err != nil {
		return Transaction{}, fmt.Errorf("submitted transaction: %w", err)
	}
	index, err := codec.Require(record, submittedIndexField, IndexFromValue)
	if err != nil {
		return Transaction{}, err
	}
	params, err := codec.Require(record, submittedParamsField, codec.AsRecord)
	if err != nil {
		return Transaction{}, fmt.Errorf("transaction parameters: %w", err)
	}

	transaction := Transaction{Index: index, Params: params}
	kind, ok := t.KindOf(index)
	if !ok {
		return transaction, &codec.UnknownEnumeratorError{Enumeration: "transaction kind", Raw: index.Value()}
	}
	transaction.Kind = kind

	if kind == Send {
		send, err := DecodeSendParams(params)
		if err != nil {
			return transaction, err
		}
		transaction.Send = &send
	}
	return transaction, nil
}
