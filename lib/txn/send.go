// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package txn

import (
	"fmt"
	"math/big"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/identity"
)

// Send parameter record fields.
const (
	sendFromField   uint64 = 0
	sendToField     uint64 = 1
	sendAmountField uint64 = 2
	sendSymbolField uint64 = 3
)

// SendParams are the parameters of a send transaction.
type SendParams struct {
	From identity.Address
	To   identity.Address
	// Amount is in the token's smallest unit and must not be negative.
	Amount *big.Int
	// Symbol is the address of the token being moved.
	Symbol identity.Address
}

// BuildSendParams encodes p as a send parameter record. Amounts above
// the 64-bit range are written as bignums.
func BuildSendParams(p SendParams) (codec.Record, error) {
	for _, party := range []struct {
		name    string
		address identity.Address
	}{
		{"from", p.From},
		{"to", p.To},
		{"symbol", p.Symbol},
	} {
		if party.address.IsZero() {
			return codec.Record{}, fmt.Errorf("send %s address is not set", party.name)
		}
	}
	if p.Amount == nil {
		return codec.Record{}, fmt.Errorf("send amount is not set")
	}
	if p.Amount.Sign() < 0 {
		return codec.Record{}, fmt.Errorf("send amount: %w", &codec.RangeError{Value: p.Amount.String(), Type: "amount"})
	}

	return codec.NewRecord().
		Set(sendFromField, identity.AddressToIdentity(p.From)).
		Set(sendToField, identity.AddressToIdentity(p.To)).
		Set(sendAmountField, codec.NewBigInt(p.Amount)).
		Set(sendSymbolField, identity.AddressToIdentity(p.Symbol)), nil
}

// DecodeSendParams reads a send parameter record. Every field is
// required.
func DecodeSendParams(r codec.Record) (SendParams, error) {
	from, err := codec.Require(r, sendFromField, identity.IdentityToAddress)
	if err != nil {
		return SendParams{}, fmt.Errorf("send from: %w", err)
	}
	to, err := codec.Require(r, sendToField, identity.IdentityToAddress)
	if err != nil {
		return SendParams{}, fmt.Errorf("send to: %w", err)
	}
	amount, err := codec.Require(r, sendAmountField, decodeAmount)
	if err != nil {
		return SendParams{}, fmt.Errorf("send amount: %w", err)
	}
	symbol, err := codec.Require(r, sendSymbolField, identity.IdentityToAddress)
	if err != nil {
		return SendParams{}, fmt.Errorf("send symbol: %w", err)
	}
	return SendParams{From: from, To: to, Amount: amount, Symbol: symbol}, nil
}

// decodeAmount accepts an integer (including a bignum) or a byte
// string holding the big-endian magnitude. Responses use either form.
func decodeAmount(v codec.Value) (*big.Int, error) {
	switch amount := v.(type) {
	case codec.Int:
		if amount.Sign() < 0 {
			return nil, &codec.RangeError{Value: amount.String(), Type: "amount"}
		}
		return amount.Big(), nil
	case codec.Bytes:
		return new(big.Int).SetBytes(amount), nil
	case nil:
		return nil, &codec.KindError{Want: codec.KindInt, Got: codec.KindNull}
	default:
		return nil, &codec.KindError{Want: codec.KindInt, Got: amount.Kind()}
	}
}
