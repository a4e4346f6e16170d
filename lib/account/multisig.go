// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"fmt"
	"time"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/identity"
	"github.com/bureau-foundation/ledgerwire/lib/rpc"
	"github.com/bureau-foundation/ledgerwire/lib/txn"
)

// Submit argument fields.
const (
	submitFromField        uint64 = 0
	submitLegacyMemoField  uint64 = 1
	submitTransactionField uint64 = 2
	submitThresholdField   uint64 = 3
	submitExpireField      uint64 = 4
	submitAutoExecuteField uint64 = 5
	submitDataField        uint64 = 6
	submitMemoField        uint64 = 7

	submittedTokenField uint64 = 0
	tokenField          uint64 = 0
)

// Multisig info result fields.
const (
	infoLegacyMemoField  uint64 = 0
	infoTransactionField uint64 = 1
	infoSubmitterField   uint64 = 2
	infoApproversField   uint64 = 3
	infoThresholdField   uint64 = 4
	infoAutoExecuteField uint64 = 5
	infoExpireField      uint64 = 6
	infoDataField        uint64 = 7
	infoStateField       uint64 = 8
	infoMemoField        uint64 = 9

	approverApprovedField uint64 = 0
)

// Multisig defaults argument fields.
const (
	defaultsThresholdField   uint64 = 1
	defaultsExpireField      uint64 = 2
	defaultsAutoExecuteField uint64 = 3
)

// State is the lifecycle state of a multisig transaction as reported
// by the service. Values outside the named constants are kept as
// received.
type State uint64

const (
	StatePending State = iota
	StateExecutedAutomatically
	StateExecutedManually
	StateWithdrawn
	StateExpired
)

// Known reports whether s is one of the named states.
func (s State) Known() bool { return s <= StateExpired }

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExecutedAutomatically:
		return "executedAutomatically"
	case StateExecutedManually:
		return "executedManually"
	case StateWithdrawn:
		return "withdrawn"
	case StateExpired:
		return "expired"
	}
	return fmt.Sprintf("state(%d)", uint64(s))
}

// SubmitRequest describes a transaction to submit for multisig
// approval. Unset optional fields are left out of the request so the
// account's defaults apply.
type SubmitRequest struct {
	From identity.Address
	Kind txn.Kind
	// Params is the encoded parameter record for Kind.
	Params               codec.Record
	Threshold            codec.Field[uint64]
	ExpireInSecs         codec.Field[uint64]
	ExecuteAutomatically codec.Field[bool]
	// Data is attached verbatim when non-nil.
	Data codec.Value
	// Memo is sent when non-nil, even if empty.
	Memo       []string
	LegacyMemo codec.Field[string]
}

// SendSubmission returns a SubmitRequest for a send from params.From.
func SendSubmission(params txn.SendParams) (SubmitRequest, error) {
	encoded, err := txn.BuildSendParams(params)
	if err != nil {
		return SubmitRequest{}, err
	}
	return SubmitRequest{From: params.From, Kind: txn.Send, Params: encoded}, nil
}

// MultisigSubmit submits a transaction and returns the token that
// identifies it in later multisig calls.
func (m *Module) MultisigSubmit(ctx context.Context, request SubmitRequest, options ...rpc.Option) ([]byte, error) {
	args, err := m.submitArgs(request)
	if err != nil {
		return nil, err
	}
	payload, err := m.caller.Call(ctx, methodMultisigSubmit, args, options...)
	if err != nil {
		return nil, err
	}
	token, err := codec.Require(payload, submittedTokenField, codec.AsBytes)
	if err != nil {
		return nil, fmt.Errorf("decoding %s response: token: %w", methodMultisigSubmit, err)
	}
	return token, nil
}

func (m *Module) submitArgs(request SubmitRequest) (codec.Record, error) {
	if request.From.IsZero() {
		return codec.Record{}, fmt.Errorf("multisig submission has no sender")
	}
	transaction, err := m.transactions.BuildSubmittedTxn(request.Kind, request.Params)
	if err != nil {
		return codec.Record{}, err
	}

	args := codec.NewRecord().
		Set(submitFromField, identity.AddressToIdentity(request.From)).
		Set(submitTransactionField, transaction)
	if memo, ok := request.LegacyMemo.Get(); ok {
		args = args.Set(submitLegacyMemoField, codec.Text(memo))
	}
	if threshold, ok := request.Threshold.Get(); ok {
		if threshold == 0 {
			return codec.Record{}, fmt.Errorf("multisig threshold must be at least 1")
		}
		args = args.Set(submitThresholdField, codec.NewUint(threshold))
	}
	if expire, ok := request.ExpireInSecs.Get(); ok {
		args = args.Set(submitExpireField, codec.NewUint(expire))
	}
	if execute, ok := request.ExecuteAutomatically.Get(); ok {
		args = args.Set(submitAutoExecuteField, codec.Bool(execute))
	}
	if request.Data != nil {
		args = args.Set(submitDataField, request.Data)
	}
	if request.Memo != nil {
		memo := make(codec.Array, len(request.Memo))
		for i, line := range request.Memo {
			memo[i] = codec.Text(line)
		}
		args = args.Set(submitMemoField, memo)
	}
	return args, nil
}

// MultisigTransaction is a point-in-time snapshot of a multisig
// transaction. It is never merged with an earlier snapshot.
type MultisigTransaction struct {
	Token       []byte
	LegacyMemo  codec.Field[string]
	Transaction codec.Field[txn.Transaction]
	Submitter   identity.Address
	// Approvers maps each approver to whether it has approved.
	Approvers            map[identity.Address]bool
	Threshold            uint64
	ExecuteAutomatically codec.Field[bool]
	ExpireAt             codec.Field[time.Time]
	// Data is the attached data as received, nil when absent.
	Data  codec.Value
	State codec.Field[State]
	Memo  codec.Field[[]string]
	// Problems lists isolable fields and entries that could not be
	// decoded. An entry reported here is missing from the fields
	// above.
	Problems []error
}

// Approvals returns the number of approvers that have approved.
func (t *MultisigTransaction) Approvals() int {
	count := 0
	for _, approved := range t.Approvers {
		if approved {
			count++
		}
	}
	return count
}

// ExecuteReady reports whether the snapshot shows at least Threshold
// approvals on a transaction that has not reached a terminal state. An
// absent, null or unrecognized state does not block readiness; only a
// known state other than pending does. It says nothing about what the
// service will do next.
func (t *MultisigTransaction) ExecuteReady() bool {
	if state, ok := t.State.Get(); ok && state.Known() && state != StatePending {
		return false
	}
	return uint64(t.Approvals()) >= t.Threshold
}

// MultisigInfo fetches a snapshot of the transaction identified by
// token.
func (m *Module) MultisigInfo(ctx context.Context, token []byte, options ...rpc.Option) (*MultisigTransaction, error) {
	payload, err := m.caller.Call(ctx, methodMultisigInfo, tokenArgs(token), options...)
	if err != nil {
		return nil, err
	}
	transaction, err := decodeMultisigTransaction(m.transactions, token, payload)
	if err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", methodMultisigInfo, err)
	}
	m.logProblems(methodMultisigInfo, transaction.Problems)
	return transaction, nil
}

func decodeMultisigTransaction(transactions *txn.Table, token []byte, payload codec.Record) (*MultisigTransaction, error) {
	submitter, err := codec.Require(payload, infoSubmitterField, identity.IdentityToAddress)
	if err != nil {
		return nil, fmt.Errorf("submitter: %w", err)
	}
	threshold, err := codec.Require(payload, infoThresholdField, codec.AsUint64)
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	if threshold == 0 {
		return nil, fmt.Errorf("threshold: %w", &codec.RangeError{Value: "0", Type: "threshold"})
	}

	snapshot := &MultisigTransaction{
		Token:     append([]byte(nil), token...),
		Submitter: submitter,
		Threshold: threshold,
		Approvers: make(map[identity.Address]bool),
	}
	problem := func(format string, args ...any) {
		snapshot.Problems = append(snapshot.Problems, fmt.Errorf(format, args...))
	}

	if memo, err := codec.Lookup(payload, infoLegacyMemoField, codec.AsText); err != nil {
		problem("legacy memo: %w", err)
	} else {
		snapshot.LegacyMemo = memo
	}

	if raw, ok := payload.Get(infoTransactionField); ok && raw.Kind() != codec.KindNull {
		decoded, err := transactions.DecodeSubmittedTxn(raw)
		if err != nil {
			problem("transaction: %w", err)
		}
		// An unknown kind or undecodable parameters still carry the
		// raw index and parameters.
		if len(decoded.Index) > 0 {
			snapshot.Transaction = codec.Some(decoded)
		}
	}

	if raw, ok := payload.Get(infoApproversField); ok && raw.Kind() != codec.KindNull {
		entries, err := codec.AsMap(raw)
		if err != nil {
			problem("approvers: %w", err)
		}
		for _, entry := range entries {
			approver, err := identity.IdentityToAddress(entry.Key)
			if err != nil {
				problem("approver %s: %w", codec.Describe(entry.Key), err)
				continue
			}
			status, err := codec.AsRecord(entry.Value)
			if err != nil {
				problem("approver %s status: %w", approver, err)
				continue
			}
			approved, err := codec.Require(status, approverApprovedField, codec.AsBool)
			if err != nil {
				problem("approver %s status: %w", approver, err)
				continue
			}
			snapshot.Approvers[approver] = approved
		}
	}

	if execute, err := codec.Lookup(payload, infoAutoExecuteField, codec.AsBool); err != nil {
		problem("execute automatically: %w", err)
	} else {
		snapshot.ExecuteAutomatically = execute
	}

	if expire, err := codec.Lookup(payload, infoExpireField, identity.ValueToTimestamp); err != nil {
		problem("expiry: %w", err)
	} else {
		snapshot.ExpireAt = expire
	}

	if data, ok := payload.Get(infoDataField); ok && data.Kind() != codec.KindNull {
		snapshot.Data = data
	}

	if state, err := codec.Lookup(payload, infoStateField, codec.AsUint64); err != nil {
		problem("state: %w", err)
	} else if raw, ok := state.Get(); ok {
		snapshot.State = codec.Some(State(raw))
		if !State(raw).Known() {
			problem("state: %w", &codec.UnknownEnumeratorError{Enumeration: "multisig state", Raw: codec.NewUint(raw)})
		}
	}

	if memo, err := codec.Lookup(payload, infoMemoField, codec.TextArray); err != nil {
		problem("memo: %w", err)
	} else {
		snapshot.Memo = memo
	}

	return snapshot, nil
}

// MultisigApprove approves the transaction identified by token.
func (m *Module) MultisigApprove(ctx context.Context, token []byte, options ...rpc.Option) error {
	return m.mutate(ctx, methodMultisigApprove, tokenArgs(token), options)
}

// MultisigRevoke withdraws the caller's approval.
func (m *Module) MultisigRevoke(ctx context.Context, token []byte, options ...rpc.Option) error {
	return m.mutate(ctx, methodMultisigRevoke, tokenArgs(token), options)
}

// MultisigExecute executes a transaction that has reached its
// threshold.
func (m *Module) MultisigExecute(ctx context.Context, token []byte, options ...rpc.Option) error {
	return m.mutate(ctx, methodMultisigExecute, tokenArgs(token), options)
}

// MultisigWithdraw withdraws a pending transaction.
func (m *Module) MultisigWithdraw(ctx context.Context, token []byte, options ...rpc.Option) error {
	return m.mutate(ctx, methodMultisigWithdraw, tokenArgs(token), options)
}

func tokenArgs(token []byte) codec.Record {
	return codec.NewRecord().Set(tokenField, codec.Bytes(append([]byte{}, token...)))
}

// MultisigDefaults are the per-account defaults applied to
// submissions that leave the corresponding field unset.
type MultisigDefaults struct {
	Account              identity.Address
	Threshold            codec.Field[uint64]
	ExpireInSecs         codec.Field[uint64]
	ExecuteAutomatically codec.Field[bool]
}

// MultisigSetDefaults sets the multisig defaults of an account.
func (m *Module) MultisigSetDefaults(ctx context.Context, defaults MultisigDefaults, options ...rpc.Option) error {
	args, err := accountArgs(defaults.Account)
	if err != nil {
		return err
	}
	if threshold, ok := defaults.Threshold.Get(); ok {
		if threshold == 0 {
			return fmt.Errorf("multisig threshold must be at least 1")
		}
		args = args.Set(defaultsThresholdField, codec.NewUint(threshold))
	}
	if expire, ok := defaults.ExpireInSecs.Get(); ok {
		args = args.Set(defaultsExpireField, codec.NewUint(expire))
	}
	if execute, ok := defaults.ExecuteAutomatically.Get(); ok {
		args = args.Set(defaultsAutoExecuteField, codec.Bool(execute))
	}
	return m.mutate(ctx, methodMultisigSetDefaults, args, options)
}
