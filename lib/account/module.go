// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/identity"
	"github.com/bureau-foundation/ledgerwire/lib/rpc"
	"github.com/bureau-foundation/ledgerwire/lib/txn"
)

// Method names.
const (
	methodInfo                = "account.info"
	methodCreate              = "account.create"
	methodSetDescription      = "account.setDescription"
	methodAddRoles            = "account.addRoles"
	methodRemoveRoles         = "account.removeRoles"
	methodAddFeatures         = "account.addFeatures"
	methodDisable             = "account.disable"
	methodMultisigSubmit      = "account.multisigSubmitTransaction"
	methodMultisigInfo        = "account.multisigInfo"
	methodMultisigApprove     = "account.multisigApprove"
	methodMultisigRevoke      = "account.multisigRevoke"
	methodMultisigExecute     = "account.multisigExecute"
	methodMultisigWithdraw    = "account.multisigWithdraw"
	methodMultisigSetDefaults = "account.multisigSetDefaults"
)

// Module issues account calls through a Caller. It holds only
// immutable configuration and is safe for concurrent use.
type Module struct {
	caller       rpc.Caller
	transactions *txn.Table
	roles        *RoleTable
	logger       *slog.Logger
}

// New returns a Module. Nil tables are replaced by the defaults; a nil
// logger discards output.
func New(caller rpc.Caller, transactions *txn.Table, roles *RoleTable, logger *slog.Logger) *Module {
	if transactions == nil {
		transactions = txn.DefaultTable()
	}
	if roles == nil {
		roles = DefaultRoleTable()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Module{
		caller:       caller,
		transactions: transactions,
		roles:        roles,
		logger:       logger,
	}
}

// Transactions returns the transaction table the module encodes with.
func (m *Module) Transactions() *txn.Table { return m.transactions }

// Account argument and info result fields.
const (
	accountField            uint64 = 0
	infoDescriptionField    uint64 = 0
	infoRolesField          uint64 = 1
	infoFeaturesField       uint64 = 2
	infoDisabledField       uint64 = 3
	createDescriptionField  uint64 = 0
	createRolesField        uint64 = 1
	createFeaturesField     uint64 = 2
	createdAddressField     uint64 = 0
	descriptionField        uint64 = 1
	rolesField              uint64 = 1
	addFeaturesRolesField   uint64 = 1
	addFeaturesFeatureField uint64 = 2
)

// Info describes an account.
type Info struct {
	Description codec.Field[string]
	Roles       Roles
	Features    []Feature
	Disabled    bool
	// Problems lists fields and entries that could not be decoded and
	// were left out.
	Problems []error
}

// Info fetches the description, roles and features of account.
func (m *Module) Info(ctx context.Context, account identity.Address, options ...rpc.Option) (*Info, error) {
	args, err := accountArgs(account)
	if err != nil {
		return nil, err
	}
	payload, err := m.caller.Call(ctx, methodInfo, args, options...)
	if err != nil {
		return nil, err
	}
	info := decodeInfo(m.roles, payload)
	m.logProblems(methodInfo, info.Problems)
	return info, nil
}

// decodeInfo never fails: every info field is isolable.
func decodeInfo(roles *RoleTable, payload codec.Record) *Info {
	info := &Info{Roles: Roles{}}

	description, err := codec.Lookup(payload, infoDescriptionField, codec.AsText)
	if err != nil {
		info.Problems = append(info.Problems, fmt.Errorf("description: %w", err))
	} else {
		info.Description = description
	}

	if raw, ok := payload.Get(infoRolesField); ok {
		decoded, problems, err := decodeRoles(roles, raw)
		if err != nil {
			info.Problems = append(info.Problems, err)
		} else {
			info.Roles = decoded
			info.Problems = append(info.Problems, problems...)
		}
	}

	if raw, ok := payload.Get(infoFeaturesField); ok {
		decoded, problems, err := decodeFeatures(raw)
		if err != nil {
			info.Problems = append(info.Problems, err)
		} else {
			info.Features = decoded
			info.Problems = append(info.Problems, problems...)
		}
	}

	disabled, err := codec.Lookup(payload, infoDisabledField, codec.AsBool)
	if err != nil {
		info.Problems = append(info.Problems, fmt.Errorf("disabled: %w", err))
	} else {
		info.Disabled = disabled.Value
	}
	return info
}

// CreateRequest describes a new account. Description and Roles are
// optional.
type CreateRequest struct {
	Description string
	Roles       Roles
	Features    []Feature
}

// Create creates an account and returns its address.
func (m *Module) Create(ctx context.Context, request CreateRequest, options ...rpc.Option) (identity.Address, error) {
	args := codec.NewRecord()
	if request.Description != "" {
		args = args.Set(createDescriptionField, codec.Text(request.Description))
	}
	if len(request.Roles) > 0 {
		roles, err := encodeRoles(m.roles, request.Roles)
		if err != nil {
			return identity.Address{}, err
		}
		args = args.Set(createRolesField, roles)
	}
	features, err := encodeFeatures(request.Features)
	if err != nil {
		return identity.Address{}, err
	}
	args = args.Set(createFeaturesField, features)

	payload, err := m.caller.Call(ctx, methodCreate, args, options...)
	if err != nil {
		return identity.Address{}, err
	}
	address, err := codec.Require(payload, createdAddressField, identity.IdentityToAddress)
	if err != nil {
		return identity.Address{}, fmt.Errorf("decoding %s response: %w", methodCreate, err)
	}
	return address, nil
}

// SetDescription replaces the description of account.
func (m *Module) SetDescription(ctx context.Context, account identity.Address, description string, options ...rpc.Option) error {
	args, err := accountArgs(account)
	if err != nil {
		return err
	}
	return m.mutate(ctx, methodSetDescription, args.Set(descriptionField, codec.Text(description)), options)
}

// AddRoles grants roles on account.
func (m *Module) AddRoles(ctx context.Context, account identity.Address, roles Roles, options ...rpc.Option) error {
	return m.changeRoles(ctx, methodAddRoles, account, roles, options)
}

// RemoveRoles revokes roles on account.
func (m *Module) RemoveRoles(ctx context.Context, account identity.Address, roles Roles, options ...rpc.Option) error {
	return m.changeRoles(ctx, methodRemoveRoles, account, roles, options)
}

func (m *Module) changeRoles(ctx context.Context, method string, account identity.Address, roles Roles, options []rpc.Option) error {
	args, err := accountArgs(account)
	if err != nil {
		return err
	}
	encoded, err := encodeRoles(m.roles, roles)
	if err != nil {
		return err
	}
	return m.mutate(ctx, method, args.Set(rolesField, encoded), options)
}

// AddFeaturesRequest adds features, and optionally roles, to an
// existing account.
type AddFeaturesRequest struct {
	Account  identity.Address
	Roles    Roles
	Features []Feature
}

// AddFeatures enables features on an account.
func (m *Module) AddFeatures(ctx context.Context, request AddFeaturesRequest, options ...rpc.Option) error {
	args, err := accountArgs(request.Account)
	if err != nil {
		return err
	}
	if len(request.Roles) > 0 {
		roles, err := encodeRoles(m.roles, request.Roles)
		if err != nil {
			return err
		}
		args = args.Set(addFeaturesRolesField, roles)
	}
	features, err := encodeFeatures(request.Features)
	if err != nil {
		return err
	}
	return m.mutate(ctx, methodAddFeatures, args.Set(addFeaturesFeatureField, features), options)
}

// Disable disables account.
func (m *Module) Disable(ctx context.Context, account identity.Address, options ...rpc.Option) error {
	args, err := accountArgs(account)
	if err != nil {
		return err
	}
	return m.mutate(ctx, methodDisable, args, options)
}

// mutate issues a call whose success payload carries nothing.
func (m *Module) mutate(ctx context.Context, method string, args codec.Record, options []rpc.Option) error {
	_, err := m.caller.Call(ctx, method, args, options...)
	return err
}

func accountArgs(account identity.Address) (codec.Record, error) {
	if account.IsZero() {
		return codec.Record{}, fmt.Errorf("account address is not set")
	}
	return codec.NewRecord().Set(accountField, identity.AddressToIdentity(account)), nil
}

func (m *Module) logProblems(method string, problems []error) {
	if len(problems) == 0 {
		return
	}
	m.logger.Warn("ledger response had undecodable entries",
		"method", method,
		"count", len(problems),
		"first", problems[0],
	)
}
