// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/identity"
)

// Role is a capability granted to an address on an account. Roles are
// written by name and may be read back by name or by index.
type Role string

const (
	RoleOwner                       Role = "owner"
	RoleCanLedgerTransact           Role = "canLedgerTransact"
	RoleCanMultisigSubmit           Role = "canMultisigSubmit"
	RoleCanMultisigApprove          Role = "canMultisigApprove"
	RoleCanKvStorePut               Role = "canKvStorePut"
	RoleCanKvStoreDisable           Role = "canKvStoreDisable"
	RoleCanKvStoreTransfer          Role = "canKvStoreTransfer"
	RoleCanTokensCreate             Role = "canTokensCreate"
	RoleCanTokensMint               Role = "canTokensMint"
	RoleCanTokensBurn               Role = "canTokensBurn"
	RoleCanTokensUpdate             Role = "canTokensUpdate"
	RoleCanTokensAddExtendedInfo    Role = "canTokensAddExtendedInfo"
	RoleCanTokensRemoveExtendedInfo Role = "canTokensRemoveExtendedInfo"
)

// DefaultRoles returns the built-in roles in index order: the role at
// position i has index i.
func DefaultRoles() []Role {
	return []Role{
		RoleOwner,
		RoleCanLedgerTransact,
		RoleCanMultisigSubmit,
		RoleCanMultisigApprove,
		RoleCanKvStorePut,
		RoleCanKvStoreDisable,
		RoleCanKvStoreTransfer,
		RoleCanTokensCreate,
		RoleCanTokensMint,
		RoleCanTokensBurn,
		RoleCanTokensUpdate,
		RoleCanTokensAddExtendedInfo,
		RoleCanTokensRemoveExtendedInfo,
	}
}

// RoleTable is an immutable bidirectional mapping between role names
// and indices.
type RoleTable struct {
	byName  map[Role]uint64
	byIndex map[uint64]Role
}

// NewRoleTable returns a table holding the default roles plus extra.
// The same collision rules as txn.NewTable apply.
func NewRoleTable(extra map[Role]uint64) (*RoleTable, error) {
	table := &RoleTable{
		byName:  make(map[Role]uint64),
		byIndex: make(map[uint64]Role),
	}
	for index, role := range DefaultRoles() {
		if err := table.add(role, uint64(index)); err != nil {
			return nil, err
		}
	}
	names := make([]Role, 0, len(extra))
	for role := range extra {
		names = append(names, role)
	}
	slices.Sort(names)
	for _, role := range names {
		if err := table.add(role, extra[role]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// DefaultRoleTable returns a table holding only the default roles.
func DefaultRoleTable() *RoleTable {
	table, err := NewRoleTable(nil)
	if err != nil {
		panic("account: default roles collide: " + err.Error())
	}
	return table
}

func (t *RoleTable) add(role Role, index uint64) error {
	if role == "" {
		return fmt.Errorf("role name is empty")
	}
	if existing, ok := t.byName[role]; ok {
		if existing == index {
			return nil
		}
		return fmt.Errorf("role %q maps to both %d and %d", role, existing, index)
	}
	if existing, ok := t.byIndex[index]; ok {
		return fmt.Errorf("role index %d maps to both %q and %q", index, existing, role)
	}
	t.byName[role] = index
	t.byIndex[index] = role
	return nil
}

// IndexOf returns the index of role.
func (t *RoleTable) IndexOf(role Role) (uint64, bool) {
	index, ok := t.byName[role]
	return index, ok
}

// RoleOf returns the role with index.
func (t *RoleTable) RoleOf(index uint64) (Role, bool) {
	role, ok := t.byIndex[index]
	return role, ok
}

// Roles is a role assignment: the roles held by each address.
type Roles map[identity.Address][]Role

// encodeRoles writes roles as {identity: [name, ...]}. Every role must
// be in table.
func encodeRoles(table *RoleTable, roles Roles) (codec.Map, error) {
	addresses := make([]identity.Address, 0, len(roles))
	for address := range roles {
		addresses = append(addresses, address)
	}
	slices.SortFunc(addresses, func(a, b identity.Address) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})

	encoded := make(codec.Map, 0, len(addresses))
	for _, address := range addresses {
		if address.IsZero() {
			return nil, fmt.Errorf("role assignment for an unset address")
		}
		names := make(codec.Array, 0, len(roles[address]))
		for _, role := range roles[address] {
			if _, ok := table.IndexOf(role); !ok {
				return nil, &codec.UnknownEnumeratorError{Enumeration: "role", Raw: codec.Text(role)}
			}
			names = append(names, codec.Text(role))
		}
		encoded = append(encoded, codec.MapEntry{Key: identity.AddressToIdentity(address), Value: names})
	}
	return encoded, nil
}

// decodeRoles reads a role assignment. Entries that cannot be read and
// roles the table does not know are returned as problems and left out.
func decodeRoles(table *RoleTable, v codec.Value) (Roles, []error, error) {
	entries, err := codec.AsMap(v)
	if err != nil {
		return nil, nil, fmt.Errorf("roles: %w", err)
	}

	roles := make(Roles, len(entries))
	var problems []error
	for _, entry := range entries {
		address, err := identity.IdentityToAddress(entry.Key)
		if err != nil {
			problems = append(problems, fmt.Errorf("role assignment key %s: %w", codec.Describe(entry.Key), err))
			continue
		}
		items, err := codec.AsArray(entry.Value)
		if err != nil {
			problems = append(problems, fmt.Errorf("roles of %s: %w", address, err))
			continue
		}
		held := make([]Role, 0, len(items))
		for _, item := range items {
			role, err := decodeRole(table, item)
			if err != nil {
				problems = append(problems, fmt.Errorf("roles of %s: %w", address, err))
				continue
			}
			held = append(held, role)
		}
		roles[address] = held
	}
	return roles, problems, nil
}

func decodeRole(table *RoleTable, v codec.Value) (Role, error) {
	switch raw := v.(type) {
	case codec.Text:
		if _, ok := table.IndexOf(Role(raw)); !ok {
			return "", &codec.UnknownEnumeratorError{Enumeration: "role", Raw: raw}
		}
		return Role(raw), nil
	case codec.Int:
		index, ok := raw.Uint64()
		if ok {
			if role, known := table.RoleOf(index); known {
				return role, nil
			}
		}
		return "", &codec.UnknownEnumeratorError{Enumeration: "role", Raw: raw}
	case nil:
		return "", &codec.KindError{Want: codec.KindText, Got: codec.KindNull}
	default:
		return "", &codec.KindError{Want: codec.KindText, Got: raw.Kind()}
	}
}
