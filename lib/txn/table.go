// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package txn

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// Kind names a transaction type.
type Kind string

// Send moves an amount of a token from one address to another.
const Send Kind = "send"

// Index identifies a transaction kind on the wire: a non-empty path of
// small integers, encoded as an array.
type Index []uint64

// String returns the path joined with dots, for example "6.0".
func (i Index) String() string {
	parts := make([]string, len(i))
	for position, component := range i {
		parts[position] = strconv.FormatUint(component, 10)
	}
	return strings.Join(parts, ".")
}

// Value returns the wire form of the index.
func (i Index) Value() codec.Array {
	items := make(codec.Array, len(i))
	for position, component := range i {
		items[position] = codec.NewUint(component)
	}
	return items
}

// IndexFromValue reads an index from its wire form. A bare unsigned
// integer is accepted as a one-component path.
func IndexFromValue(v codec.Value) (Index, error) {
	if single, ok := v.(codec.Int); ok {
		component, err := codec.AsUint64(single)
		if err != nil {
			return nil, fmt.Errorf("transaction index: %w", err)
		}
		return Index{component}, nil
	}
	items, err := codec.AsArray(v)
	if err != nil {
		return nil, fmt.Errorf("transaction index: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("transaction index is empty")
	}
	index := make(Index, len(items))
	for position, item := range items {
		component, err := codec.AsUint64(item)
		if err != nil {
			return nil, fmt.Errorf("transaction index component %d: %w", position, err)
		}
		index[position] = component
	}
	return index, nil
}

// DefaultIndices returns the kinds every table starts with.
func DefaultIndices() map[Kind]Index {
	return map[Kind]Index{
		Send: {6, 0},
	}
}

// Table is an immutable bidirectional mapping between kinds and
// indices. The zero value is empty; use [NewTable] or [DefaultTable].
type Table struct {
	byKind  map[Kind]Index
	byIndex map[string]Kind
}

// NewTable returns a table holding the default kinds plus extra. An
// extra entry that repeats a default with the same index is accepted;
// any entry that would map one kind to two indices, or one index to
// two kinds, is an error.
func NewTable(extra map[Kind]Index) (*Table, error) {
	table := &Table{
		byKind:  make(map[Kind]Index),
		byIndex: make(map[string]Kind),
	}
	for kind, index := range DefaultIndices() {
		if err := table.add(kind, index); err != nil {
			return nil, err
		}
	}

	// Sorted so that the reported collision does not depend on map
	// iteration order.
	kinds := make([]Kind, 0, len(extra))
	for kind := range extra {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	for _, kind := range kinds {
		if err := table.add(kind, extra[kind]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// DefaultTable returns a table holding only the default kinds.
func DefaultTable() *Table {
	table, err := NewTable(nil)
	if err != nil {
		panic("txn: default indices collide: " + err.Error())
	}
	return table
}

func (t *Table) add(kind Kind, index Index) error {
	if kind == "" {
		return fmt.Errorf("transaction kind name is empty")
	}
	if len(index) == 0 {
		return fmt.Errorf("transaction kind %q has an empty index", kind)
	}
	key := index.String()
	if existing, ok := t.byKind[kind]; ok {
		if existing.String() == key {
			return nil
		}
		return fmt.Errorf("transaction kind %q maps to both %s and %s", kind, existing, index)
	}
	if existing, ok := t.byIndex[key]; ok {
		return fmt.Errorf("transaction index %s maps to both %q and %q", index, existing, kind)
	}
	t.byKind[kind] = slices.Clone(index)
	t.byIndex[key] = kind
	return nil
}

// IndexOf returns the index registered for kind.
func (t *Table) IndexOf(kind Kind) (Index, bool) {
	index, ok := t.byKind[kind]
	if !ok {
		return nil, false
	}
	return slices.Clone(index), true
}

// KindOf returns the kind registered for index.
func (t *Table) KindOf(index Index) (Kind, bool) {
	kind, ok := t.byIndex[index.String()]
	return kind, ok
}

// Kinds returns the registered kinds in sorted order.
func (t *Table) Kinds() []Kind {
	kinds := make([]Kind, 0, len(t.byKind))
	for kind := range t.byKind {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}
