// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package account

import (
	"fmt"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

// FeatureID identifies an account feature on the wire.
type FeatureID uint64

const (
	FeatureLedger   FeatureID = 0
	FeatureMultisig FeatureID = 1
)

func (id FeatureID) String() string {
	switch id {
	case FeatureLedger:
		return "ledger"
	case FeatureMultisig:
		return "multisig"
	}
	return fmt.Sprintf("feature(%d)", uint64(id))
}

// Feature is an account feature: [LedgerFeature], [MultisigFeature],
// or an [UnknownFeature] read from the wire.
type Feature interface {
	ID() FeatureID
	arguments() (codec.Record, error)
}

// LedgerFeature lets an account hold and move tokens. It has no
// arguments.
type LedgerFeature struct{}

func (LedgerFeature) ID() FeatureID { return FeatureLedger }

func (LedgerFeature) arguments() (codec.Record, error) { return codec.Record{}, nil }

// Multisig feature argument fields.
const (
	multisigThresholdArgument   uint64 = 0
	multisigExpireArgument      uint64 = 1
	multisigAutoExecuteArgument uint64 = 2
)

// MultisigFeature enables multisig transactions on an account. Unset
// fields leave the service's defaults in place.
type MultisigFeature struct {
	Threshold            codec.Field[uint64]
	ExpireInSecs         codec.Field[uint64]
	ExecuteAutomatically codec.Field[bool]
}

func (MultisigFeature) ID() FeatureID { return FeatureMultisig }

func (f MultisigFeature) arguments() (codec.Record, error) {
	arguments := codec.NewRecord()
	if threshold, ok := f.Threshold.Get(); ok {
		if threshold == 0 {
			return codec.Record{}, fmt.Errorf("multisig threshold must be at least 1")
		}
		arguments = arguments.Set(multisigThresholdArgument, codec.NewUint(threshold))
	}
	if expire, ok := f.ExpireInSecs.Get(); ok {
		arguments = arguments.Set(multisigExpireArgument, codec.NewUint(expire))
	}
	if execute, ok := f.ExecuteAutomatically.Get(); ok {
		arguments = arguments.Set(multisigAutoExecuteArgument, codec.Bool(execute))
	}
	return arguments, nil
}

// UnknownFeature is a feature this package has no type for. Arguments
// is kept as received so the feature can be sent back unchanged.
type UnknownFeature struct {
	FeatureID FeatureID
	Arguments codec.Record
}

func (f UnknownFeature) ID() FeatureID { return f.FeatureID }

func (f UnknownFeature) arguments() (codec.Record, error) { return f.Arguments, nil }

// encodeFeature writes a feature as its bare id, or as [id, arguments]
// when it has arguments.
func encodeFeature(feature Feature) (codec.Value, error) {
	if feature == nil {
		return nil, fmt.Errorf("feature is nil")
	}
	arguments, err := feature.arguments()
	if err != nil {
		return nil, fmt.Errorf("%s feature: %w", feature.ID(), err)
	}
	id := codec.NewUint(uint64(feature.ID()))
	if arguments.Len() == 0 {
		return id, nil
	}
	return codec.Array{id, arguments}, nil
}

func encodeFeatures(features []Feature) (codec.Array, error) {
	encoded := make(codec.Array, 0, len(features))
	for _, feature := range features {
		value, err := encodeFeature(feature)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, value)
	}
	return encoded, nil
}

// decodeFeature reads a bare id or an [id, arguments] pair. An unknown
// id decodes as UnknownFeature together with an
// *codec.UnknownEnumeratorError.
func decodeFeature(v codec.Value) (Feature, error) {
	var id uint64
	arguments := codec.NewRecord()
	switch raw := v.(type) {
	case codec.Int:
		n, err := codec.AsUint64(raw)
		if err != nil {
			return nil, fmt.Errorf("feature id: %w", err)
		}
		id = n
	case codec.Array:
		if len(raw) != 2 {
			return nil, fmt.Errorf("feature is an array of %d items, want [id, arguments]", len(raw))
		}
		n, err := codec.AsUint64(raw[0])
		if err != nil {
			return nil, fmt.Errorf("feature id: %w", err)
		}
		id = n
		if _, isNull := raw[1].(codec.Null); !isNull {
			arguments, err = codec.AsRecord(raw[1])
			if err != nil {
				return nil, fmt.Errorf("%s feature arguments: %w", FeatureID(id), err)
			}
		}
	case nil:
		return nil, &codec.KindError{Want: codec.KindInt, Got: codec.KindNull}
	default:
		return nil, &codec.KindError{Want: codec.KindArray, Got: raw.Kind()}
	}

	switch FeatureID(id) {
	case FeatureLedger:
		return LedgerFeature{}, nil
	case FeatureMultisig:
		return decodeMultisigFeature(arguments)
	}
	return UnknownFeature{FeatureID: FeatureID(id), Arguments: arguments},
		&codec.UnknownEnumeratorError{Enumeration: "feature", Raw: v}
}

func decodeMultisigFeature(arguments codec.Record) (Feature, error) {
	threshold, err := codec.Lookup(arguments, multisigThresholdArgument, codec.AsUint64)
	if err != nil {
		return nil, fmt.Errorf("multisig feature threshold: %w", err)
	}
	expire, err := codec.Lookup(arguments, multisigExpireArgument, codec.AsUint64)
	if err != nil {
		return nil, fmt.Errorf("multisig feature expiry: %w", err)
	}
	execute, err := codec.Lookup(arguments, multisigAutoExecuteArgument, codec.AsBool)
	if err != nil {
		return nil, fmt.Errorf("multisig feature auto-execute: %w", err)
	}
	return MultisigFeature{
		Threshold:            threshold,
		ExpireInSecs:         expire,
		ExecuteAutomatically: execute,
	}, nil
}

// decodeFeatures reads a feature list. Features that do not decode are
// returned as problems; unknown features are kept and also reported.
func decodeFeatures(v codec.Value) ([]Feature, []error, error) {
	items, err := codec.AsArray(v)
	if err != nil {
		return nil, nil, fmt.Errorf("features: %w", err)
	}
	features := make([]Feature, 0, len(items))
	var problems []error
	for position, item := range items {
		feature, err := decodeFeature(item)
		if err != nil {
			problems = append(problems, fmt.Errorf("feature %d: %w", position, err))
		}
		if feature != nil {
			features = append(features, feature)
		}
	}
	return features, problems, nil
}
