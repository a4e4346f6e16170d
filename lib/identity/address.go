// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"
)

// HashLength is the size of the public key hash carried by public-key
// and subresource addresses.
const HashLength = 28

// MaxSubresource is the largest subresource id: 31 bits, the top seven
// of which live in the kind byte.
const MaxSubresource = 1<<31 - 1

const (
	kindAnonymous   byte = 0x00
	kindPublicKey   byte = 0x01
	subresourceFlag byte = 0x80

	subresourceTailLength = 3
	publicKeyLength       = 1 + HashLength
	subresourceLength     = 1 + HashLength + subresourceTailLength

	textPrefix     = "m"
	checksumLength = 2
)

var textEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// Address identifies a party on the ledger. The zero value is not a
// valid address; construct one with [FromBytes], [ParseAddress],
// [Anonymous] or [NewPublicKeyAddress]. Addresses are comparable and
// may be used as map keys; two addresses are equal iff their bytes are.
type Address struct {
	raw string
}

// Anonymous returns the anonymous identity.
func Anonymous() Address {
	return Address{raw: string([]byte{kindAnonymous})}
}

// NewPublicKeyAddress returns the address for a public key hash.
// Deriving the hash from a key is the signer's concern.
func NewPublicKeyAddress(hash []byte) (Address, error) {
	if len(hash) != HashLength {
		return Address{}, &MalformedAddressError{Bytes: hash, Reason: fmt.Sprintf("public key hash is %d bytes, want %d", len(hash), HashLength)}
	}
	raw := make([]byte, 0, publicKeyLength)
	raw = append(raw, kindPublicKey)
	raw = append(raw, hash...)
	return Address{raw: string(raw)}, nil
}

// FromBytes validates b and returns the address it encodes.
func FromBytes(b []byte) (Address, error) {
	if err := validate(b); err != nil {
		return Address{}, err
	}
	return Address{raw: string(b)}, nil
}

func validate(b []byte) error {
	if len(b) == 0 {
		return &MalformedAddressError{Bytes: b, Reason: "empty address"}
	}
	kind := b[0]
	switch {
	case kind == kindAnonymous:
		if len(b) != 1 {
			return &MalformedAddressError{Bytes: b, Reason: fmt.Sprintf("anonymous address is %d bytes, want 1", len(b))}
		}
	case kind == kindPublicKey:
		if len(b) != publicKeyLength {
			return &MalformedAddressError{Bytes: b, Reason: fmt.Sprintf("public key address is %d bytes, want %d", len(b), publicKeyLength)}
		}
	case kind&subresourceFlag != 0:
		if len(b) != subresourceLength {
			return &MalformedAddressError{Bytes: b, Reason: fmt.Sprintf("subresource address is %d bytes, want %d", len(b), subresourceLength)}
		}
	default:
		return &MalformedAddressError{Bytes: b, Reason: fmt.Sprintf("kind byte 0x%02x out of range", kind)}
	}
	return nil
}

// IsZero reports whether a is the uninitialized zero value.
func (a Address) IsZero() bool { return a.raw == "" }

// IsAnonymous reports whether a is the anonymous identity.
func (a Address) IsAnonymous() bool { return a.raw == string([]byte{kindAnonymous}) }

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte { return []byte(a.raw) }

// Hash returns the public key hash of a public-key or subresource
// address.
func (a Address) Hash() ([]byte, bool) {
	if len(a.raw) < publicKeyLength {
		return nil, false
	}
	return []byte(a.raw[1:publicKeyLength]), true
}

// Subresource returns the subresource id and whether a is a
// subresource address.
func (a Address) Subresource() (uint32, bool) {
	if len(a.raw) != subresourceLength || a.raw[0]&subresourceFlag == 0 {
		return 0, false
	}
	tail := []byte{0, a.raw[publicKeyLength], a.raw[publicKeyLength+1], a.raw[publicKeyLength+2]}
	high := uint32(a.raw[0]&^subresourceFlag) << 24
	return high | binary.BigEndian.Uint32(tail), true
}

// WithSubresource returns the subresource id of a's public key hash.
// a must be a public-key or subresource address.
func (a Address) WithSubresource(id uint32) (Address, error) {
	hash, ok := a.Hash()
	if !ok {
		return Address{}, fmt.Errorf("address %s has no public key hash to derive a subresource from", a)
	}
	if id > MaxSubresource {
		return Address{}, fmt.Errorf("subresource id %d exceeds %d", id, MaxSubresource)
	}
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], id)

	raw := make([]byte, 0, subresourceLength)
	raw = append(raw, subresourceFlag|byte(id>>24))
	raw = append(raw, hash...)
	raw = append(raw, tail[1:]...)
	return Address{raw: string(raw)}, nil
}

// String renders the textual form: "m", the unpadded lowercase base32
// of the bytes, then a two-character checksum.
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	body := textEncoding.EncodeToString([]byte(a.raw))
	return textPrefix + body + checksum([]byte(a.raw))
}

func checksum(b []byte) string {
	digest := blake3.Sum256(b)
	return textEncoding.EncodeToString(digest[:2])[:checksumLength]
}

// ParseAddress parses the textual form produced by String.
func ParseAddress(text string) (Address, error) {
	if !strings.HasPrefix(text, textPrefix) {
		return Address{}, fmt.Errorf("parsing address %q: missing %q prefix", text, textPrefix)
	}
	rest := text[len(textPrefix):]
	if len(rest) <= checksumLength {
		return Address{}, fmt.Errorf("parsing address %q: too short", text)
	}
	body, sum := rest[:len(rest)-checksumLength], rest[len(rest)-checksumLength:]

	raw, err := textEncoding.DecodeString(body)
	if err != nil {
		return Address{}, fmt.Errorf("parsing address %q: %w", text, err)
	}
	// Reject non-canonical spellings whose padding bits are set.
	if textEncoding.EncodeToString(raw) != body {
		return Address{}, fmt.Errorf("parsing address %q: non-canonical encoding", text)
	}
	if checksum(raw) != sum {
		return Address{}, fmt.Errorf("parsing address %q: checksum mismatch", text)
	}
	address, err := FromBytes(raw)
	if err != nil {
		return Address{}, fmt.Errorf("parsing address %q: %w", text, err)
	}
	return address, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
