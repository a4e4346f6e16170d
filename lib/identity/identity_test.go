// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
)

func testHash(seed byte) []byte {
	hash := make([]byte, HashLength)
	for i := range hash {
		hash[i] = seed + byte(i)
	}
	return hash
}

func testAddresses(t *testing.T) map[string]Address {
	t.Helper()
	publicKey, err := NewPublicKeyAddress(testHash(1))
	if err != nil {
		t.Fatalf("NewPublicKeyAddress: %v", err)
	}
	small, err := publicKey.WithSubresource(5)
	if err != nil {
		t.Fatalf("WithSubresource(5): %v", err)
	}
	largest, err := publicKey.WithSubresource(MaxSubresource)
	if err != nil {
		t.Fatalf("WithSubresource(max): %v", err)
	}
	return map[string]Address{
		"anonymous":           Anonymous(),
		"public key":          publicKey,
		"subresource":         small,
		"largest subresource": largest,
	}
}

func TestIdentityRoundtrip(t *testing.T) {
	for name, address := range testAddresses(t) {
		t.Run(name, func(t *testing.T) {
			tagged := AddressToIdentity(address)
			if tagged.Number != IdentityTag {
				t.Fatalf("tag = %d, want %d", tagged.Number, IdentityTag)
			}

			// Through the wire, not just in memory.
			data, err := codec.Encode(tagged)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			decoded, err := codec.Decode(data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			got, err := IdentityToAddress(decoded)
			if err != nil {
				t.Fatalf("IdentityToAddress: %v", err)
			}
			if got != address {
				t.Errorf("roundtrip: got %s, want %s", got, address)
			}
		})
	}
}

func TestIdentityToAddressRejectsEmptyBytes(t *testing.T) {
	_, err := IdentityToAddress(codec.Tagged{Number: IdentityTag, Content: codec.Bytes{}})
	var malformedErr *MalformedAddressError
	if !errors.As(err, &malformedErr) {
		t.Fatalf("error = %v, want *MalformedAddressError", err)
	}
}

func TestIdentityToAddressErrors(t *testing.T) {
	tests := []struct {
		name          string
		value         codec.Value
		wantTagError  bool
		wantAddrError bool
	}{
		{"wrong tag", codec.Tagged{Number: 10001, Content: codec.Bytes{0x00}}, true, false},
		{"timestamp tag", codec.Tagged{Number: TimestampTag, Content: codec.NewInt(5)}, true, false},
		{"untagged bytes", codec.Bytes{0x00}, true, false},
		{"text content", codec.Tagged{Number: IdentityTag, Content: codec.Text("m123")}, false, true},
		{"kind byte out of range", codec.Tagged{Number: IdentityTag, Content: codec.Bytes{0x05}}, false, true},
		{"anonymous with trailing byte", codec.Tagged{Number: IdentityTag, Content: codec.Bytes{0x00, 0x00}}, false, true},
		{"short public key", codec.Tagged{Number: IdentityTag, Content: codec.Bytes{0x01, 0x02}}, false, true},
		{"short subresource", codec.Tagged{Number: IdentityTag, Content: codec.Bytes(append([]byte{0x80}, testHash(1)...))}, false, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			address, err := IdentityToAddress(test.value)
			if err == nil {
				t.Fatalf("IdentityToAddress succeeded with %s", address)
			}
			var tagErr *UnexpectedTagError
			if errors.As(err, &tagErr) != test.wantTagError {
				t.Errorf("UnexpectedTagError match = %v, want %v (error %v)", !test.wantTagError, test.wantTagError, err)
			}
			var addrErr *MalformedAddressError
			if errors.As(err, &addrErr) != test.wantAddrError {
				t.Errorf("MalformedAddressError match = %v, want %v (error %v)", !test.wantAddrError, test.wantAddrError, err)
			}
		})
	}
}

func TestSubresource(t *testing.T) {
	addresses := testAddresses(t)

	if _, ok := addresses["public key"].Subresource(); ok {
		t.Error("public key address reports a subresource")
	}
	if id, ok := addresses["subresource"].Subresource(); !ok || id != 5 {
		t.Errorf("Subresource() = %d, %v, want 5, true", id, ok)
	}
	if id, ok := addresses["largest subresource"].Subresource(); !ok || id != MaxSubresource {
		t.Errorf("Subresource() = %d, %v, want %d, true", id, ok, MaxSubresource)
	}

	hash, _ := addresses["subresource"].Hash()
	if !bytes.Equal(hash, testHash(1)) {
		t.Errorf("subresource hash = %x, want %x", hash, testHash(1))
	}

	if _, err := Anonymous().WithSubresource(1); err == nil {
		t.Error("anonymous address accepted a subresource")
	}
	if _, err := addresses["public key"].WithSubresource(MaxSubresource + 1); err == nil {
		t.Error("subresource id beyond 31 bits accepted")
	}
}

func TestTextRoundtrip(t *testing.T) {
	for name, address := range testAddresses(t) {
		t.Run(name, func(t *testing.T) {
			text := address.String()
			if text[0] != 'm' {
				t.Fatalf("text %q does not start with m", text)
			}
			parsed, err := ParseAddress(text)
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", text, err)
			}
			if parsed != address {
				t.Errorf("ParseAddress(%q) = %x, want %x", text, parsed.Bytes(), address.Bytes())
			}

			var unmarshaled Address
			marshaled, _ := address.MarshalText()
			if err := unmarshaled.UnmarshalText(marshaled); err != nil {
				t.Fatalf("UnmarshalText: %v", err)
			}
			if unmarshaled != address {
				t.Errorf("UnmarshalText roundtrip mismatch")
			}
		})
	}
}

func TestParseAddressRejects(t *testing.T) {
	valid := Anonymous().String()
	corrupted := valid[:len(valid)-1] + "q"
	if corrupted == valid {
		corrupted = valid[:len(valid)-1] + "r"
	}

	for _, text := range []string{"", "m", "m123", "x" + valid[1:], corrupted} {
		if _, err := ParseAddress(text); err == nil {
			t.Errorf("ParseAddress(%q) succeeded", text)
		}
	}
}

func TestInterpret(t *testing.T) {
	anonymous := AddressToIdentity(Anonymous())
	interpreted, err := Interpret(anonymous)
	if err != nil {
		t.Fatalf("Interpret(identity): %v", err)
	}
	if identity, ok := interpreted.(Identity); !ok || !identity.Address.IsAnonymous() {
		t.Errorf("Interpret(identity) = %#v", interpreted)
	}

	when := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	interpreted, err = Interpret(TimestampToValue(when))
	if err != nil {
		t.Fatalf("Interpret(timestamp): %v", err)
	}
	if timestamp, ok := interpreted.(Timestamp); !ok || !timestamp.Time.Equal(when) {
		t.Errorf("Interpret(timestamp) = %#v", interpreted)
	}

	unknown := codec.Tagged{Number: 55799, Content: codec.Array{codec.Text("opaque")}}
	interpreted, err = Interpret(unknown)
	if err != nil {
		t.Fatalf("Interpret(unknown): %v", err)
	}
	if _, ok := interpreted.(Unknown); !ok {
		t.Fatalf("Interpret(unknown) = %#v, want Unknown", interpreted)
	}
	if !codec.Equal(interpreted.Tagged(), unknown) {
		t.Errorf("unknown tag not preserved: %s", codec.Describe(interpreted.Tagged()))
	}

	if _, err := Interpret(codec.Tagged{Number: IdentityTag, Content: codec.Bytes{}}); err == nil {
		t.Error("Interpret accepted an empty identity")
	}
	if _, err := Interpret(codec.Tagged{Number: TimestampTag, Content: codec.Text("yesterday")}); err == nil {
		t.Error("Interpret accepted a text timestamp")
	}
}

func TestValueToTimestampRange(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		wantErr bool
	}{
		{"epoch", 0, false},
		{"recent", 1700000000, false},
		{"first second of year 1", -62135596800, false},
		{"last second of year 9999", 253402300799, false},
		{"before year 1", -62135596801, true},
		{"after year 9999", 253402300800, true},
		{"milliseconds", 1700000000000, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			when, err := ValueToTimestamp(codec.Tagged{Number: TimestampTag, Content: codec.NewInt(test.seconds)})
			if test.wantErr {
				var rangeErr *codec.RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("ValueToTimestamp = %v, %v, want *codec.RangeError", when, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValueToTimestamp: %v", err)
			}
			if when.Unix() != test.seconds {
				t.Errorf("Unix() = %d, want %d", when.Unix(), test.seconds)
			}
		})
	}
}
