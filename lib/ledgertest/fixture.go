// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledgertest

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/ledgerwire/lib/codec"
	"github.com/bureau-foundation/ledgerwire/lib/rpc"
)

// Fixture is one recorded exchange.
type Fixture struct {
	Name     string `json:"name"`
	Method   string `json:"method"`
	Request  Hex    `json:"request"`
	Response Hex    `json:"response"`
}

// Hex is encoded bytes written in a fixture as a hex string, or as an
// array of hex strings that are concatenated. Whitespace is ignored.
type Hex []byte

func (h *Hex) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("hex must be a string or an array of strings")
		}
		text = strings.Join(lines, "")
	}
	decoded, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// ParseFixtures parses a JSONC array of fixtures. Every fixture must
// have a name and a request.
func ParseFixtures(data []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := json.Unmarshal(jsonc.ToJSON(data), &fixtures); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	for i, fixture := range fixtures {
		if fixture.Name == "" {
			return nil, fmt.Errorf("fixture %d has no name", i)
		}
		if len(fixture.Request) == 0 {
			return nil, fmt.Errorf("fixture %q has no request", fixture.Name)
		}
	}
	return fixtures, nil
}

// LoadFixtures reads and parses a fixture file, failing the test on
// any error.
func LoadFixtures(t testing.TB, path string) []Fixture {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixtures: %v", err)
	}
	fixtures, err := ParseFixtures(data)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	return fixtures
}

// Find returns the fixture called name, failing the test if there is
// none.
func Find(t testing.TB, fixtures []Fixture, name string) Fixture {
	t.Helper()
	for _, fixture := range fixtures {
		if fixture.Name == name {
			return fixture
		}
	}
	t.Fatalf("no fixture named %q", name)
	return Fixture{}
}

// MismatchError reports a request that differs from the recorded one.
type MismatchError struct {
	Fixture string
	Want    []byte
	Got     []byte
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("request for fixture %q differs from the recording:\n got: %s\nwant: %s",
		e.Fixture, diagnose(e.Got), diagnose(e.Want))
}

func diagnose(data []byte) string {
	notation, err := codec.Diagnose(data)
	if err != nil {
		return fmt.Sprintf("%x (%v)", data, err)
	}
	return notation
}

// ReplayTransport answers requests from fixtures, in order. It is safe
// for concurrent use, although concurrent callers race for fixtures.
type ReplayTransport struct {
	mu       sync.Mutex
	fixtures []Fixture
	next     int
}

// NewReplayTransport returns a transport that expects the requests of
// fixtures in order.
func NewReplayTransport(fixtures ...Fixture) *ReplayTransport {
	return &ReplayTransport{fixtures: fixtures}
}

func (r *ReplayTransport) RoundTrip(ctx context.Context, request []byte, options rpc.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.fixtures) {
		return nil, fmt.Errorf("replay transport: unexpected request after %d fixtures: %s", len(r.fixtures), diagnose(request))
	}
	fixture := r.fixtures[r.next]
	r.next++

	if !bytes.Equal(request, fixture.Request) {
		return nil, &MismatchError{Fixture: fixture.Name, Want: fixture.Request, Got: request}
	}
	return fixture.Response, nil
}

// Remaining returns the number of fixtures not yet replayed.
func (r *ReplayTransport) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixtures) - r.next
}
