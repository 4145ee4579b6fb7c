package config

import (
	"strings"
	"testing"
)

func TestTrackedPairsDefaults(t *testing.T) {
	cfg := Config{Pairs: DefaultPairs()}

	pairs, err := cfg.TrackedPairs()
	if err != nil {
		t.Fatalf("TrackedPairs: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("pairs = %d, want 3", len(pairs))
	}

	anchors := 0
	for _, pair := range pairs {
		if pair.Anchor {
			anchors++
			if pair.ID != "BESC-BUSDC" {
				t.Errorf("anchor pair = %q", pair.ID)
			}
		}
	}
	if anchors != 1 {
		t.Fatalf("anchors = %d, want 1", anchors)
	}
}

func TestTrackedPairsValidation(t *testing.T) {
	base := DefaultPairs()

	cases := []struct {
		name    string
		mutate  func([]PairConfig) []PairConfig
		wantErr string
	}{
		{
			name:    "empty table",
			mutate:  func([]PairConfig) []PairConfig { return nil },
			wantErr: "at least one tracked pair",
		},
		{
			name: "no anchor",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[0].Anchor = false
				return pairs
			},
			wantErr: "exactly one anchor",
		},
		{
			name: "two anchors",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[1].Anchor = true
				return pairs
			},
			wantErr: "multiple anchor pairs",
		},
		{
			name: "duplicate id",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[1].ID = pairs[0].ID
				return pairs
			},
			wantErr: "duplicate pair id",
		},
		{
			name: "derived pair without route to anchor",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[1].BaseAddress = "0x0000000000000000000000000000000000000001"
				pairs[1].QuoteAddress = "0x0000000000000000000000000000000000000002"
				return pairs
			},
			wantErr: "does not share a token with anchor",
		},
		{
			name: "invalid pair address",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[0].Address = "not-an-address"
				return pairs
			},
			wantErr: "invalid pair address",
		},
		{
			name: "missing id",
			mutate: func(pairs []PairConfig) []PairConfig {
				pairs[0].ID = ""
				return pairs
			},
			wantErr: "pair id is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pairs := make([]PairConfig, len(base))
			copy(pairs, base)

			cfg := Config{Pairs: tc.mutate(pairs)}
			_, err := cfg.TrackedPairs()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}
