package bot

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseSetAlert(t *testing.T) {
	cases := []struct {
		name      string
		args      string
		wantOp    string
		wantValue string
		wantErr   bool
	}{
		{name: "greater", args: "price > 100", wantOp: ">", wantValue: "100"},
		{name: "less or equal", args: "price <= 0.5", wantOp: "<=", wantValue: "0.5"},
		{name: "equal", args: "price = 42", wantOp: "=", wantValue: "42"},
		{name: "upper case kind", args: "PRICE >= 1", wantOp: ">=", wantValue: "1"},
		{name: "extra whitespace", args: "  price   <   3  ", wantOp: "<", wantValue: "3"},
		{name: "zero threshold", args: "price > 0", wantOp: ">", wantValue: "0"},
		{name: "empty", args: "", wantErr: true},
		{name: "too few fields", args: "price >", wantErr: true},
		{name: "too many fields", args: "price > 100 now", wantErr: true},
		{name: "unknown kind", args: "volume > 100", wantErr: true},
		{name: "unknown operator", args: "price !! 100", wantErr: true},
		{name: "bad threshold", args: "price > lots", wantErr: true},
		{name: "negative threshold", args: "price > -5", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op, value, err := ParseSetAlert(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got op=%q value=%s", op, value)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if op != tc.wantOp {
				t.Errorf("op = %q, want %q", op, tc.wantOp)
			}
			if !value.Equal(decimal.RequireFromString(tc.wantValue)) {
				t.Errorf("value = %s, want %s", value, tc.wantValue)
			}
		})
	}
}
