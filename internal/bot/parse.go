package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var validOps = map[string]struct{}{
	"<": {}, ">": {}, "<=": {}, ">=": {}, "=": {},
}

// ParseSetAlert parses the arguments of a setalert command, expected as
// "price <op> <threshold>". The operator is validated and stored for display
// but alert matching always uses price >= threshold.
func ParseSetAlert(args string) (string, decimal.Decimal, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "", decimal.Zero, fmt.Errorf("expected 3 arguments, got %d", len(fields))
	}
	if !strings.EqualFold(fields[0], "price") {
		return "", decimal.Zero, fmt.Errorf("unknown alert kind %q", fields[0])
	}

	op := fields[1]
	if _, ok := validOps[op]; !ok {
		return "", decimal.Zero, fmt.Errorf("unknown operator %q", op)
	}

	threshold, err := decimal.NewFromString(fields[2])
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("invalid threshold %q: %w", fields[2], err)
	}
	if threshold.IsNegative() {
		return "", decimal.Zero, fmt.Errorf("threshold must not be negative")
	}

	return op, threshold, nil
}
