package pricing

import "errors"

var (
	// ErrZeroReserve means a pair has an empty reserve on at least one side
	// and cannot be priced yet.
	ErrZeroReserve = errors.New("pair has a zero reserve")

	// ErrUnknownPair means the requested pair id is not configured.
	ErrUnknownPair = errors.New("unknown pair")

	// ErrNoAnchorRoute means a derived pair shares no token with the anchor
	// pair's base, so it cannot be priced in one hop.
	ErrNoAnchorRoute = errors.New("pair has no route to the anchor pair")
)
