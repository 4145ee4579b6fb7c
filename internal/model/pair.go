package model

import "github.com/ethereum/go-ethereum/common"

// Token describes one side of a tracked pair.
type Token struct {
	Address  common.Address
	Symbol   string
	Decimals int32
}

// Pair is the static configuration of a tracked AMM pair. Base is the token
// whose buys are watched and whose price the pair quotes; exactly one
// configured pair is the USD anchor, all others price through it one hop.
type Pair struct {
	ID      string
	Address common.Address
	Base    Token
	Quote   Token
	Anchor  bool
}

// Contains reports whether the pair holds the given token on either side.
func (p Pair) Contains(token common.Address) bool {
	return p.Base.Address == token || p.Quote.Address == token
}

// Counterpart returns the pair token that is not the given one.
func (p Pair) Counterpart(token common.Address) Token {
	if p.Base.Address == token {
		return p.Quote
	}
	return p.Base
}
