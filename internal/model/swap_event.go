package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// SwapEvent is a decoded pair Swap log. All four amounts are required; the
// struct is validated at the chain boundary so downstream code never sees a
// partial payload.
type SwapEvent struct {
	Amount0In   *big.Int
	Amount1In   *big.Int
	Amount0Out  *big.Int
	Amount1Out  *big.Int
	To          common.Address
	TxHash      string
	BlockNumber uint64
	LogIndex    uint64
	Timestamp   uint64
}

// Validate checks that the event carries every required field.
func (e SwapEvent) Validate() error {
	if e.TxHash == "" {
		return fmt.Errorf("swap event missing tx hash")
	}
	if e.Amount0In == nil || e.Amount1In == nil || e.Amount0Out == nil || e.Amount1Out == nil {
		return fmt.Errorf("swap event %s missing amounts", e.TxHash)
	}
	return nil
}
