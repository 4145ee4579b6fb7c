package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ReserveSnapshot is a point-in-time read of a pair's raw reserves together
// with the identity of the token in slot 0. It is consumed immediately by the
// price oracle and never persisted.
type ReserveSnapshot struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
	Token0   common.Address
}
