package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one appended point of pair price history. A record is only
// written when the full metric computation succeeded.
type PriceRecord struct {
	PairID    string
	Price     decimal.Decimal
	Liquidity decimal.Decimal
	MarketCap decimal.Decimal
	Volume24h decimal.Decimal
	CreatedAt time.Time
}

// TransactionRecord is one processed buy, keyed uniquely by transaction hash.
// The uniqueness constraint on TxHash doubles as the dedup ledger.
type TransactionRecord struct {
	TxHash    string
	PairID    string
	Amount    decimal.Decimal
	USDValue  decimal.Decimal
	Price     decimal.Decimal
	CreatedAt time.Time
}
