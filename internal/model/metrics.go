package model

import "github.com/shopspring/decimal"

// PairMetrics is the USD-denominated view of a pair at one instant.
type PairMetrics struct {
	Price     decimal.Decimal
	Liquidity decimal.Decimal
	MarketCap decimal.Decimal
	Volume24h decimal.Decimal
}
