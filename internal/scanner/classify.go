package scanner

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"swapwatch/internal/model"
)

// Classification is the result of labelling one swap event.
type Classification struct {
	IsBuy       bool
	Amount      decimal.Decimal
	TokenSymbol string
}

// Classify labels a swap event as a buy of the pair's base token and
// normalizes the traded amount. A buy shows inbound volume on the paying side
// and outbound volume on the base-token side; which slot is which depends on
// the token occupying slot 0. Everything else, including mixed in/out on both
// sides, is a non-buy and ignored.
func Classify(pair model.Pair, token0 common.Address, event model.SwapEvent) Classification {
	out := Classification{TokenSymbol: pair.Base.Symbol}

	switch token0 {
	case pair.Base.Address:
		if event.Amount1In.Sign() > 0 && event.Amount0Out.Sign() > 0 {
			out.IsBuy = true
			out.Amount = decimal.NewFromBigInt(event.Amount0Out, 0).Shift(-pair.Base.Decimals)
		}
	case pair.Quote.Address:
		if event.Amount0In.Sign() > 0 && event.Amount1Out.Sign() > 0 {
			out.IsBuy = true
			out.Amount = decimal.NewFromBigInt(event.Amount1Out, 0).Shift(-pair.Base.Decimals)
		}
	}

	return out
}
