package pricing

import (
	"github.com/shopspring/decimal"

	"swapwatch/internal/model"
)

// ComputeAnchor prices the anchor pair's base token in quote (USD) units from
// a reserve snapshot. The direction of the ratio is chosen by which token
// occupies slot 0; both directions yield the same price. The second return
// value is the quote-side reserve scaled to its decimals.
func ComputeAnchor(pair model.Pair, snap model.ReserveSnapshot) (decimal.Decimal, decimal.Decimal, error) {
	if err := checkReserves(snap); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	r0 := decimal.NewFromBigInt(snap.Reserve0, 0)
	r1 := decimal.NewFromBigInt(snap.Reserve1, 0)
	scale := pair.Base.Decimals - pair.Quote.Decimals

	if snap.Token0 == pair.Base.Address {
		price := r1.Div(r0).Shift(scale)
		liquidity := r1.Shift(-pair.Quote.Decimals)
		return price, liquidity, nil
	}

	price := r0.Div(r1).Shift(scale)
	liquidity := r0.Shift(-pair.Quote.Decimals)
	return price, liquidity, nil
}

// ComputeDerived prices a non-anchor pair one hop through the anchor. The
// bridge token is the anchor pair's base; the pair's own reserves give the
// ratio of its other token per bridge token, which is multiplied by the
// bridge's USD price. Liquidity is the non-bridge reserve valued in USD.
func ComputeDerived(pair model.Pair, bridge model.Token, snap model.ReserveSnapshot, bridgePrice decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !pair.Contains(bridge.Address) {
		return decimal.Zero, decimal.Zero, ErrNoAnchorRoute
	}
	if err := checkReserves(snap); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	counter := pair.Counterpart(bridge.Address)
	r0 := decimal.NewFromBigInt(snap.Reserve0, 0)
	r1 := decimal.NewFromBigInt(snap.Reserve1, 0)
	scale := bridge.Decimals - counter.Decimals

	var ratio, counterReserve decimal.Decimal
	if snap.Token0 == bridge.Address {
		ratio = r1.Div(r0).Shift(scale)
		counterReserve = r1
	} else {
		ratio = r0.Div(r1).Shift(scale)
		counterReserve = r0
	}

	price := ratio.Mul(bridgePrice)
	liquidity := counterReserve.Shift(-counter.Decimals).Mul(bridgePrice)
	return price, liquidity, nil
}

func checkReserves(snap model.ReserveSnapshot) error {
	if snap.Reserve0 == nil || snap.Reserve1 == nil {
		return ErrZeroReserve
	}
	if snap.Reserve0.Sign() == 0 || snap.Reserve1.Sign() == 0 {
		return ErrZeroReserve
	}
	return nil
}
