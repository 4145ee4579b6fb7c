package pricing

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwatch/internal/model"
)

// ChainReader supplies the on-chain reads the oracle depends on.
type ChainReader interface {
	Snapshot(ctx context.Context, pair common.Address) (model.ReserveSnapshot, error)
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
}

// Recorder persists price history and answers the rolling volume query.
type Recorder interface {
	AppendPriceRecord(ctx context.Context, rec model.PriceRecord) error
	Volume24h(ctx context.Context, pairID string, now time.Time) (decimal.Decimal, error)
}

// Oracle derives USD metrics for tracked pairs. Non-anchor pairs are priced
// through the single anchor pair, exactly one hop; the split into anchor and
// derived computations makes a deeper chain impossible.
type Oracle struct {
	pairs  map[string]model.Pair
	anchor model.Pair
	chain  ChainReader
	store  Recorder
	logger *zap.Logger
	now    func() time.Time
}

// NewOracle builds an oracle over the configured pair set. The set must
// contain exactly one anchor pair.
func NewOracle(pairs []model.Pair, chain ChainReader, store Recorder, logger *zap.Logger) (*Oracle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[string]model.Pair, len(pairs))
	var anchor *model.Pair
	for _, pair := range pairs {
		byID[pair.ID] = pair
		if pair.Anchor {
			if anchor != nil {
				return nil, fmt.Errorf("multiple anchor pairs: %q and %q", anchor.ID, pair.ID)
			}
			p := pair
			anchor = &p
		}
	}
	if anchor == nil {
		return nil, fmt.Errorf("exactly one anchor pair is required")
	}

	return &Oracle{
		pairs:  byID,
		anchor: *anchor,
		chain:  chain,
		store:  store,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Pair looks up a configured pair by id.
func (o *Oracle) Pair(id string) (model.Pair, bool) {
	pair, ok := o.pairs[id]
	return pair, ok
}

// Pairs returns the configured pair set.
func (o *Oracle) Pairs() []model.Pair {
	out := make([]model.Pair, 0, len(o.pairs))
	for _, pair := range o.pairs {
		out = append(out, pair)
	}
	return out
}

// Metrics computes the pair's current USD price, liquidity, market cap and
// rolling 24h volume, and appends one PriceRecord on success. On any failure
// nothing is persisted and the zero metrics must be treated as unavailable,
// not as a real price of zero.
func (o *Oracle) Metrics(ctx context.Context, pairID string) (model.PairMetrics, error) {
	pair, ok := o.pairs[pairID]
	if !ok {
		return model.PairMetrics{}, fmt.Errorf("%w: %s", ErrUnknownPair, pairID)
	}

	price, liquidity, err := o.pairPrice(ctx, pair)
	if err != nil {
		return model.PairMetrics{}, err
	}

	supplyRaw, err := o.chain.TotalSupply(ctx, pair.Base.Address)
	if err != nil {
		return model.PairMetrics{}, fmt.Errorf("total supply %s: %w", pair.Base.Symbol, err)
	}
	supply := decimal.NewFromBigInt(supplyRaw, 0).Shift(-pair.Base.Decimals)
	marketCap := price.Mul(supply)

	now := o.now()
	volume, err := o.store.Volume24h(ctx, pair.ID, now)
	if err != nil {
		return model.PairMetrics{}, fmt.Errorf("volume 24h %s: %w", pair.ID, err)
	}

	metrics := model.PairMetrics{
		Price:     price,
		Liquidity: liquidity,
		MarketCap: marketCap,
		Volume24h: volume,
	}

	record := model.PriceRecord{
		PairID:    pair.ID,
		Price:     metrics.Price,
		Liquidity: metrics.Liquidity,
		MarketCap: metrics.MarketCap,
		Volume24h: metrics.Volume24h,
		CreatedAt: now,
	}
	if err := o.store.AppendPriceRecord(ctx, record); err != nil {
		// History write failure does not invalidate the computed metrics.
		o.logger.Warn("append price record failed", zap.String("pair", pair.ID), zap.Error(err))
	}

	return metrics, nil
}

func (o *Oracle) pairPrice(ctx context.Context, pair model.Pair) (decimal.Decimal, decimal.Decimal, error) {
	snap, err := o.chain.Snapshot(ctx, pair.Address)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("reserves %s: %w", pair.ID, err)
	}

	if pair.Anchor {
		return ComputeAnchor(pair, snap)
	}

	anchorSnap, err := o.chain.Snapshot(ctx, o.anchor.Address)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("anchor reserves %s: %w", o.anchor.ID, err)
	}
	anchorPrice, _, err := ComputeAnchor(o.anchor, anchorSnap)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("anchor price %s: %w", o.anchor.ID, err)
	}

	return ComputeDerived(pair, o.anchor.Base, snap, anchorPrice)
}
