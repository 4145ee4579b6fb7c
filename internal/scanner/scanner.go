package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapwatch/internal/dedup"
	"swapwatch/internal/model"
)

// EventSource supplies chain reads for the scan loop.
type EventSource interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	Token0(ctx context.Context, pair common.Address) (common.Address, error)
	SwapEvents(ctx context.Context, pair common.Address, fromBlock, toBlock uint64) ([]model.SwapEvent, error)
}

// PriceSource computes current pair metrics.
type PriceSource interface {
	Metrics(ctx context.Context, pairID string) (model.PairMetrics, error)
}

// TradeStore persists processed buys and per-pair scan cursors. The bool
// result of AppendTransaction is the authoritative dedup claim.
type TradeStore interface {
	AppendTransaction(ctx context.Context, rec model.TransactionRecord) (bool, error)
	LoadCursor(ctx context.Context, name string) (uint64, bool, error)
	SaveCursor(ctx context.Context, name string, block uint64) error
}

// AlertSink fans a qualifying buy out to subscribers.
type AlertSink interface {
	Dispatch(ctx context.Context, pair model.Pair, event model.SwapEvent, buy Classification, metrics model.PairMetrics) (int, error)
}

// Config holds runtime settings for the scanner.
type Config struct {
	Pairs        []model.Pair
	PollInterval time.Duration
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	Workers      int
}

// Scanner polls the tracked pairs for new swap events, classifies them, and
// hands qualifying buys to the alert sink. Pairs are scanned in parallel;
// events within one pair are handled in block-then-log order.
type Scanner struct {
	cfg    Config
	chain  EventSource
	prices PriceSource
	store  TradeStore
	seen   *dedup.Memory
	alerts AlertSink
	logger *zap.Logger
}

// NewScanner builds a Scanner with its dependencies.
func NewScanner(cfg Config, chain EventSource, prices PriceSource, store TradeStore, alerts AlertSink, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = len(cfg.Pairs)
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 2000
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Scanner{
		cfg:    cfg,
		chain:  chain,
		prices: prices,
		store:  store,
		seen:   dedup.NewMemory(),
		alerts: alerts,
		logger: logger,
	}
}

// Run executes scan passes at the configured interval until the context is
// canceled. A failed pass is logged and retried on the next tick; no scan
// error is fatal.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := s.ScanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("scan pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanOnce runs a single scan pass over every tracked pair. One pair's
// failure is logged and does not abort the others.
func (s *Scanner) ScanOnce(ctx context.Context) error {
	if len(s.cfg.Pairs) == 0 {
		return fmt.Errorf("at least one tracked pair is required")
	}

	var latest uint64
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		latest, err = s.chain.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.Workers)

	for _, pair := range s.cfg.Pairs {
		pair := pair
		group.Go(func() error {
			if err := s.scanPair(groupCtx, pair, latest); err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				s.logger.Warn("pair scan failed", zap.String("pair", pair.ID), zap.Error(err))
			}
			return nil
		})
	}

	return group.Wait()
}

func (s *Scanner) scanPair(ctx context.Context, pair model.Pair, latest uint64) error {
	cursorName := "scanner:" + pair.ID

	cursor, ok, err := s.store.LoadCursor(ctx, cursorName)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	// Without a cursor the scan starts at the chain tip; history before the
	// first run is not backfilled.
	from := latest
	if ok {
		from = cursor + 1
	}
	if from > latest {
		return nil
	}

	token0, err := s.chain.Token0(ctx, pair.Address)
	if err != nil {
		return fmt.Errorf("token0: %w", err)
	}

	ranges, err := SplitRange(from, latest, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var events []model.SwapEvent
		err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			events, err = s.chain.SwapEvents(ctx, pair.Address, blockRange.From, blockRange.To)
			return err
		})
		if err != nil {
			return fmt.Errorf("swap events %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		for _, event := range events {
			if err := s.handleEvent(ctx, pair, token0, event); err != nil {
				return err
			}
		}

		if err := s.store.SaveCursor(ctx, cursorName, blockRange.To); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
	}

	return nil
}

func (s *Scanner) handleEvent(ctx context.Context, pair model.Pair, token0 common.Address, event model.SwapEvent) error {
	if err := event.Validate(); err != nil {
		s.logger.Warn("invalid swap event", zap.String("pair", pair.ID), zap.Error(err))
		return nil
	}

	buy := Classify(pair, token0, event)
	if !buy.IsBuy {
		return nil
	}

	metrics, err := s.prices.Metrics(ctx, pair.ID)
	if err != nil {
		// An unavailable price is not a price of zero: the buy is neither
		// recorded nor alerted.
		s.logger.Warn("price unavailable, skipping buy",
			zap.String("pair", pair.ID),
			zap.String("tx", event.TxHash),
			zap.Error(err),
		)
		return nil
	}

	claimed, err := s.seen.TryClaim(ctx, event.TxHash)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	record := model.TransactionRecord{
		TxHash:    event.TxHash,
		PairID:    pair.ID,
		Amount:    buy.Amount,
		USDValue:  buy.Amount.Mul(metrics.Price),
		Price:     metrics.Price,
		CreatedAt: eventTime(event),
	}

	// The insert is the dedup claim; it must land before any notification so
	// a replayed event can never alert twice.
	inserted, err := s.store.AppendTransaction(ctx, record)
	if err != nil {
		s.logger.Error("record transaction failed",
			zap.String("pair", pair.ID),
			zap.String("tx", event.TxHash),
			zap.Error(err),
		)
		return nil
	}
	if !inserted {
		s.logger.Debug("duplicate transaction skipped",
			zap.String("pair", pair.ID),
			zap.String("tx", event.TxHash),
		)
		return nil
	}

	sent, err := s.alerts.Dispatch(ctx, pair, event, buy, metrics)
	if err != nil {
		s.logger.Error("alert dispatch failed",
			zap.String("pair", pair.ID),
			zap.String("tx", event.TxHash),
			zap.Error(err),
		)
		return nil
	}

	s.logger.Info("buy processed",
		zap.String("pair", pair.ID),
		zap.String("tx", event.TxHash),
		zap.String("amount", buy.Amount.String()),
		zap.String("usd_value", record.USDValue.String()),
		zap.Int("alerts_sent", sent),
	)
	return nil
}

func eventTime(event model.SwapEvent) time.Time {
	if event.Timestamp > 0 {
		return time.Unix(int64(event.Timestamp), 0).UTC()
	}
	return time.Now().UTC()
}
