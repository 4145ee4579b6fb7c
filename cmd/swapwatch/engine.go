package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"swapwatch/internal/chain"
	"swapwatch/internal/config"
	"swapwatch/internal/model"
	"swapwatch/internal/pricing"
	"swapwatch/internal/scanner"
	"swapwatch/internal/storage/postgres"
)

// engine bundles the shared dependencies of the run and scan commands.
type engine struct {
	pairs  []model.Pair
	chain  *chain.Client
	store  *postgres.Store
	oracle *pricing.Oracle
}

func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*engine, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	if cfg.PGDSN == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}

	pairs, err := cfg.TrackedPairs()
	if err != nil {
		return nil, err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		chainClient.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		chainClient.Close()
		return nil, err
	}

	oracle, err := pricing.NewOracle(pairs, chainClient, store, logger)
	if err != nil {
		store.Close()
		chainClient.Close()
		return nil, err
	}

	return &engine{
		pairs:  pairs,
		chain:  chainClient,
		store:  store,
		oracle: oracle,
	}, nil
}

func (e *engine) newScanner(cfg config.Config, alerts scanner.AlertSink, logger *zap.Logger) *scanner.Scanner {
	return scanner.NewScanner(scanner.Config{
		Pairs:        e.pairs,
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, e.chain, e.oracle, e.store, alerts, logger)
}

func (e *engine) close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.chain != nil {
		e.chain.Close()
	}
}
