package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"swapwatch/internal/alert"
	"swapwatch/internal/bot"
	"swapwatch/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "swapwatch",
		Short:        "AMM pair tracker and buy-alert bot",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the swap scanner and the Telegram bot",
		RunE:  runBot,
	}
	addCommonFlags(runCmd.Flags())
	runCmd.Flags().String("telegram-token", "", "Telegram bot token")
	runCmd.Flags().Int64("chat-id", 0, "fallback chat id for alerts")
	runCmd.Flags().String("buy-gif", "", "GIF URL attached to buy alerts")

	root.AddCommand(runCmd)

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan pass without the bot",
		RunE:  runScan,
	}
	addCommonFlags(scanCmd.Flags())

	root.AddCommand(scanCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "", "chain RPC URL")
	flags.String("pg-dsn", "", "Postgres DSN")
	flags.Duration("poll-interval", time.Second, "scan poll interval")
	flags.Uint64("batch-size", 2000, "blocks per scan batch")
	flags.Int("max-retries", 5, "maximum retry attempts for chain reads")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("explorer-tx-url", "", "explorer transaction URL prefix")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.TelegramToken == "" {
		return fmt.Errorf("telegram token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	tgBot, err := bot.New(cfg.TelegramToken, deps.pairs, deps.store, deps.oracle, deps.chain, cfg.DefaultChatID, logger)
	if err != nil {
		return fmt.Errorf("connect telegram: %w", err)
	}

	dispatcher := alert.NewDispatcher(deps.store, tgBot, cfg.BuyGIFURL, cfg.ExplorerTxURL, cfg.DefaultChatID, logger)
	swapScanner := deps.newScanner(cfg, dispatcher, logger)

	logger.Info("swapwatch start",
		zap.String("rpc", cfg.RPCURL),
		zap.Int("pairs", len(deps.pairs)),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Uint64("batch_size", cfg.BatchSize),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return swapScanner.Run(groupCtx) })
	group.Go(func() error { return tgBot.Run(groupCtx) })

	err = group.Wait()
	if ctx.Err() != nil {
		logger.Info("shutdown")
		return nil
	}
	return err
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	dispatcher := alert.NewDispatcher(deps.store, &alert.LogNotifier{Logger: logger}, cfg.BuyGIFURL, cfg.ExplorerTxURL, cfg.DefaultChatID, logger)
	swapScanner := deps.newScanner(cfg, dispatcher, logger)

	return swapScanner.ScanOnce(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
