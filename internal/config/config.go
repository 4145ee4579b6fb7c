package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL        string
	PGDSN         string
	TelegramToken string
	DefaultChatID int64
	PollInterval  time.Duration
	BatchSize     uint64
	MaxRetries    int
	RetryBackoff  time.Duration
	BuyGIFURL     string
	ExplorerTxURL string
	LogLevel      string
	Pairs         []PairConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", defaultRPCURL)
	v.SetDefault("poll-interval", time.Second)
	v.SetDefault("batch-size", uint64(2000))
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("buy-gif", defaultBuyGIFURL)
	v.SetDefault("explorer-tx-url", defaultExplorerTxURL)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		PGDSN:         v.GetString("pg-dsn"),
		TelegramToken: v.GetString("telegram-token"),
		DefaultChatID: v.GetInt64("chat-id"),
		PollInterval:  v.GetDuration("poll-interval"),
		BatchSize:     v.GetUint64("batch-size"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		BuyGIFURL:     v.GetString("buy-gif"),
		ExplorerTxURL: v.GetString("explorer-tx-url"),
		LogLevel:      v.GetString("log-level"),
	}

	if v.IsSet("pairs") {
		if err := v.UnmarshalKey("pairs", &cfg.Pairs); err != nil {
			return Config{}, fmt.Errorf("parse pairs: %w", err)
		}
	} else {
		cfg.Pairs = DefaultPairs()
	}

	return cfg, nil
}
