package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwatch/internal/alert"
	"swapwatch/internal/chart"
	"swapwatch/internal/model"
)

const welcomeText = "Welcome to swapwatch! 🚀\n" +
	"/chart <pair> [1h|24h|7d] - View charts\n" +
	"/stats <pair> - View stats\n" +
	"/setalert price > 0.1\n" +
	"/portfolio\n" +
	"/addwallet <address>\n" +
	"/alerts on/off"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "stats":
		b.handleStats(ctx, message)
	case "chart":
		b.handleChart(ctx, message)
	case "setalert":
		b.handleSetAlert(ctx, message)
	case "alerts":
		b.handleAlerts(ctx, message)
	case "portfolio":
		b.handlePortfolio(ctx, message)
	case "addwallet":
		b.handleAddWallet(ctx, message)
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.ensureSettings(ctx, message.From.ID, message.Chat.ID); err != nil {
		b.logger.Warn("create settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
	}
	b.reply(message, welcomeText)
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) {
	pair, ok := b.pairFromArgs(message.CommandArguments())
	if !ok {
		b.reply(message, "Use: "+b.pairList())
		return
	}

	metrics, err := b.prices.Metrics(ctx, pair.ID)
	if err != nil {
		// Unavailable metrics display as zeros; nothing is persisted.
		b.logger.Warn("stats metrics failed", zap.String("pair", pair.ID), zap.Error(err))
		metrics = model.PairMetrics{}
	}
	b.reply(message, alert.FormatStats(pair.ID, metrics))
}

func (b *Bot) handleChart(ctx context.Context, message *tgbotapi.Message) {
	args := strings.Fields(message.CommandArguments())

	pairArg := ""
	if len(args) > 0 {
		pairArg = args[0]
	}
	pair, ok := b.pairFromArgs(pairArg)
	if !ok {
		b.reply(message, "Use: "+b.pairList())
		return
	}

	timeframe := "24h"
	if len(args) > 1 {
		timeframe = args[1]
	}
	window, ok := chart.Timeframes[timeframe]
	if !ok {
		b.reply(message, "Timeframes: 1h, 24h, 7d")
		return
	}

	records, err := b.store.PriceHistory(ctx, pair.ID, time.Now().Add(-window))
	if err != nil {
		b.logger.Warn("price history failed", zap.String("pair", pair.ID), zap.Error(err))
		b.reply(message, "No data available.")
		return
	}

	png, err := chart.RenderPriceChart(pair.ID, timeframe, records)
	if err != nil {
		b.reply(message, "No data available.")
		return
	}
	b.replyPhoto(message, fmt.Sprintf("chart_%s.png", pair.ID), png)
}

func (b *Bot) handleSetAlert(ctx context.Context, message *tgbotapi.Message) {
	op, threshold, err := ParseSetAlert(message.CommandArguments())
	if err != nil {
		b.reply(message, "Usage: /setalert price > 0.1")
		return
	}

	settings, err := b.ensureSettings(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		b.logger.Warn("load settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not save alert.")
		return
	}

	settings.Apply(model.SettingsPatch{Threshold: &threshold, ThresholdOp: &op})
	if err := b.store.UpsertUserSettings(ctx, settings); err != nil {
		b.logger.Warn("save settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not save alert.")
		return
	}

	b.reply(message, fmt.Sprintf("Alert set for price %s %s", op, threshold.String()))
}

func (b *Bot) handleAlerts(ctx context.Context, message *tgbotapi.Message) {
	enabled := strings.EqualFold(strings.TrimSpace(message.CommandArguments()), "on")

	settings, err := b.ensureSettings(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		b.logger.Warn("load settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not update alerts.")
		return
	}

	settings.Apply(model.SettingsPatch{Alerts: &enabled})
	if err := b.store.UpsertUserSettings(ctx, settings); err != nil {
		b.logger.Warn("save settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not update alerts.")
		return
	}

	if enabled {
		b.reply(message, "Alerts enabled.")
	} else {
		b.reply(message, "Alerts disabled.")
	}
}

func (b *Bot) handlePortfolio(ctx context.Context, message *tgbotapi.Message) {
	settings, err := b.ensureSettings(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		b.logger.Warn("load settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		return
	}
	if len(settings.Wallets) == 0 {
		b.reply(message, "No wallets. Use /addwallet <address>.")
		return
	}

	var sb strings.Builder
	sb.WriteString("💼 *Portfolio*\n")
	for _, wallet := range settings.Wallets {
		balance, err := b.chain.Balance(ctx, common.HexToAddress(wallet))
		if err != nil {
			fmt.Fprintf(&sb, "Wallet %s: Error fetching balance\n", alert.ShortAddress(wallet))
			continue
		}
		native := decimal.NewFromBigInt(balance, 0).Shift(-18)
		fmt.Fprintf(&sb, "Wallet %s: %s VSG\n", alert.ShortAddress(wallet), native.StringFixed(4))
	}
	b.reply(message, sb.String())
}

func (b *Bot) handleAddWallet(ctx context.Context, message *tgbotapi.Message) {
	wallet := strings.TrimSpace(message.CommandArguments())
	if !common.IsHexAddress(wallet) {
		b.reply(message, "Invalid wallet address.")
		return
	}

	settings, err := b.ensureSettings(ctx, message.From.ID, message.Chat.ID)
	if err != nil {
		b.logger.Warn("load settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not save wallet.")
		return
	}

	settings.Apply(model.SettingsPatch{AddWallet: &wallet})
	if err := b.store.UpsertUserSettings(ctx, settings); err != nil {
		b.logger.Warn("save settings failed", zap.Int64("user_id", message.From.ID), zap.Error(err))
		b.reply(message, "Could not save wallet.")
		return
	}

	b.reply(message, fmt.Sprintf("Wallet %s added.", alert.ShortAddress(wallet)))
}

func (b *Bot) pairFromArgs(args string) (model.Pair, bool) {
	fields := strings.Fields(args)
	id := b.defaultPair
	if len(fields) > 0 {
		id = fields[0]
	}
	pair, ok := b.pairs[id]
	return pair, ok
}

func (b *Bot) pairList() string {
	ids := make([]string, 0, len(b.pairs))
	for id := range b.pairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
