// Package bot is the Telegram front end: command handling and outbound
// message delivery. No engine logic lives here beyond reading and merging
// user settings.
package bot

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"swapwatch/internal/model"
)

// SettingsStore persists user settings and serves price history for charts.
type SettingsStore interface {
	GetUserSettings(ctx context.Context, userID int64) (model.UserSettings, bool, error)
	UpsertUserSettings(ctx context.Context, settings model.UserSettings) error
	PriceHistory(ctx context.Context, pairID string, since time.Time) ([]model.PriceRecord, error)
}

// MetricsSource computes current pair metrics for stats replies.
type MetricsSource interface {
	Metrics(ctx context.Context, pairID string) (model.PairMetrics, error)
}

// BalanceReader reads native coin balances for the portfolio command.
type BalanceReader interface {
	Balance(ctx context.Context, address common.Address) (*big.Int, error)
}

// Bot wraps the Telegram API. It also implements the alert notifier so buy
// alerts and command replies share one transport.
type Bot struct {
	api           *tgbotapi.BotAPI
	store         SettingsStore
	prices        MetricsSource
	chain         BalanceReader
	pairs         map[string]model.Pair
	defaultPair   string
	defaultChatID int64
	logger        *zap.Logger
}

// New connects to the Telegram API and builds the bot.
func New(token string, pairs []model.Pair, store SettingsStore, prices MetricsSource, chain BalanceReader, defaultChatID int64, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	byID := make(map[string]model.Pair, len(pairs))
	defaultPair := ""
	for _, pair := range pairs {
		byID[pair.ID] = pair
		if pair.Anchor {
			defaultPair = pair.ID
		}
	}

	return &Bot{
		api:           api,
		store:         store,
		prices:        prices,
		chain:         chain,
		pairs:         byID,
		defaultPair:   defaultPair,
		defaultChatID: defaultChatID,
		logger:        logger,
	}, nil
}

// Run consumes Telegram updates until the context is canceled.
func (b *Bot) Run(ctx context.Context) error {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		b.handleCommand(ctx, update.Message)
	}

	return ctx.Err()
}

// SendMessage delivers a Markdown text message to a chat.
func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// SendAnimation delivers a GIF with a Markdown caption to a chat.
func (b *Bot) SendAnimation(_ context.Context, chatID int64, gifURL, caption string) error {
	anim := tgbotapi.NewAnimation(chatID, tgbotapi.FileURL(gifURL))
	anim.Caption = caption
	anim.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(anim)
	return err
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("reply failed", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
	}
}

func (b *Bot) replyPhoto(message *tgbotapi.Message, name string, png []byte) {
	photo := tgbotapi.NewPhoto(message.Chat.ID, tgbotapi.FileBytes{Name: name, Bytes: png})
	if _, err := b.api.Send(photo); err != nil {
		b.logger.Warn("photo reply failed", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
	}
}

// ensureSettings loads the user's settings, creating the default record on
// first interaction.
func (b *Bot) ensureSettings(ctx context.Context, userID, chatID int64) (model.UserSettings, error) {
	settings, ok, err := b.store.GetUserSettings(ctx, userID)
	if err != nil {
		return model.UserSettings{}, err
	}
	if ok {
		return settings, nil
	}

	settings = model.DefaultUserSettings(userID, chatID)
	if err := b.store.UpsertUserSettings(ctx, settings); err != nil {
		return model.UserSettings{}, err
	}
	return settings, nil
}
