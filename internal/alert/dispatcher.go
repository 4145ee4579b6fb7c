package alert

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwatch/internal/model"
	"swapwatch/internal/scanner"
)

// Notifier delivers outbound messages to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendAnimation(ctx context.Context, chatID int64, gifURL, caption string) error
}

// SettingsSource lists the subscribers eligible for alerts.
type SettingsSource interface {
	ListSubscribers(ctx context.Context) ([]model.UserSettings, error)
}

// Dispatcher fans a qualifying buy out to every matching subscriber.
type Dispatcher struct {
	settings      SettingsSource
	notifier      Notifier
	gifURL        string
	explorerTxURL string
	defaultChatID int64
	logger        *zap.Logger
}

func NewDispatcher(settings SettingsSource, notifier Notifier, gifURL, explorerTxURL string, defaultChatID int64, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		settings:      settings,
		notifier:      notifier,
		gifURL:        gifURL,
		explorerTxURL: explorerTxURL,
		defaultChatID: defaultChatID,
		logger:        logger,
	}
}

// Dispatch notifies every subscriber whose threshold the current price meets.
// A delivery failure for one subscriber never blocks the others; the number
// of successful sends is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, pair model.Pair, event model.SwapEvent, buy scanner.Classification, metrics model.PairMetrics) (int, error) {
	if !buy.IsBuy {
		return 0, nil
	}

	subscribers, err := d.settings.ListSubscribers(ctx)
	if err != nil {
		return 0, err
	}

	caption := FormatBuyAlert(pair, event, buy, metrics, d.explorerTxURL)

	sent := 0
	for _, subscriber := range subscribers {
		if !ShouldNotify(subscriber, metrics.Price) {
			continue
		}
		chatID := subscriber.ChatID
		if chatID == 0 {
			chatID = d.defaultChatID
		}
		if err := d.notifier.SendAnimation(ctx, chatID, d.gifURL, caption); err != nil {
			d.logger.Warn("alert delivery failed",
				zap.Int64("user_id", subscriber.UserID),
				zap.String("pair", pair.ID),
				zap.String("tx", event.TxHash),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	return sent, nil
}

// ShouldNotify reports whether a subscriber gets this alert: alerts must be
// enabled, and a configured threshold must be met by price >= threshold. The
// comparison operator the user typed is stored but never applied.
func ShouldNotify(settings model.UserSettings, price decimal.Decimal) bool {
	if !settings.Alerts {
		return false
	}
	if !settings.Threshold.Valid {
		return true
	}
	return price.GreaterThanOrEqual(settings.Threshold.Decimal)
}
