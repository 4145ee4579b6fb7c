package alert

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the log instead of a chat. Used for
// scan runs without a message transport.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) SendMessage(_ context.Context, chatID int64, text string) error {
	n.logger().Info("notification", zap.Int64("chat_id", chatID), zap.String("text", text))
	return nil
}

func (n *LogNotifier) SendAnimation(_ context.Context, chatID int64, gifURL, caption string) error {
	n.logger().Info("notification", zap.Int64("chat_id", chatID), zap.String("gif", gifURL), zap.String("caption", caption))
	return nil
}

func (n *LogNotifier) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}
