// Package notification fans events out to operators. The default sink is the
// structured log; swapping in email or chat delivery only needs a Notifier.
package notification

import (
	"context"
	"log/slog"
)

// KindCardPendingReview fires when a confirmed card enters the review queue.
const KindCardPendingReview = "card_pending_review"

// Message is a single operator-facing event.
type Message struct {
	Kind    string
	Subject string
	Body    string
}

// Notifier delivers messages. Implementations must not block on delivery.
type Notifier interface {
	Notify(ctx context.Context, msg Message)
}

// LoggerNotifier writes notifications to the structured log.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier builds a log-backed notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LoggerNotifier) Notify(_ context.Context, msg Message) {
	n.logger.Info("notification", "kind", msg.Kind, "subject", msg.Subject, "body", msg.Body)
}
