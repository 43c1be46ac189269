// Package notify delivers trade and resolution alerts to the configured
// channels (Telegram, Discord). Delivery is best-effort: a sender failure is
// logged and never interrupts the trading loop.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// Event types the notifier can emit.
const (
	EventTradePlaced    = "trade_placed"
	EventMarketResolved = "market_resolved"
	EventError          = "error"
)

// Sender is the interface each notification channel implements.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender.
	Name() string
}

// Notifier dispatches notifications to all registered senders, filtered by an
// allowed set of event types. Zero senders makes every call a no-op.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// New creates a Notifier delivering to the given senders. Only events listed
// in events are forwarded; an empty list allows everything.
func New(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// TradePlaced announces a newly placed bet.
func (n *Notifier) TradePlaced(ctx context.Context, pos domain.Position) {
	n.notify(ctx, EventTradePlaced, "Trade placed",
		fmt.Sprintf("%s M%.2f on %q at %.0f%%", pos.Side, pos.Amount, pos.Question, pos.EntryProbability*100))
}

// MarketResolved announces a settled position and its realized P&L.
func (n *Notifier) MarketResolved(ctx context.Context, pos domain.Position, pnl float64) {
	outcome := "LOST"
	if pnl > 0 {
		outcome = "WON"
	}
	n.notify(ctx, EventMarketResolved, "Market resolved",
		fmt.Sprintf("%s %q: P&L %+.2f", outcome, pos.Question, pnl))
}

// Error announces an operational failure worth the operator's attention.
func (n *Notifier) Error(ctx context.Context, scope string, err error) {
	n.notify(ctx, EventError, "Bot error", fmt.Sprintf("%s: %v", scope, err))
}

// notify filters by event type and fans out to every sender. Errors from one
// sender do not prevent delivery to the rest.
func (n *Notifier) notify(ctx context.Context, event, title, message string) {
	if len(n.senders) == 0 {
		return
	}
	if len(n.events) > 0 && !n.events[event] {
		return
	}

	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.WarnContext(ctx, "notification sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}
}
