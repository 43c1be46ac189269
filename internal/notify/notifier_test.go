package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// recordingSender captures every delivered message.
type recordingSender struct {
	name     string
	err      error
	messages []string
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, title, message string) error {
	r.messages = append(r.messages, title+": "+message)
	return r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPosition() domain.Position {
	return domain.Position{
		MarketID:         "m1",
		Question:         "Will it happen?",
		Side:             domain.OutcomeYes,
		Amount:           25,
		EntryProbability: 0.4,
	}
}

func TestNotifierDelivery(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := New([]Sender{sender}, []string{EventTradePlaced, EventMarketResolved, EventError}, discardLogger())

	n.TradePlaced(context.Background(), testPosition())
	n.MarketResolved(context.Background(), testPosition(), 37.5)
	n.Error(context.Background(), "cycle", errors.New("boom"))

	require.Len(t, sender.messages, 3)
	assert.Contains(t, sender.messages[0], "YES")
	assert.Contains(t, sender.messages[0], "25")
	assert.Contains(t, sender.messages[1], "WON")
	assert.Contains(t, sender.messages[1], "+37.50")
	assert.Contains(t, sender.messages[2], "boom")
}

func TestNotifierEventFilter(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := New([]Sender{sender}, []string{EventTradePlaced}, discardLogger())

	n.TradePlaced(context.Background(), testPosition())
	n.MarketResolved(context.Background(), testPosition(), -25)
	n.Error(context.Background(), "cycle", errors.New("boom"))

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "Trade placed")
}

func TestNotifierSenderFailureIsolated(t *testing.T) {
	failing := &recordingSender{name: "failing", err: errors.New("unreachable")}
	healthy := &recordingSender{name: "healthy"}
	n := New([]Sender{failing, healthy}, nil, discardLogger())

	n.TradePlaced(context.Background(), testPosition())

	// The failing sender does not block delivery to the healthy one.
	assert.Len(t, failing.messages, 1)
	assert.Len(t, healthy.messages, 1)
}

func TestNotifierLossMessage(t *testing.T) {
	sender := &recordingSender{name: "rec"}
	n := New([]Sender{sender}, nil, discardLogger())

	n.MarketResolved(context.Background(), testPosition(), -25)

	require.Len(t, sender.messages, 1)
	assert.Contains(t, sender.messages[0], "LOST")
	assert.Contains(t, sender.messages[0], "-25.00")
}

func TestNotifierNoSendersIsNoop(t *testing.T) {
	n := New(nil, nil, discardLogger())
	// Must not panic.
	n.TradePlaced(context.Background(), testPosition())
	n.Error(context.Background(), "x", errors.New("y"))
}
