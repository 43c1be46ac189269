package tracker

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

func newTestTracker(t *testing.T) *PerformanceTracker {
	t.Helper()
	return newTestTrackerAt(t, filepath.Join(t.TempDir(), "perf.json"))
}

func newTestTrackerAt(t *testing.T, path string) *PerformanceTracker {
	t.Helper()
	tr, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return tr
}

func openPosition(marketID string, side domain.Outcome, amount, entryProb float64) domain.Position {
	return domain.Position{
		MarketID:         marketID,
		Question:         "Will it happen?",
		Side:             side,
		Amount:           amount,
		EntryProbability: entryProb,
	}
}

func TestRecordTrade(t *testing.T) {
	tr := newTestTracker(t)

	pos := tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))

	assert.NotEmpty(t, pos.ID)
	assert.False(t, pos.PlacedAt.IsZero())
	assert.Equal(t, domain.PositionStatusOpen, pos.Status)
	assert.True(t, tr.HasOpenPosition("m1"))
	assert.False(t, tr.HasOpenPosition("m2"))

	stats := tr.Stats()
	assert.Equal(t, 1, stats.TotalTrades)
	assert.Equal(t, 1, stats.OpenPositions)
	assert.Equal(t, 25.0, stats.TotalInvested)
}

func TestResolve(t *testing.T) {
	t.Run("yes win pays against entry odds", func(t *testing.T) {
		tr := newTestTracker(t)
		tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))

		pnl, err := tr.Resolve("m1", true)
		require.NoError(t, err)
		// 25 * (1/0.4 - 1) = 37.5
		assert.InDelta(t, 37.5, pnl, 1e-9)
		assert.False(t, tr.HasOpenPosition("m1"))
	})

	t.Run("no win uses flipped odds", func(t *testing.T) {
		tr := newTestTracker(t)
		tr.RecordTrade(openPosition("m1", domain.OutcomeNo, 30, 0.8))

		pnl, err := tr.Resolve("m1", true)
		require.NoError(t, err)
		// NO entry odds = 0.2; 30 * (1/0.2 - 1) = 120
		assert.InDelta(t, 120.0, pnl, 1e-9)
	})

	t.Run("loss forfeits the stake", func(t *testing.T) {
		tr := newTestTracker(t)
		tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))

		pnl, err := tr.Resolve("m1", false)
		require.NoError(t, err)
		assert.Equal(t, -25.0, pnl)
	})

	t.Run("resolving twice never double-counts", func(t *testing.T) {
		tr := newTestTracker(t)
		tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))

		first, err := tr.Resolve("m1", true)
		require.NoError(t, err)
		second, err := tr.Resolve("m1", true)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		stats := tr.Stats()
		assert.Equal(t, 1, stats.Wins)
		assert.InDelta(t, first, stats.PnL, 1e-9)
	})

	t.Run("unknown market is not found", func(t *testing.T) {
		tr := newTestTracker(t)
		_, err := tr.Resolve("ghost", true)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestWonSide(t *testing.T) {
	tests := []struct {
		name       string
		side       domain.Outcome
		resolution string
		finalProb  float64
		won        bool
		settles    bool
	}{
		{"yes side on YES", domain.OutcomeYes, "YES", 1, true, true},
		{"yes side on NO", domain.OutcomeYes, "NO", 0, false, true},
		{"no side on NO", domain.OutcomeNo, "NO", 0, true, true},
		{"no side on YES", domain.OutcomeNo, "YES", 1, false, true},
		{"yes side on MKT above half", domain.OutcomeYes, "MKT", 0.7, true, true},
		{"yes side on MKT below half", domain.OutcomeYes, "MKT", 0.3, false, true},
		{"no side on MKT below half", domain.OutcomeNo, "MKT", 0.3, true, true},
		{"cancel does not settle", domain.OutcomeYes, "CANCEL", 0.5, false, false},
		{"unknown does not settle", domain.OutcomeYes, "", 0.5, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			won, settles := WonSide(tt.side, tt.resolution, tt.finalProb)
			assert.Equal(t, tt.settles, settles)
			if settles {
				assert.Equal(t, tt.won, won)
			}
		})
	}
}

func TestStats(t *testing.T) {
	tr := newTestTracker(t)
	tr.UpdateBalance(1000)

	tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))
	tr.RecordTrade(openPosition("m2", domain.OutcomeNo, 10, 0.6))
	tr.RecordTrade(openPosition("m3", domain.OutcomeYes, 20, 0.5))

	_, err := tr.Resolve("m1", true) // +37.5
	require.NoError(t, err)
	_, err = tr.Resolve("m2", false) // -10
	require.NoError(t, err)

	stats := tr.Stats()
	assert.Equal(t, 3, stats.TotalTrades)
	assert.Equal(t, 1, stats.OpenPositions)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1, stats.Losses)
	assert.InDelta(t, 27.5, stats.PnL, 1e-9)
	// Win rate counts settled positions only: 1 of 2.
	assert.Equal(t, 50.0, stats.WinRate)
	// ROI over settled stakes: 27.5 / 35.
	assert.InDelta(t, 27.5/35*100, stats.ROI, 1e-9)
	assert.Equal(t, 55.0, stats.TotalInvested)
	assert.Equal(t, 1000.0, stats.StartingBalance)
}

func TestUpdateBalance(t *testing.T) {
	tr := newTestTracker(t)

	tr.UpdateBalance(1000)
	tr.UpdateBalance(950)

	stats := tr.Stats()
	// The first observed balance is pinned as the starting balance.
	assert.Equal(t, 1000.0, stats.StartingBalance)
	assert.Equal(t, 950.0, stats.CurrentBalance)
}

func TestLedgerPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.json")

	tr := newTestTrackerAt(t, path)
	tr.UpdateBalance(1000)
	tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))
	_, err := tr.Resolve("m1", true)
	require.NoError(t, err)
	tr.RecordTrade(openPosition("m2", domain.OutcomeNo, 10, 0.6))

	// A fresh tracker on the same path sees the full history.
	reloaded := newTestTrackerAt(t, path)
	assert.True(t, reloaded.HasOpenPosition("m2"))
	assert.False(t, reloaded.HasOpenPosition("m1"))

	stats := reloaded.Stats()
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, 1000.0, stats.StartingBalance)
	assert.InDelta(t, 37.5, stats.PnL, 1e-9)
}

func TestCorruptLedgerIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perf.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestMissingLedgerStartsEmpty(t *testing.T) {
	tr := newTestTracker(t)
	stats := tr.Stats()
	assert.Zero(t, stats.TotalTrades)
	assert.Empty(t, tr.OpenPositions())
}

func TestPortfolio(t *testing.T) {
	tr := newTestTracker(t)
	tr.RecordTrade(openPosition("m1", domain.OutcomeYes, 25, 0.4))
	tr.RecordTrade(openPosition("m2", domain.OutcomeNo, 15, 0.6))
	_, err := tr.Resolve("m2", false)
	require.NoError(t, err)

	p := tr.Portfolio(1000)
	assert.Equal(t, 1000.0, p.TotalCapital)
	assert.Equal(t, 1, p.OpenPositions)
	assert.Equal(t, 25.0, p.TotalAtRisk)
	assert.InDelta(t, 0.025, p.RiskRatio(), 1e-9)
}
