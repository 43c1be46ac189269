// Package risk converts a composite trade signal into a bounded bet size and
// gates every trade against the portfolio limits. Every check is a hard gate:
// the bet is placed at the computed size or not at all.
package risk

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// Limits holds the position-sizing parameters and portfolio caps. The Kelly
// damping fraction is configuration, not a constant.
type Limits struct {
	MaxPositionSize  float64
	MaxPortfolioRisk float64 // fraction of capital allowed at risk, in (0,1]
	MaxOpenPositions int
	KellyFraction    float64 // fraction of the full Kelly size to stake
	MinConfidence    float64
	MaxBetAmount     float64
	MinBetAmount     float64
}

// Manager sizes positions and enforces the portfolio risk gates.
type Manager struct {
	limits Limits
	logger *slog.Logger
}

// NewManager creates a Manager with the given limits.
func NewManager(limits Limits, logger *slog.Logger) *Manager {
	return &Manager{
		limits: limits,
		logger: logger.With(slog.String("component", "risk")),
	}
}

// Decision is the outcome of a sizing request. A zero Amount with a Reason is
// a normal no-trade outcome, not an error.
type Decision struct {
	Amount float64
	Reason string // populated when Amount is zero
}

// Approved reports whether the trade may proceed.
func (d Decision) Approved() bool { return d.Amount > 0 }

// SizePosition computes the stake for the signal against the market's entry
// odds, then applies the hard gates. hasOpenPosition reports whether the
// portfolio already holds a stake in this market.
func (m *Manager) SizePosition(sig domain.Signal, market domain.Market, portfolio domain.PortfolioState, hasOpenPosition bool) Decision {
	if !sig.Active {
		return m.reject(market.ID, "signal abstained")
	}
	if sig.Confidence < m.limits.MinConfidence {
		return m.reject(market.ID, fmt.Sprintf("confidence %.2f below minimum %.2f", sig.Confidence, m.limits.MinConfidence))
	}
	if hasOpenPosition {
		return m.reject(market.ID, "already holding a position in this market")
	}
	if portfolio.OpenPositions >= m.limits.MaxOpenPositions {
		return m.reject(market.ID, fmt.Sprintf("open positions at ceiling %d", m.limits.MaxOpenPositions))
	}

	amount := m.rawSize(sig, market, portfolio)
	if amount < m.limits.MinBetAmount || amount <= 0 {
		return m.reject(market.ID, fmt.Sprintf("computed size %.2f below minimum bet %.2f", amount, m.limits.MinBetAmount))
	}

	if portfolio.TotalCapital > 0 {
		ratio := (portfolio.TotalAtRisk + amount) / portfolio.TotalCapital
		if ratio > m.limits.MaxPortfolioRisk {
			return m.reject(market.ID, fmt.Sprintf("portfolio risk %.1f%% would exceed limit %.1f%%",
				ratio*100, m.limits.MaxPortfolioRisk*100))
		}
	}

	return Decision{Amount: amount}
}

// rawSize derives the fractional-Kelly stake: the full Kelly fraction for the
// signal's edge at the entry odds, damped by KellyFraction and the signal
// confidence, then capped at the absolute limits.
func (m *Manager) rawSize(sig domain.Signal, market domain.Market, portfolio domain.PortfolioState) float64 {
	q := market.EntryOdds(sig.Direction)
	if q >= 1 {
		return 0
	}
	kelly := sig.Edge / (1 - q)

	raw := kelly * m.limits.KellyFraction * sig.Confidence * portfolio.TotalCapital
	capped := math.Min(raw, math.Min(m.limits.MaxBetAmount, m.limits.MaxPositionSize))
	if capped <= 0 {
		return 0
	}
	// Manifold bets are whole-mana friendly; round down to cents to avoid
	// floating-point dust in the API payload.
	return math.Floor(capped*100) / 100
}

func (m *Manager) reject(marketID, reason string) Decision {
	m.logger.Info("trade rejected",
		slog.String("market_id", marketID),
		slog.String("reason", reason),
	)
	return Decision{Reason: reason}
}
