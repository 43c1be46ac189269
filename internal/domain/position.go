package domain

import "time"

// PositionStatus tracks the lifecycle of a position. Open positions transition
// exactly once to won or lost when their market resolves.
type PositionStatus string

const (
	PositionStatusOpen PositionStatus = "open"
	PositionStatusWon  PositionStatus = "won"
	PositionStatusLost PositionStatus = "lost"
)

// Terminal reports whether the position has settled.
func (s PositionStatus) Terminal() bool {
	return s == PositionStatusWon || s == PositionStatusLost
}

// Position is a stake in one market. Created on trade execution and owned
// exclusively by the performance tracker, which mutates it only on resolution.
type Position struct {
	ID               string
	MarketID         string
	Question         string
	Side             Outcome
	Amount           float64
	EntryProbability float64 // market probability at the time of the bet
	Status           PositionStatus
	PnL              float64 // realized; zero while open
	Rationale        string
	PlacedAt         time.Time
	ResolvedAt       *time.Time
}

// PortfolioState is a read-only view derived from the set of open positions.
// Invariant: TotalAtRisk equals the sum of open position amounts.
type PortfolioState struct {
	TotalCapital  float64
	TotalAtRisk   float64
	OpenPositions int
}

// RiskRatio returns at-risk capital as a fraction of total capital.
func (p PortfolioState) RiskRatio() float64 {
	if p.TotalCapital <= 0 {
		return 0
	}
	return p.TotalAtRisk / p.TotalCapital
}
