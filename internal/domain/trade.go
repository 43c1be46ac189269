package domain

import "time"

// TradeRecord is an append-only ledger entry mirroring a position at
// execution time, plus its outcome once the market settles.
type TradeRecord struct {
	ID               string
	MarketID         string
	Question         string
	Side             Outcome
	Amount           float64
	EntryProbability float64
	Rationale        string
	PlacedAt         time.Time

	// Outcome fields, filled on resolution.
	Resolved   bool
	Won        bool
	PnL        float64
	ResolvedAt *time.Time
}

// Stats summarizes realized and in-flight performance. WinRate counts only
// positions with a terminal status.
type Stats struct {
	TotalTrades   int
	OpenPositions int
	Wins          int
	Losses        int
	TotalInvested float64
	PnL           float64
	ROI           float64 // PnL over invested amount of settled trades, in percent
	WinRate       float64 // in percent

	StartingBalance float64
	CurrentBalance  float64
}
