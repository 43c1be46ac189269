package domain

import "time"

// Outcome is the side of a binary market a bet is placed on.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// Opposite returns the other side of a binary outcome.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

// Market is an immutable snapshot of a Manifold binary market, fetched once
// per polling cycle. Snapshots are never carried across cycles.
type Market struct {
	ID          string
	Question    string
	Description string
	Creator     string // creator username, exact case
	Probability float64
	Liquidity   float64
	Volume24h   float64
	CloseTime   *time.Time
	Resolved    bool
	Resolution  string // "YES", "NO", "MKT", "CANCEL", or "" while open
	URL         string
}

// Closed reports whether the market can no longer be traded: it has resolved
// or its close time has passed.
func (m Market) Closed(now time.Time) bool {
	if m.Resolved {
		return true
	}
	return m.CloseTime != nil && m.CloseTime.Before(now)
}

// EntryOdds returns the price paid per share for the given side at the
// market's current probability.
func (m Market) EntryOdds(side Outcome) float64 {
	if side == OutcomeYes {
		return m.Probability
	}
	return 1 - m.Probability
}
