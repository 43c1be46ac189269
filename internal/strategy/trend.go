package strategy

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// TrendStrategy follows the sign of recent probability movement. It needs at
// least two observations in the tracker window and abstains otherwise.
type TrendStrategy struct {
	tracker   *ProbabilityTracker
	threshold float64 // minimum |movement| to act on
}

// NewTrendStrategy creates the strategy over the shared probability tracker.
func NewTrendStrategy(tracker *ProbabilityTracker, threshold float64) *TrendStrategy {
	return &TrendStrategy{tracker: tracker, threshold: threshold}
}

// Name returns the strategy identifier.
func (s *TrendStrategy) Name() string { return "trend" }

// Evaluate signals in the direction of the movement, with confidence scaled
// by how far the move exceeds the threshold.
func (s *TrendStrategy) Evaluate(market domain.Market, _ domain.AnalysisResult, _ domain.Prediction) domain.Signal {
	move, ok := s.tracker.Movement(market.ID)
	if !ok {
		return domain.Abstain(s.Name())
	}

	magnitude := math.Abs(move)
	if magnitude < s.threshold {
		return domain.Abstain(s.Name())
	}

	side := domain.OutcomeYes
	if move < 0 {
		side = domain.OutcomeNo
	}

	// Confidence grows with the move but stays modest; trend alone is a weak
	// signal on thin play-money markets.
	confidence := math.Min(0.6, magnitude*4)

	return domain.Signal{
		Source:     s.Name(),
		Direction:  side,
		Edge:       magnitude,
		Confidence: confidence,
		Active:     true,
		Rationale:  fmt.Sprintf("probability moved %+.3f within window", move),
	}
}
