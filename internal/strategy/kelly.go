package strategy

import (
	"fmt"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// KellyStrategy expresses the LLM's edge in Kelly terms: its signal edge is
// the raw Kelly fraction f = (p − q) / (1 − q) for the favored side, which
// weighs the same probability gap more heavily when the market price already
// sits near the extremes.
type KellyStrategy struct{}

// NewKellyStrategy creates the strategy.
func NewKellyStrategy() *KellyStrategy { return &KellyStrategy{} }

// Name returns the strategy identifier.
func (s *KellyStrategy) Name() string { return "kelly" }

// Evaluate abstains when the LLM is unavailable or the Kelly fraction is not
// positive for either side.
func (s *KellyStrategy) Evaluate(market domain.Market, _ domain.AnalysisResult, pred domain.Prediction) domain.Signal {
	if pred.Unavailable {
		return domain.Abstain(s.Name())
	}

	side := direction(pred.Probability, market.Probability)

	// Probability estimate and market odds for the chosen side.
	p := pred.Probability
	q := market.Probability
	if side == domain.OutcomeNo {
		p = 1 - pred.Probability
		q = 1 - market.Probability
	}

	if q >= 1 || p <= q {
		return domain.Abstain(s.Name())
	}
	kelly := (p - q) / (1 - q)

	return domain.Signal{
		Source:     s.Name(),
		Direction:  side,
		Edge:       kelly,
		Confidence: pred.Confidence,
		Active:     true,
		Rationale:  fmt.Sprintf("kelly fraction %.3f for %s at %.2f", kelly, side, q),
	}
}
