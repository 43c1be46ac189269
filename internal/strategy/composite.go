package strategy

import (
	"strings"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// Composite aggregates the active signals of its sub-strategies into one
// confidence-weighted signal. With zero active sub-signals it abstains; it
// never invents a default direction.
type Composite struct {
	strategies []Strategy
}

// NewComposite creates a composite over the given sub-strategies.
func NewComposite(strategies ...Strategy) *Composite {
	return &Composite{strategies: strategies}
}

// Name returns the strategy identifier.
func (c *Composite) Name() string { return "composite" }

// Evaluate runs every sub-strategy and merges the active signals. When the
// active signals disagree on direction, the side holding the single most
// confident signal wins; an exact confidence tie between the sides abstains
// (conservative bias). Edge and confidence of the result are the
// confidence-weighted averages over the winning side's signals.
func (c *Composite) Evaluate(market domain.Market, analysis domain.AnalysisResult, pred domain.Prediction) domain.Signal {
	var active []domain.Signal
	for _, s := range c.strategies {
		if sig := s.Evaluate(market, analysis, pred); sig.Active {
			active = append(active, sig)
		}
	}
	if len(active) == 0 {
		return domain.Abstain(c.Name())
	}

	side, ok := dominantSide(active)
	if !ok {
		return domain.Abstain(c.Name())
	}

	var (
		weightSum    float64
		edgeSum      float64
		confSum      float64
		contributors []string
		rationales   []string
	)
	for _, sig := range active {
		if sig.Direction != side {
			continue
		}
		w := sig.Confidence
		weightSum += w
		edgeSum += w * sig.Edge
		confSum += w * sig.Confidence
		contributors = append(contributors, sig.Source)
		if sig.Rationale != "" {
			rationales = append(rationales, sig.Source+": "+sig.Rationale)
		}
	}
	if weightSum <= 0 {
		return domain.Abstain(c.Name())
	}

	return domain.Signal{
		Source:       c.Name(),
		Direction:    side,
		Edge:         edgeSum / weightSum,
		Confidence:   confSum / weightSum,
		Active:       true,
		Rationale:    strings.Join(rationales, "; "),
		Contributors: contributors,
	}
}

// dominantSide picks the direction backed by the highest-confidence signal.
// Returns false on an exact tie between opposing sides.
func dominantSide(signals []domain.Signal) (domain.Outcome, bool) {
	best := map[domain.Outcome]float64{}
	for _, sig := range signals {
		if sig.Confidence > best[sig.Direction] {
			best[sig.Direction] = sig.Confidence
		}
	}
	yes, no := best[domain.OutcomeYes], best[domain.OutcomeNo]
	switch {
	case yes > no:
		return domain.OutcomeYes, true
	case no > yes:
		return domain.OutcomeNo, true
	default:
		return "", false
	}
}
