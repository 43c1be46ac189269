// Package strategy contains the scoring strategies that turn a market
// snapshot, its heuristic analysis, and an optional LLM prediction into trade
// signals, plus the composite that aggregates them.
package strategy

import "github.com/alanyoungcy/manifoldbot/internal/domain"

// Strategy is the contract every scoring strategy implements. Evaluate is a
// pure function over one cycle's inputs; a strategy that has nothing to say
// returns an inactive signal, never an error.
type Strategy interface {
	Name() string
	Evaluate(market domain.Market, analysis domain.AnalysisResult, pred domain.Prediction) domain.Signal
}

// direction returns the side favored by a fair-value estimate versus the
// market price.
func direction(fair, market float64) domain.Outcome {
	if fair > market {
		return domain.OutcomeYes
	}
	return domain.OutcomeNo
}
