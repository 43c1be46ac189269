package strategy

import (
	"fmt"
	"math"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// LLMStrategy signals on the gap between the LLM's probability estimate and
// the market's current probability.
type LLMStrategy struct {
	minConfidence float64
	minEdge       float64
}

// NewLLMStrategy creates the strategy with its confidence and edge floors.
func NewLLMStrategy(minConfidence, minEdge float64) *LLMStrategy {
	return &LLMStrategy{minConfidence: minConfidence, minEdge: minEdge}
}

// Name returns the strategy identifier.
func (s *LLMStrategy) Name() string { return "llm" }

// Evaluate abstains when the LLM is unavailable, under-confident, or the edge
// is too small to matter.
func (s *LLMStrategy) Evaluate(market domain.Market, _ domain.AnalysisResult, pred domain.Prediction) domain.Signal {
	if pred.Unavailable {
		return domain.Abstain(s.Name())
	}
	if pred.Confidence < s.minConfidence {
		return domain.Abstain(s.Name())
	}

	edge := math.Abs(pred.Probability - market.Probability)
	if edge < s.minEdge {
		return domain.Abstain(s.Name())
	}

	return domain.Signal{
		Source:     s.Name(),
		Direction:  direction(pred.Probability, market.Probability),
		Edge:       edge,
		Confidence: pred.Confidence,
		Active:     true,
		Rationale:  pred.Rationale,
	}
}

// MarketMakerStrategy flags markets whose price is dislocated from a fair
// value estimate. It works with or without the LLM: absent a prediction, the
// analyzer's overall score stands in as fair value at reduced confidence.
type MarketMakerStrategy struct {
	minEdge float64
}

// NewMarketMakerStrategy creates the strategy with its dislocation threshold.
func NewMarketMakerStrategy(minEdge float64) *MarketMakerStrategy {
	return &MarketMakerStrategy{minEdge: minEdge}
}

// Name returns the strategy identifier.
func (s *MarketMakerStrategy) Name() string { return "market_maker" }

// Evaluate signals when |fair − market| exceeds the threshold.
func (s *MarketMakerStrategy) Evaluate(market domain.Market, analysis domain.AnalysisResult, pred domain.Prediction) domain.Signal {
	fair := analysis.Score
	confidence := 0.5
	rationale := fmt.Sprintf("analysis score %.2f vs market %.2f", fair, market.Probability)
	if !pred.Unavailable {
		fair = pred.Probability
		confidence = pred.Confidence
		rationale = fmt.Sprintf("llm fair value %.2f vs market %.2f", fair, market.Probability)
	}

	edge := math.Abs(fair - market.Probability)
	if edge < s.minEdge {
		return domain.Abstain(s.Name())
	}

	return domain.Signal{
		Source:     s.Name(),
		Direction:  direction(fair, market.Probability),
		Edge:       edge,
		Confidence: confidence,
		Active:     true,
		Rationale:  rationale,
	}
}
