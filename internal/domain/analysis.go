package domain

// AnalysisResult holds the heuristic scores computed for one market during one
// polling cycle. Created fresh per market per cycle and never mutated.
type AnalysisResult struct {
	Market Market

	LiquidityScore  float64
	TimeScore       float64
	VolatilityScore float64
	VolumeScore     float64

	// Score is the weighted overall score in [0,1].
	Score float64
}

// Prediction is the outcome of an LLM market analysis. A failed or absent
// analysis is represented by Unavailable=true with zero confidence; callers
// treat that identically to a low-conviction prediction instead of handling
// errors at every call site.
type Prediction struct {
	Probability float64 // estimated probability the market resolves YES, in [0,1]
	Confidence  float64 // self-reported confidence, in [0,1]
	Rationale   string
	Unavailable bool
}

// Unavailable returns the degraded sentinel prediction with the given reason.
func UnavailablePrediction(reason string) Prediction {
	return Prediction{
		Probability: 0.5,
		Confidence:  0,
		Rationale:   reason,
		Unavailable: true,
	}
}
