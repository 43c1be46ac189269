// Package analyzer filters the per-cycle market snapshot down to tradable
// candidates and scores each with liquidity, volume, volatility, and
// time-decay heuristics. The analyzer is a pure function over the snapshot;
// it performs no I/O.
package analyzer

import (
	"log/slog"
	"sort"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// Weights holds the scoring weights and normalization caps. All values are
// configuration; no weight is hard-coded.
type Weights struct {
	Liquidity  float64
	Time       float64
	Volatility float64
	Volume     float64
	// FullLiquidity is the liquidity level that earns a full liquidity score.
	FullLiquidity float64
	// FullVolume is the 24h volume that earns a full volume score.
	FullVolume float64
}

// MarketAnalyzer filters markets to the target creator and scores them.
type MarketAnalyzer struct {
	targetCreator string
	minLiquidity  float64
	weights       Weights
	logger        *slog.Logger
	now           func() time.Time
}

// New creates a MarketAnalyzer for the given creator.
func New(targetCreator string, minLiquidity float64, weights Weights, logger *slog.Logger) *MarketAnalyzer {
	return &MarketAnalyzer{
		targetCreator: targetCreator,
		minLiquidity:  minLiquidity,
		weights:       weights,
		logger:        logger.With(slog.String("component", "analyzer")),
		now:           time.Now,
	}
}

// IsTarget reports whether the market belongs to the configured creator. The
// comparison is case-sensitive and exact; this is the analyzer-boundary half
// of the creator invariant (the orchestrator re-checks before execution).
func (a *MarketAnalyzer) IsTarget(m domain.Market) bool {
	return m.Creator == a.targetCreator
}

// FilterAndScore returns the scored candidates among markets: creator match,
// still open, and at least the minimum liquidity. Results are sorted by
// descending score.
func (a *MarketAnalyzer) FilterAndScore(markets []domain.Market) []domain.AnalysisResult {
	now := a.now()

	candidates := make([]domain.AnalysisResult, 0, len(markets))
	for _, m := range markets {
		if !a.IsTarget(m) {
			continue
		}
		if m.Closed(now) {
			continue
		}
		if m.Liquidity < a.minLiquidity {
			continue
		}
		candidates = append(candidates, a.score(m, now))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	a.logger.Info("filtered markets",
		slog.Int("total", len(markets)),
		slog.Int("candidates", len(candidates)),
		slog.String("creator", a.targetCreator),
	)
	return candidates
}

// score computes the per-factor scores and their weighted overall score.
func (a *MarketAnalyzer) score(m domain.Market, now time.Time) domain.AnalysisResult {
	r := domain.AnalysisResult{
		Market:          m,
		LiquidityScore:  a.liquidityScore(m),
		TimeScore:       a.timeScore(m, now),
		VolatilityScore: a.volatilityScore(m),
		VolumeScore:     a.volumeScore(m),
	}

	w := a.weights
	total := w.Liquidity + w.Time + w.Volatility + w.Volume
	if total > 0 {
		r.Score = (r.LiquidityScore*w.Liquidity +
			r.TimeScore*w.Time +
			r.VolatilityScore*w.Volatility +
			r.VolumeScore*w.Volume) / total
	}
	return r
}

// liquidityScore normalizes liquidity into [0,1], with FullLiquidity earning
// the full score.
func (a *MarketAnalyzer) liquidityScore(m domain.Market) float64 {
	if m.Liquidity < a.minLiquidity {
		return 0
	}
	return min1(m.Liquidity / a.weights.FullLiquidity)
}

// timeScore favors markets resolving in a mid-range window: too soon leaves
// no edge to capture, too far out ties capital up.
func (a *MarketAnalyzer) timeScore(m domain.Market, now time.Time) float64 {
	if m.CloseTime == nil {
		return 0.5
	}
	remaining := m.CloseTime.Sub(now)
	switch {
	case remaining < 0:
		return 0
	case remaining < 24*time.Hour:
		return 0.3
	case remaining < 7*24*time.Hour:
		return 1.0
	case remaining < 30*24*time.Hour:
		return 0.7
	default:
		return 0.4
	}
}

// volatilityScore uses 24h turnover relative to liquidity as an activity
// proxy.
func (a *MarketAnalyzer) volatilityScore(m domain.Market) float64 {
	if m.Liquidity <= 0 {
		return 0
	}
	return min1(2 * m.Volume24h / m.Liquidity)
}

// volumeScore normalizes 24h volume into [0,1].
func (a *MarketAnalyzer) volumeScore(m domain.Market) float64 {
	return min1(m.Volume24h / a.weights.FullVolume)
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
