package analyzer

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

var testWeights = Weights{
	Liquidity:     0.30,
	Time:          0.25,
	Volatility:    0.25,
	Volume:        0.20,
	FullLiquidity: 200,
	FullVolume:    100,
}

func newTestAnalyzer(t *testing.T, creator string, minLiquidity float64) *MarketAnalyzer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(creator, minLiquidity, testWeights, logger)
	a.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func closeIn(d time.Duration) *time.Time {
	t := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(d)
	return &t
}

func openMarket(id, creator string) domain.Market {
	return domain.Market{
		ID:          id,
		Question:    "Will it happen?",
		Creator:     creator,
		Probability: 0.5,
		Liquidity:   100,
		Volume24h:   20,
		CloseTime:   closeIn(3 * 24 * time.Hour),
	}
}

func TestIsTargetExactMatch(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	assert.True(t, a.IsTarget(domain.Market{Creator: "MikhailTal"}))
	assert.False(t, a.IsTarget(domain.Market{Creator: "mikhailtal"}))
	assert.False(t, a.IsTarget(domain.Market{Creator: "MikhailTal2"}))
	assert.False(t, a.IsTarget(domain.Market{Creator: ""}))
}

func TestFilterAndScoreExcludesOtherCreators(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	markets := []domain.Market{openMarket("target", "MikhailTal")}
	for i := 0; i < 20; i++ {
		markets = append(markets, openMarket(fmt.Sprintf("other-%d", i), fmt.Sprintf("Creator%d", i)))
	}

	results := a.FilterAndScore(markets)
	require.Len(t, results, 1)
	assert.Equal(t, "target", results[0].Market.ID)
}

func TestFilterAndScoreExcludesClosedAndIlliquid(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	resolved := openMarket("resolved", "MikhailTal")
	resolved.Resolved = true

	pastClose := openMarket("past-close", "MikhailTal")
	pastClose.CloseTime = closeIn(-time.Hour)

	thin := openMarket("thin", "MikhailTal")
	thin.Liquidity = 49

	ok := openMarket("ok", "MikhailTal")

	results := a.FilterAndScore([]domain.Market{resolved, pastClose, thin, ok})
	require.Len(t, results, 1)
	assert.Equal(t, "ok", results[0].Market.ID)
}

func TestFilterAndScoreSortsByScoreDescending(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	weak := openMarket("weak", "MikhailTal")
	weak.Liquidity = 60
	weak.Volume24h = 1
	weak.CloseTime = closeIn(60 * 24 * time.Hour)

	strong := openMarket("strong", "MikhailTal")
	strong.Liquidity = 300
	strong.Volume24h = 150
	strong.CloseTime = closeIn(3 * 24 * time.Hour)

	results := a.FilterAndScore([]domain.Market{weak, strong})
	require.Len(t, results, 2)
	assert.Equal(t, "strong", results[0].Market.ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestTimeScoreBands(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)
	now := a.now()

	tests := []struct {
		name  string
		close *time.Time
		want  float64
	}{
		{"no close time", nil, 0.5},
		{"already past", closeIn(-time.Minute), 0},
		{"under a day", closeIn(6 * time.Hour), 0.3},
		{"one to seven days", closeIn(3 * 24 * time.Hour), 1.0},
		{"seven to thirty days", closeIn(14 * 24 * time.Hour), 0.7},
		{"beyond thirty days", closeIn(90 * 24 * time.Hour), 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := domain.Market{CloseTime: tt.close}
			assert.Equal(t, tt.want, a.timeScore(m, now))
		})
	}
}

func TestFactorScores(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	t.Run("liquidity normalized and capped", func(t *testing.T) {
		assert.Equal(t, 0.5, a.liquidityScore(domain.Market{Liquidity: 100}))
		assert.Equal(t, 1.0, a.liquidityScore(domain.Market{Liquidity: 500}))
		assert.Equal(t, 0.0, a.liquidityScore(domain.Market{Liquidity: 10}))
	})

	t.Run("volume normalized and capped", func(t *testing.T) {
		assert.Equal(t, 0.2, a.volumeScore(domain.Market{Volume24h: 20}))
		assert.Equal(t, 1.0, a.volumeScore(domain.Market{Volume24h: 250}))
	})

	t.Run("volatility is turnover relative to liquidity", func(t *testing.T) {
		assert.Equal(t, 0.4, a.volatilityScore(domain.Market{Liquidity: 100, Volume24h: 20}))
		assert.Equal(t, 1.0, a.volatilityScore(domain.Market{Liquidity: 100, Volume24h: 80}))
		assert.Equal(t, 0.0, a.volatilityScore(domain.Market{Liquidity: 0, Volume24h: 50}))
	})
}

func TestScoreIsWeightedAverage(t *testing.T) {
	a := newTestAnalyzer(t, "MikhailTal", 50)

	m := openMarket("m", "MikhailTal")
	r := a.score(m, a.now())

	want := (r.LiquidityScore*testWeights.Liquidity +
		r.TimeScore*testWeights.Time +
		r.VolatilityScore*testWeights.Volatility +
		r.VolumeScore*testWeights.Volume) /
		(testWeights.Liquidity + testWeights.Time + testWeights.Volatility + testWeights.Volume)
	assert.InDelta(t, want, r.Score, 1e-9)
	assert.GreaterOrEqual(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 1.0)
}
