// Package bot runs the trading loop: fetch the creator's markets, settle any
// resolved positions, score the rest, ask the strategies for a signal, size
// the bet through the risk gates, execute, and record. One sequential worker
// processes one cycle at a time; per-market failures are isolated and never
// abort the rest of a cycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/analyzer"
	"github.com/alanyoungcy/manifoldbot/internal/domain"
	"github.com/alanyoungcy/manifoldbot/internal/notify"
	"github.com/alanyoungcy/manifoldbot/internal/risk"
	"github.com/alanyoungcy/manifoldbot/internal/strategy"
	"github.com/alanyoungcy/manifoldbot/internal/tracker"
)

// MarketClient is the slice of the Manifold API the bot needs. The platform
// client implements it; tests substitute a fake.
type MarketClient interface {
	GetMarketsByCreator(ctx context.Context, username string, limit int) ([]domain.Market, error)
	GetMarket(ctx context.Context, id string) (domain.Market, error)
	Balance(ctx context.Context) (float64, error)
	Bet(ctx context.Context, marketID string, amount float64, outcome domain.Outcome) error
}

// Predictor is the LLM analysis capability. Analyze never fails; unavailable
// analysis is a degraded prediction, not an error.
type Predictor interface {
	Analyze(ctx context.Context, market domain.Market) domain.Prediction
	Enabled() bool
}

// Config holds the orchestrator's loop parameters.
type Config struct {
	TargetCreator    string
	CheckInterval    time.Duration
	MarketFetchLimit int
}

// Bot wires the decision pipeline together and drives it on a polling loop.
type Bot struct {
	cfg       Config
	client    MarketClient
	analyzer  *analyzer.MarketAnalyzer
	predictor Predictor
	strategy  strategy.Strategy
	probs     *strategy.ProbabilityTracker
	risk      *risk.Manager
	tracker   *tracker.PerformanceTracker
	notifier  *notify.Notifier
	logger    *slog.Logger
}

// New creates the orchestrator.
func New(
	cfg Config,
	client MarketClient,
	mktAnalyzer *analyzer.MarketAnalyzer,
	predictor Predictor,
	strat strategy.Strategy,
	probs *strategy.ProbabilityTracker,
	riskMgr *risk.Manager,
	perf *tracker.PerformanceTracker,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Bot {
	return &Bot{
		cfg:       cfg,
		client:    client,
		analyzer:  mktAnalyzer,
		predictor: predictor,
		strategy:  strat,
		probs:     probs,
		risk:      riskMgr,
		tracker:   perf,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "bot")),
	}
}

// Run executes polling cycles until the context is cancelled. The first cycle
// starts immediately. Cancellation is cooperative: it is honored between
// cycles and between per-market units of work, never inside an API call
// beyond the call's own context.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot starting",
		slog.String("creator", b.cfg.TargetCreator),
		slog.Duration("check_interval", b.cfg.CheckInterval),
		slog.Bool("llm_enabled", b.predictor.Enabled()),
	)

	ticker := time.NewTicker(b.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		if err := b.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A failed cycle is recoverable; the next tick retries.
			b.logger.Error("cycle failed", slog.String("error", err.Error()))
			b.notifier.Error(ctx, "cycle", err)
		}

		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle performs one pass: fetch, settle resolutions, filter and score,
// then decide and trade each candidate sequentially.
func (b *Bot) RunCycle(ctx context.Context) error {
	markets, err := b.client.GetMarketsByCreator(ctx, b.cfg.TargetCreator, b.cfg.MarketFetchLimit)
	if err != nil {
		return fmt.Errorf("bot: fetch markets: %w", err)
	}

	balance, err := b.client.Balance(ctx)
	if err != nil {
		// Without a balance no position can be sized; skip trading this
		// cycle but still settle resolutions.
		b.logger.Warn("balance fetch failed, skipping trading this cycle",
			slog.String("error", err.Error()))
		balance = 0
	} else {
		b.tracker.UpdateBalance(balance)
	}

	b.settleResolutions(ctx, markets)

	candidates := b.analyzer.FilterAndScore(markets)

	now := time.Now().UTC()
	for _, cand := range candidates {
		b.probs.Track(cand.Market.ID, cand.Market.Probability, now)
	}

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := b.processMarket(ctx, cand, balance); err != nil {
			// Per-market failures are isolated; log and move on.
			b.logger.Error("market processing failed",
				slog.String("market_id", cand.Market.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// processMarket runs analyze → decide → risk-check → execute → record for one
// candidate.
func (b *Bot) processMarket(ctx context.Context, cand domain.AnalysisResult, balance float64) error {
	market := cand.Market

	if b.tracker.HasOpenPosition(market.ID) {
		b.logger.Debug("skipping market with open position", slog.String("market_id", market.ID))
		return nil
	}

	b.logger.Info("analyzing market",
		slog.String("market_id", market.ID),
		slog.String("question", truncate(market.Question, 60)),
		slog.Float64("score", cand.Score),
	)

	pred := b.predictor.Analyze(ctx, market)
	if !pred.Unavailable {
		b.logger.Info("llm prediction",
			slog.String("market_id", market.ID),
			slog.Float64("probability", pred.Probability),
			slog.Float64("confidence", pred.Confidence),
		)
	}

	sig := b.strategy.Evaluate(market, cand, pred)
	if !sig.Active {
		b.logger.Debug("composite abstained", slog.String("market_id", market.ID))
		return nil
	}

	portfolio := b.tracker.Portfolio(balance)
	decision := b.risk.SizePosition(sig, market, portfolio, b.tracker.HasOpenPosition(market.ID))
	if !decision.Approved() {
		return nil
	}

	// Creator re-verification immediately before execution, independent of
	// the analyzer filter, so a stale or mismapped snapshot can never place
	// a bet outside the target creator's markets.
	if market.Creator != b.cfg.TargetCreator {
		return fmt.Errorf("bot: refusing bet on %s: %w", market.ID, domain.ErrWrongCreator)
	}

	if err := b.client.Bet(ctx, market.ID, decision.Amount, sig.Direction); err != nil {
		return fmt.Errorf("bot: place bet on %s: %w", market.ID, err)
	}

	pos := b.tracker.RecordTrade(domain.Position{
		MarketID:         market.ID,
		Question:         market.Question,
		Side:             sig.Direction,
		Amount:           decision.Amount,
		EntryProbability: market.Probability,
		Rationale:        sig.Rationale,
	})
	b.notifier.TradePlaced(ctx, pos)

	b.logger.Info("placed bet",
		slog.String("market_id", market.ID),
		slog.String("side", string(sig.Direction)),
		slog.Float64("amount", decision.Amount),
		slog.Float64("edge", sig.Edge),
		slog.Float64("confidence", sig.Confidence),
	)
	return nil
}

// settleResolutions checks every open position against the fresh snapshot
// (falling back to a direct market fetch) and realizes P&L for markets that
// have resolved. Failures here only affect the position in question.
func (b *Bot) settleResolutions(ctx context.Context, markets []domain.Market) {
	byID := make(map[string]domain.Market, len(markets))
	for _, m := range markets {
		byID[m.ID] = m
	}

	for _, pos := range b.tracker.OpenPositions() {
		if ctx.Err() != nil {
			return
		}

		market, ok := byID[pos.MarketID]
		if !ok {
			var err error
			market, err = b.client.GetMarket(ctx, pos.MarketID)
			if err != nil {
				b.logger.Warn("resolution check failed",
					slog.String("market_id", pos.MarketID),
					slog.String("error", err.Error()),
				)
				continue
			}
		}
		if !market.Resolved {
			continue
		}

		won, settles := tracker.WonSide(pos.Side, market.Resolution, market.Probability)
		if !settles {
			// CANCEL and other non-binary resolutions have no P&L meaning
			// for a binary stake; leave the position for manual review.
			b.logger.Warn("unsupported resolution, leaving position open",
				slog.String("market_id", pos.MarketID),
				slog.String("resolution", market.Resolution),
			)
			continue
		}

		pnl, err := b.tracker.Resolve(pos.MarketID, won)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				b.logger.Error("resolve failed",
					slog.String("market_id", pos.MarketID),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		b.notifier.MarketResolved(ctx, pos, pnl)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
