// Package app assembles the bot from configuration and supervises its
// long-running goroutines.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/manifoldbot/internal/analyzer"
	"github.com/alanyoungcy/manifoldbot/internal/bot"
	"github.com/alanyoungcy/manifoldbot/internal/config"
	"github.com/alanyoungcy/manifoldbot/internal/llm"
	"github.com/alanyoungcy/manifoldbot/internal/notify"
	"github.com/alanyoungcy/manifoldbot/internal/platform/manifold"
	"github.com/alanyoungcy/manifoldbot/internal/risk"
	"github.com/alanyoungcy/manifoldbot/internal/strategy"
	"github.com/alanyoungcy/manifoldbot/internal/tracker"
)

// App owns the wired components and runs them until the context is cancelled.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	bot     *bot.Bot
	tracker *tracker.PerformanceTracker
}

// New wires every component from the validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	client := manifold.New(manifold.ClientConfig{
		BaseURL:           cfg.Manifold.BaseURL,
		ApiKey:            cfg.Manifold.ApiKey,
		Timeout:           cfg.Manifold.RequestTimeout.Duration,
		RequestsPerSecond: cfg.Manifold.RequestsPerSecond,
	})

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		return nil, err
	}
	predictor := llm.NewAnalyzer(provider, llm.AnalyzerConfig{
		Timeout:         cfg.LLM.Timeout.Duration,
		BreakerFailures: cfg.LLM.BreakerFailures,
		BreakerCooldown: cfg.LLM.BreakerCooldown.Duration,
	}, logger)

	mktAnalyzer := analyzer.New(cfg.Creator.Target, cfg.Risk.MinMarketLiquidity, analyzer.Weights{
		Liquidity:     cfg.Analyzer.LiquidityWeight,
		Time:          cfg.Analyzer.TimeWeight,
		Volatility:    cfg.Analyzer.VolatilityWeight,
		Volume:        cfg.Analyzer.VolumeWeight,
		FullLiquidity: cfg.Analyzer.FullLiquidity,
		FullVolume:    cfg.Analyzer.FullVolume,
	}, logger)

	// Probability history survives across cycles but not restarts; a few
	// check intervals of history is enough for the trend strategy without
	// growing unbounded.
	probs := strategy.NewProbabilityTracker(4 * cfg.Bot.CheckInterval.Duration)

	composite := strategy.NewComposite(
		strategy.NewLLMStrategy(cfg.Risk.MinConfidence, cfg.Risk.MinEdge),
		strategy.NewMarketMakerStrategy(cfg.Risk.MarketMakerMinEdge),
		strategy.NewKellyStrategy(),
		strategy.NewTrendStrategy(probs, cfg.Risk.TrendThreshold),
	)

	riskMgr := risk.NewManager(risk.Limits{
		MaxPositionSize:  cfg.Risk.MaxPositionSize,
		MaxPortfolioRisk: cfg.Risk.MaxPortfolioRisk,
		MaxOpenPositions: cfg.Risk.MaxOpenPositions,
		KellyFraction:    cfg.Risk.KellyFraction,
		MinConfidence:    cfg.Risk.MinConfidence,
		MaxBetAmount:     cfg.Risk.MaxBetAmount,
		MinBetAmount:     cfg.Risk.MinBetAmount,
	}, logger)

	perf, err := tracker.New(cfg.Bot.LedgerPath, logger)
	if err != nil {
		return nil, fmt.Errorf("app: open ledger: %w", err)
	}

	notifier := notify.New(buildSenders(cfg), cfg.Notify.Events, logger)

	trader := bot.New(
		bot.Config{
			TargetCreator:    cfg.Creator.Target,
			CheckInterval:    cfg.Bot.CheckInterval.Duration,
			MarketFetchLimit: cfg.Bot.MarketFetchLimit,
		},
		client, mktAnalyzer, predictor, composite, probs, riskMgr, perf, notifier, logger,
	)

	return &App{
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "app")),
		bot:     trader,
		tracker: perf,
	}, nil
}

// Run starts the trading loop and the periodic performance report and blocks
// until the context is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.bot.Run(ctx)
	})

	g.Go(func() error {
		a.reportLoop(ctx)
		return nil
	})

	return g.Wait()
}

// Close logs the final performance summary on shutdown.
func (a *App) Close() {
	a.logStats()
}

// reportLoop logs the performance summary at the configured interval.
func (a *App) reportLoop(ctx context.Context) {
	interval := a.cfg.Bot.ReportInterval.Duration
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.logStats()
		}
	}
}

func (a *App) logStats() {
	stats := a.tracker.Stats()
	a.logger.Info("performance summary",
		slog.Int("total_trades", stats.TotalTrades),
		slog.Int("open_positions", stats.OpenPositions),
		slog.Int("wins", stats.Wins),
		slog.Int("losses", stats.Losses),
		slog.Float64("pnl", stats.PnL),
		slog.Float64("roi", stats.ROI),
		slog.Float64("win_rate", stats.WinRate),
		slog.Float64("balance", stats.CurrentBalance),
	)
}

// buildProvider selects the LLM provider from configuration. A disabled or
// keyless provider yields nil, which the analyzer treats as LLM-unavailable.
func buildProvider(cfg *config.Config, logger *slog.Logger) (llm.Provider, error) {
	if !cfg.LLMEnabled() {
		if !strings.EqualFold(cfg.LLM.Provider, "none") && cfg.LLM.Provider != "" {
			logger.Warn("llm provider configured without api key, running without llm analysis",
				slog.String("provider", cfg.LLM.Provider))
		}
		return nil, nil
	}

	timeout := cfg.LLM.Timeout.Duration
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		return llm.NewOpenAIProvider(cfg.LLM.OpenAIKey, cfg.LLM.Model, timeout), nil
	case "anthropic":
		return llm.NewAnthropicProvider(cfg.LLM.AnthropicKey, cfg.LLM.Model, timeout), nil
	case "gemini":
		return llm.NewGeminiProvider(cfg.LLM.GeminiKey, cfg.LLM.Model, timeout), nil
	default:
		return nil, fmt.Errorf("app: unknown llm provider %q", cfg.LLM.Provider)
	}
}

// buildSenders creates one sender per configured notification channel.
func buildSenders(cfg *config.Config) []notify.Sender {
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	return senders
}
