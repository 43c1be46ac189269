// Package config defines the top-level configuration for the manifold bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by MANIFOLDBOT_* environment variables.
// The struct is validated once at startup and treated as immutable afterwards.
type Config struct {
	Manifold ManifoldConfig `toml:"manifold"`
	Creator  CreatorConfig  `toml:"creator"`
	LLM      LLMConfig      `toml:"llm"`
	Risk     RiskConfig     `toml:"risk"`
	Analyzer AnalyzerConfig `toml:"analyzer"`
	Bot      BotConfig      `toml:"bot"`
	Notify   NotifyConfig   `toml:"notify"`
	LogLevel string         `toml:"log_level"`
}

// ManifoldConfig holds Manifold Markets API credentials and endpoints.
type ManifoldConfig struct {
	ApiKey         string   `toml:"api_key"`
	Username       string   `toml:"username"`
	BaseURL        string   `toml:"base_url"`
	RequestTimeout duration `toml:"request_timeout"`
	// RequestsPerSecond bounds the client-side request rate against the API.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// CreatorConfig selects the single market author the bot trades with.
type CreatorConfig struct {
	// Target is matched case-sensitively against the market creator username.
	Target string `toml:"target"`
}

// LLMConfig holds LLM provider selection and credentials. Exactly one provider
// is active; "none" or a missing key disables LLM analysis entirely.
type LLMConfig struct {
	Provider        string   `toml:"provider"` // none, openai, anthropic, gemini
	OpenAIKey       string   `toml:"openai_api_key"`
	AnthropicKey    string   `toml:"anthropic_api_key"`
	GeminiKey       string   `toml:"gemini_api_key"`
	Model           string   `toml:"model"`
	Timeout         duration `toml:"timeout"`
	BreakerFailures int      `toml:"breaker_failures"`
	BreakerCooldown duration `toml:"breaker_cooldown"`
}

// RiskConfig holds position-sizing and portfolio limits. The Kelly fraction
// and thresholds are deliberately configuration, not constants.
type RiskConfig struct {
	MaxPositionSize    float64 `toml:"max_position_size"`
	MaxPortfolioRisk   float64 `toml:"max_portfolio_risk"`
	MinMarketLiquidity float64 `toml:"min_market_liquidity"`
	MaxOpenPositions   int     `toml:"max_open_positions"`
	KellyFraction      float64 `toml:"kelly_fraction"`
	MinConfidence      float64 `toml:"min_confidence"`
	MaxBetAmount       float64 `toml:"max_bet_amount"`
	MinBetAmount       float64 `toml:"min_bet_amount"`
	MinEdge            float64 `toml:"min_edge"`
	MarketMakerMinEdge float64 `toml:"market_maker_min_edge"`
	TrendThreshold     float64 `toml:"trend_threshold"`
}

// AnalyzerConfig holds the market-scoring weights and normalization caps.
type AnalyzerConfig struct {
	LiquidityWeight  float64 `toml:"liquidity_weight"`
	TimeWeight       float64 `toml:"time_weight"`
	VolatilityWeight float64 `toml:"volatility_weight"`
	VolumeWeight     float64 `toml:"volume_weight"`
	// FullLiquidity is the liquidity level that scores 1.0.
	FullLiquidity float64 `toml:"full_liquidity"`
	// FullVolume is the 24h volume level that scores 1.0.
	FullVolume float64 `toml:"full_volume"`
}

// BotConfig holds the polling-loop parameters.
type BotConfig struct {
	CheckInterval    duration `toml:"check_interval"`
	MarketFetchLimit int      `toml:"market_fetch_limit"`
	LedgerPath       string   `toml:"ledger_path"`
	ReportInterval   duration `toml:"report_interval"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Manifold: ManifoldConfig{
			BaseURL:           "https://api.manifold.markets/v0",
			RequestTimeout:    duration{30 * time.Second},
			RequestsPerSecond: 5,
		},
		Creator: CreatorConfig{
			Target: "MikhailTal",
		},
		LLM: LLMConfig{
			Provider:        "none",
			Timeout:         duration{45 * time.Second},
			BreakerFailures: 3,
			BreakerCooldown: duration{5 * time.Minute},
		},
		Risk: RiskConfig{
			MaxPositionSize:    100,
			MaxPortfolioRisk:   0.3,
			MinMarketLiquidity: 50,
			MaxOpenPositions:   10,
			KellyFraction:      0.25,
			MinConfidence:      0.6,
			MaxBetAmount:       50,
			MinBetAmount:       1,
			MinEdge:            0.05,
			MarketMakerMinEdge: 0.10,
			TrendThreshold:     0.02,
		},
		Analyzer: AnalyzerConfig{
			LiquidityWeight:  0.30,
			TimeWeight:       0.25,
			VolatilityWeight: 0.25,
			VolumeWeight:     0.20,
			FullLiquidity:    200,
			FullVolume:       100,
		},
		Bot: BotConfig{
			CheckInterval:    duration{5 * time.Minute},
			MarketFetchLimit: 500,
			LedgerPath:       "performance.json",
			ReportInterval:   duration{30 * time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"trade_placed", "market_resolved", "error"},
		},
		LogLevel: "info",
	}
}

// validProviders enumerates the accepted values for LLMConfig.Provider.
var validProviders = map[string]bool{
	"none":      true,
	"openai":    true,
	"anthropic": true,
	"gemini":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for invalid or missing values and returns a combined
// error describing every problem found. Missing Manifold credentials are fatal;
// a configured LLM provider without its key is not (the bot degrades to
// non-LLM strategies), which LLMEnabled reflects.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Manifold credentials are required.
	if c.Manifold.ApiKey == "" {
		errs = append(errs, "manifold: api_key is required")
	}
	if c.Manifold.Username == "" {
		errs = append(errs, "manifold: username is required")
	}
	if c.Manifold.BaseURL == "" {
		errs = append(errs, "manifold: base_url must not be empty")
	}
	if c.Manifold.RequestTimeout.Duration <= 0 {
		errs = append(errs, "manifold: request_timeout must be positive")
	}
	if c.Manifold.RequestsPerSecond <= 0 {
		errs = append(errs, "manifold: requests_per_second must be positive")
	}

	// Creator
	if c.Creator.Target == "" {
		errs = append(errs, "creator: target must not be empty")
	}

	// LLM
	if !validProviders[strings.ToLower(c.LLM.Provider)] {
		errs = append(errs, fmt.Sprintf("llm: unknown provider %q (valid: none, openai, anthropic, gemini)", c.LLM.Provider))
	}
	if c.LLM.Timeout.Duration <= 0 {
		errs = append(errs, "llm: timeout must be positive")
	}
	if c.LLM.BreakerFailures < 1 {
		errs = append(errs, "llm: breaker_failures must be >= 1")
	}

	// Risk
	if c.Risk.MaxPositionSize <= 0 {
		errs = append(errs, "risk: max_position_size must be > 0")
	}
	if c.Risk.MaxPortfolioRisk <= 0 || c.Risk.MaxPortfolioRisk > 1 {
		errs = append(errs, fmt.Sprintf("risk: max_portfolio_risk must be in (0,1], got %g", c.Risk.MaxPortfolioRisk))
	}
	if c.Risk.MaxOpenPositions < 1 {
		errs = append(errs, "risk: max_open_positions must be >= 1")
	}
	if c.Risk.KellyFraction <= 0 || c.Risk.KellyFraction > 1 {
		errs = append(errs, fmt.Sprintf("risk: kelly_fraction must be in (0,1], got %g", c.Risk.KellyFraction))
	}
	if c.Risk.MinConfidence < 0 || c.Risk.MinConfidence > 1 {
		errs = append(errs, "risk: min_confidence must be in [0,1]")
	}
	if c.Risk.MaxBetAmount <= 0 {
		errs = append(errs, "risk: max_bet_amount must be > 0")
	}
	if c.Risk.MinBetAmount < 0 {
		errs = append(errs, "risk: min_bet_amount must be >= 0")
	}

	// Scoring weights must have positive mass.
	weightSum := c.Analyzer.LiquidityWeight + c.Analyzer.TimeWeight +
		c.Analyzer.VolatilityWeight + c.Analyzer.VolumeWeight
	if weightSum <= 0 {
		errs = append(errs, "analyzer: scoring weights must sum to a positive value")
	}
	if c.Analyzer.FullLiquidity <= 0 {
		errs = append(errs, "analyzer: full_liquidity must be > 0")
	}
	if c.Analyzer.FullVolume <= 0 {
		errs = append(errs, "analyzer: full_volume must be > 0")
	}

	// Bot
	if c.Bot.CheckInterval.Duration <= 0 {
		errs = append(errs, "bot: check_interval must be positive")
	}
	if c.Bot.MarketFetchLimit < 1 {
		errs = append(errs, "bot: market_fetch_limit must be >= 1")
	}
	if c.Bot.LedgerPath == "" {
		errs = append(errs, "bot: ledger_path must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LLMEnabled reports whether an LLM provider is configured with a usable key.
// A provider selected without its key degrades to disabled rather than failing
// startup.
func (c *Config) LLMEnabled() bool {
	switch strings.ToLower(c.LLM.Provider) {
	case "openai":
		return c.LLM.OpenAIKey != ""
	case "anthropic":
		return c.LLM.AnthropicKey != ""
	case "gemini":
		return c.LLM.GeminiKey != ""
	default:
		return false
	}
}
