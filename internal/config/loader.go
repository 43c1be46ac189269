package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies MANIFOLDBOT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. A missing config file is
// not an error when path is empty; defaults plus environment are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known MANIFOLDBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This lets
// operators inject secrets at deploy time without touching the TOML file. The
// bare MANIFOLD_API_KEY / LLM key names are honored as aliases so a plain .env
// file from the API dashboards works unchanged.
func applyEnvOverrides(cfg *Config) {
	// ── Manifold ──
	setStr(&cfg.Manifold.ApiKey, "MANIFOLDBOT_MANIFOLD_API_KEY")
	setStr(&cfg.Manifold.ApiKey, "MANIFOLD_API_KEY") // compatibility alias
	setStr(&cfg.Manifold.Username, "MANIFOLDBOT_MANIFOLD_USERNAME")
	setStr(&cfg.Manifold.Username, "MANIFOLD_USERNAME") // compatibility alias
	setStr(&cfg.Manifold.BaseURL, "MANIFOLDBOT_MANIFOLD_BASE_URL")
	setDuration(&cfg.Manifold.RequestTimeout, "MANIFOLDBOT_MANIFOLD_REQUEST_TIMEOUT")
	setFloat64(&cfg.Manifold.RequestsPerSecond, "MANIFOLDBOT_MANIFOLD_REQUESTS_PER_SECOND")

	// ── Creator ──
	setStr(&cfg.Creator.Target, "MANIFOLDBOT_CREATOR_TARGET")
	setStr(&cfg.Creator.Target, "TARGET_CREATOR") // compatibility alias

	// ── LLM ──
	setStr(&cfg.LLM.Provider, "MANIFOLDBOT_LLM_PROVIDER")
	setStr(&cfg.LLM.OpenAIKey, "MANIFOLDBOT_LLM_OPENAI_API_KEY")
	setStr(&cfg.LLM.OpenAIKey, "OPENAI_API_KEY") // compatibility alias
	setStr(&cfg.LLM.AnthropicKey, "MANIFOLDBOT_LLM_ANTHROPIC_API_KEY")
	setStr(&cfg.LLM.AnthropicKey, "ANTHROPIC_API_KEY") // compatibility alias
	setStr(&cfg.LLM.GeminiKey, "MANIFOLDBOT_LLM_GEMINI_API_KEY")
	setStr(&cfg.LLM.GeminiKey, "GEMINI_API_KEY") // compatibility alias
	setStr(&cfg.LLM.Model, "MANIFOLDBOT_LLM_MODEL")
	setDuration(&cfg.LLM.Timeout, "MANIFOLDBOT_LLM_TIMEOUT")
	setInt(&cfg.LLM.BreakerFailures, "MANIFOLDBOT_LLM_BREAKER_FAILURES")
	setDuration(&cfg.LLM.BreakerCooldown, "MANIFOLDBOT_LLM_BREAKER_COOLDOWN")

	// ── Risk ──
	setFloat64(&cfg.Risk.MaxPositionSize, "MANIFOLDBOT_RISK_MAX_POSITION_SIZE")
	setFloat64(&cfg.Risk.MaxPortfolioRisk, "MANIFOLDBOT_RISK_MAX_PORTFOLIO_RISK")
	setFloat64(&cfg.Risk.MinMarketLiquidity, "MANIFOLDBOT_RISK_MIN_MARKET_LIQUIDITY")
	setInt(&cfg.Risk.MaxOpenPositions, "MANIFOLDBOT_RISK_MAX_OPEN_POSITIONS")
	setFloat64(&cfg.Risk.KellyFraction, "MANIFOLDBOT_RISK_KELLY_FRACTION")
	setFloat64(&cfg.Risk.MinConfidence, "MANIFOLDBOT_RISK_MIN_CONFIDENCE")
	setFloat64(&cfg.Risk.MaxBetAmount, "MANIFOLDBOT_RISK_MAX_BET_AMOUNT")
	setFloat64(&cfg.Risk.MinBetAmount, "MANIFOLDBOT_RISK_MIN_BET_AMOUNT")
	setFloat64(&cfg.Risk.MinEdge, "MANIFOLDBOT_RISK_MIN_EDGE")
	setFloat64(&cfg.Risk.MarketMakerMinEdge, "MANIFOLDBOT_RISK_MARKET_MAKER_MIN_EDGE")
	setFloat64(&cfg.Risk.TrendThreshold, "MANIFOLDBOT_RISK_TREND_THRESHOLD")

	// ── Analyzer ──
	setFloat64(&cfg.Analyzer.LiquidityWeight, "MANIFOLDBOT_ANALYZER_LIQUIDITY_WEIGHT")
	setFloat64(&cfg.Analyzer.TimeWeight, "MANIFOLDBOT_ANALYZER_TIME_WEIGHT")
	setFloat64(&cfg.Analyzer.VolatilityWeight, "MANIFOLDBOT_ANALYZER_VOLATILITY_WEIGHT")
	setFloat64(&cfg.Analyzer.VolumeWeight, "MANIFOLDBOT_ANALYZER_VOLUME_WEIGHT")
	setFloat64(&cfg.Analyzer.FullLiquidity, "MANIFOLDBOT_ANALYZER_FULL_LIQUIDITY")
	setFloat64(&cfg.Analyzer.FullVolume, "MANIFOLDBOT_ANALYZER_FULL_VOLUME")

	// ── Bot ──
	setDuration(&cfg.Bot.CheckInterval, "MANIFOLDBOT_BOT_CHECK_INTERVAL")
	setInt(&cfg.Bot.MarketFetchLimit, "MANIFOLDBOT_BOT_MARKET_FETCH_LIMIT")
	setStr(&cfg.Bot.LedgerPath, "MANIFOLDBOT_BOT_LEDGER_PATH")
	setDuration(&cfg.Bot.ReportInterval, "MANIFOLDBOT_BOT_REPORT_INTERVAL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "MANIFOLDBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "MANIFOLDBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "MANIFOLDBOT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "MANIFOLDBOT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "MANIFOLDBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
