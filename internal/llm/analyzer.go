package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// AnalyzerConfig holds the analyzer's call-handling parameters.
type AnalyzerConfig struct {
	// Timeout bounds each provider call. One attempt per market per cycle.
	Timeout time.Duration
	// BreakerFailures is the consecutive-failure count that opens the
	// circuit breaker.
	BreakerFailures int
	// BreakerCooldown is how long the breaker stays open before probing the
	// provider again.
	BreakerCooldown time.Duration
}

// Analyzer asks an LLM provider for a probability estimate on a market
// question. A nil provider, a failed call, or an unparseable answer all yield
// the unavailable sentinel prediction; Analyze never returns an error.
type Analyzer struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAnalyzer creates an Analyzer around the given provider. provider may be
// nil, in which case every analysis is unavailable (the non-LLM strategies
// still run).
func NewAnalyzer(provider Provider, cfg AnalyzerConfig, logger *slog.Logger) *Analyzer {
	a := &Analyzer{
		provider: provider,
		timeout:  cfg.Timeout,
		logger:   logger.With(slog.String("component", "llm")),
	}
	if provider != nil {
		failures := uint32(cfg.BreakerFailures)
		if failures == 0 {
			failures = 3
		}
		a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    provider.Name(),
			Timeout: cfg.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		})
	}
	return a
}

// Enabled reports whether a provider is configured.
func (a *Analyzer) Enabled() bool { return a.provider != nil }

// Analyze sends the market to the provider and parses its prediction. The
// circuit breaker short-circuits calls while the provider is failing, so a
// quota-exhausted backend is not hammered once per candidate market.
func (a *Analyzer) Analyze(ctx context.Context, market domain.Market) domain.Prediction {
	if a.provider == nil {
		return domain.UnavailablePrediction("llm analysis not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	prompt := buildPrompt(market)

	raw, err := a.breaker.Execute(func() (any, error) {
		return a.provider.Complete(callCtx, prompt)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			a.logger.WarnContext(ctx, "llm breaker open, skipping analysis",
				slog.String("provider", a.provider.Name()),
				slog.String("market_id", market.ID),
			)
			return domain.UnavailablePrediction("llm circuit breaker open")
		}
		a.logger.WarnContext(ctx, "llm call failed",
			slog.String("provider", a.provider.Name()),
			slog.String("market_id", market.ID),
			slog.String("error", err.Error()),
		)
		return domain.UnavailablePrediction(fmt.Sprintf("llm call failed: %v", err))
	}

	pred, err := ParsePrediction(raw.(string))
	if err != nil {
		a.logger.WarnContext(ctx, "llm response unparseable",
			slog.String("provider", a.provider.Name()),
			slog.String("market_id", market.ID),
			slog.String("error", err.Error()),
		)
		return domain.UnavailablePrediction(fmt.Sprintf("malformed llm response: %v", err))
	}
	return pred
}

// buildPrompt renders the analysis prompt from the market snapshot.
func buildPrompt(m domain.Market) string {
	description := m.Description
	if description == "" {
		description = "No additional description provided."
	}

	var timeInfo string
	if m.CloseTime != nil {
		timeInfo = fmt.Sprintf("The market closes on %s.\n", m.CloseTime.Format("2006-01-02 15:04:05"))
	}

	return fmt.Sprintf(`Analyze the following prediction market and provide your assessment.

Market Question: %s

Description: %s

Current Market Probability: %.1f%%
%s
Please provide:
1. Your predicted probability that this event will occur (as a number between 0 and 1)
2. Your confidence in this prediction (as a number between 0 and 1)
3. A brief reasoning for your prediction (2-3 sentences)

Respond in JSON format:
{
    "probability": 0.65,
    "confidence": 0.75,
    "reasoning": "Your reasoning here"
}`, m.Question, description, m.Probability*100, timeInfo)
}

var (
	jsonObjectRe  = regexp.MustCompile(`\{[^{}]+\}`)
	probabilityRe = regexp.MustCompile(`probability["']?\s*:\s*([0-9.]+)`)
	confidenceRe  = regexp.MustCompile(`confidence["']?\s*:\s*([0-9.]+)`)
)

// ParsePrediction extracts a prediction from the raw model output. It first
// looks for a JSON object, then falls back to scanning for bare
// probability/confidence numbers. Values are clamped to [0,1].
func ParsePrediction(response string) (domain.Prediction, error) {
	if match := jsonObjectRe.FindString(response); match != "" {
		var parsed struct {
			Probability float64 `json:"probability"`
			Confidence  float64 `json:"confidence"`
			Reasoning   string  `json:"reasoning"`
		}
		if err := json.Unmarshal([]byte(match), &parsed); err == nil {
			rationale := parsed.Reasoning
			if rationale == "" {
				rationale = "No reasoning provided"
			}
			return domain.Prediction{
				Probability: clamp01(parsed.Probability),
				Confidence:  clamp01(parsed.Confidence),
				Rationale:   rationale,
			}, nil
		}
	}

	// Fallback: pull the numbers out of free text.
	probMatch := probabilityRe.FindStringSubmatch(response)
	confMatch := confidenceRe.FindStringSubmatch(response)
	if probMatch == nil || confMatch == nil {
		return domain.Prediction{}, fmt.Errorf("no probability/confidence found in response")
	}

	prob, err := strconv.ParseFloat(probMatch[1], 64)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("parse probability: %w", err)
	}
	conf, err := strconv.ParseFloat(confMatch[1], 64)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("parse confidence: %w", err)
	}

	rationale := strings.TrimSpace(response)
	if len(rationale) > 200 {
		rationale = rationale[:200]
	}
	return domain.Prediction{
		Probability: clamp01(prob),
		Confidence:  clamp01(conf),
		Rationale:   rationale,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
