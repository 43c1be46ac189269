// Package manifold is the REST client for the Manifold Markets v0 API. It
// covers market discovery, user/balance lookups, and bet placement.
package manifold

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// ClientConfig holds connection parameters for the Manifold API client.
type ClientConfig struct {
	BaseURL string
	ApiKey  string
	Timeout time.Duration
	// RequestsPerSecond bounds the outbound request rate. Zero disables the
	// limiter.
	RequestsPerSecond float64
}

// Client is the REST client for the Manifold v0 API. All requests wait on a
// client-side rate limiter before hitting the network.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Manifold API client.
func New(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.ApiKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// GetMarkets returns up to limit markets, newest first, restricted to binary
// markets (the only kind the bot trades).
func (c *Client) GetMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("manifold: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("manifold: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		if !apiMarkets[i].Binary() {
			continue
		}
		markets = append(markets, apiMarkets[i].ToDomain())
	}
	return markets, nil
}

// GetMarketsByCreator returns binary markets created by the given username.
// It resolves the username to a creator ID first so the API does the
// filtering server-side.
func (c *Client) GetMarketsByCreator(ctx context.Context, username string, limit int) ([]domain.Market, error) {
	user, err := c.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("manifold: resolve creator %s: %w", username, err)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("creatorId", user.ID)

	body, err := c.doGet(ctx, "/markets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("manifold: get markets by creator %s: %w", username, err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("manifold: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		if !apiMarkets[i].Binary() {
			continue
		}
		markets = append(markets, apiMarkets[i].ToDomain())
	}
	return markets, nil
}

// GetMarket returns a single market by its ID.
func (c *Client) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	body, err := c.doGet(ctx, "/market/"+url.PathEscape(id))
	if err != nil {
		return domain.Market{}, fmt.Errorf("manifold: get market %s: %w", id, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.Market{}, fmt.Errorf("manifold: decode market: %w", err)
	}
	return apiMarket.ToDomain(), nil
}

// GetUser returns a user looked up by username.
func (c *Client) GetUser(ctx context.Context, username string) (APIUser, error) {
	body, err := c.doGet(ctx, "/user/"+url.PathEscape(username))
	if err != nil {
		return APIUser{}, fmt.Errorf("manifold: get user %s: %w", username, err)
	}

	var user APIUser
	if err := json.Unmarshal(body, &user); err != nil {
		return APIUser{}, fmt.Errorf("manifold: decode user: %w", err)
	}
	return user, nil
}

// Me returns the authenticated user, including the current balance.
func (c *Client) Me(ctx context.Context) (APIUser, error) {
	body, err := c.doGet(ctx, "/me")
	if err != nil {
		return APIUser{}, fmt.Errorf("manifold: get me: %w", err)
	}

	var user APIUser
	if err := json.Unmarshal(body, &user); err != nil {
		return APIUser{}, fmt.Errorf("manifold: decode me: %w", err)
	}
	return user, nil
}

// Balance returns the authenticated user's spendable mana balance.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	me, err := c.Me(ctx)
	if err != nil {
		return 0, err
	}
	return me.Balance, nil
}

// Bet places a market bet and discards the confirmation payload.
func (c *Client) Bet(ctx context.Context, marketID string, amount float64, outcome domain.Outcome) error {
	_, err := c.PlaceBet(ctx, marketID, amount, outcome)
	return err
}

// PlaceBet places a market bet of amount mana on the given side and returns
// the confirmation.
func (c *Client) PlaceBet(ctx context.Context, marketID string, amount float64, outcome domain.Outcome) (BetConfirmation, error) {
	if amount <= 0 {
		return BetConfirmation{}, fmt.Errorf("manifold: place bet: %w: amount %g", domain.ErrInvalidBet, amount)
	}

	req := BetRequest{
		ContractID: marketID,
		Amount:     amount,
		Outcome:    string(outcome),
	}

	body, err := c.doPost(ctx, "/bet", req)
	if err != nil {
		return BetConfirmation{}, fmt.Errorf("manifold: place bet on %s: %w", marketID, err)
	}

	var conf BetConfirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		return BetConfirmation{}, fmt.Errorf("manifold: decode bet confirmation: %w", err)
	}
	return conf, nil
}

// GetBets returns up to limit bets, newest first, optionally filtered by
// username and market ID. Empty filters are omitted from the query.
func (c *Client) GetBets(ctx context.Context, username, marketID string, limit int) ([]APIBet, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if username != "" {
		params.Set("username", username)
	}
	if marketID != "" {
		params.Set("contractId", marketID)
	}

	body, err := c.doGet(ctx, "/bets?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("manifold: get bets: %w", err)
	}

	var bets []APIBet
	if err := json.Unmarshal(body, &bets); err != nil {
		return nil, fmt.Errorf("manifold: decode bets: %w", err)
	}
	return bets, nil
}

// CancelBet cancels an open limit bet by its ID.
func (c *Client) CancelBet(ctx context.Context, betID string) error {
	if _, err := c.doPost(ctx, "/bet/cancel/"+url.PathEscape(betID), nil); err != nil {
		return fmt.Errorf("manifold: cancel bet %s: %w", betID, err)
	}
	return nil
}

// doGet performs a rate-limited GET and returns the response body.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

// doPost performs a rate-limited POST with a JSON payload and returns the
// response body.
func (c *Client) doPost(ctx context.Context, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Key "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
