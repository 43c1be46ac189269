package manifold

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(ClientConfig{
		BaseURL: srv.URL,
		ApiKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func floatPtr(f float64) *float64 { return &f }

func TestGetMarketsByCreator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/MikhailTal", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Key test-key", r.Header.Get("Authorization"))
		writeJSON(t, w, APIUser{ID: "creator-1", Username: "MikhailTal"})
	})
	mux.HandleFunc("/markets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "creator-1", r.URL.Query().Get("creatorId"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		writeJSON(t, w, []APIMarket{
			{
				ID:              "m1",
				Question:        "Will X happen?",
				CreatorUsername: "MikhailTal",
				OutcomeType:     "BINARY",
				Probability:     floatPtr(0.4),
				TotalLiquidity:  150,
			},
			{
				ID:              "m2",
				Question:        "Which one?",
				CreatorUsername: "MikhailTal",
				OutcomeType:     "MULTIPLE_CHOICE",
			},
		})
	})

	c := newTestClient(t, mux)
	markets, err := c.GetMarketsByCreator(context.Background(), "MikhailTal", 50)
	require.NoError(t, err)

	// Non-binary markets are filtered out.
	require.Len(t, markets, 1)
	assert.Equal(t, "m1", markets[0].ID)
	assert.Equal(t, "MikhailTal", markets[0].Creator)
	assert.Equal(t, 0.4, markets[0].Probability)
	assert.Equal(t, 150.0, markets[0].Liquidity)
}

func TestGetMarket(t *testing.T) {
	closeMs := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	mux := http.NewServeMux()
	mux.HandleFunc("/market/m1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, APIMarket{
			ID:          "m1",
			OutcomeType: "BINARY",
			Probability: floatPtr(0.65),
			CloseTime:   &closeMs,
			IsResolved:  true,
			Resolution:  "YES",
		})
	})

	c := newTestClient(t, mux)
	m, err := c.GetMarket(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, m.Resolved)
	assert.Equal(t, "YES", m.Resolution)
	require.NotNil(t, m.CloseTime)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), *m.CloseTime)
}

func TestBalance(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, APIUser{ID: "u1", Username: "testbot", Balance: 842.5})
	})

	c := newTestClient(t, mux)
	balance, err := c.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 842.5, balance)
}

func TestPlaceBet(t *testing.T) {
	var got BetRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/bet", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, BetConfirmation{BetID: "b1", ContractID: got.ContractID, Amount: got.Amount})
	})

	c := newTestClient(t, mux)
	conf, err := c.PlaceBet(context.Background(), "m1", 25, domain.OutcomeYes)
	require.NoError(t, err)

	assert.Equal(t, "b1", conf.BetID)
	assert.Equal(t, "m1", got.ContractID)
	assert.Equal(t, 25.0, got.Amount)
	assert.Equal(t, "YES", got.Outcome)
}

func TestPlaceBetRejectsNonPositiveAmount(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.PlaceBet(context.Background(), "m1", 0, domain.OutcomeYes)
	require.ErrorIs(t, err, domain.ErrInvalidBet)
}

func TestGetBets(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "testbot", r.URL.Query().Get("username"))
		assert.Equal(t, "m1", r.URL.Query().Get("contractId"))
		writeJSON(t, w, []APIBet{
			{ID: "b1", ContractID: "m1", Amount: 25, Outcome: "YES", IsFilled: true},
		})
	})

	c := newTestClient(t, mux)
	bets, err := c.GetBets(context.Background(), "testbot", "m1", 10)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, "b1", bets[0].ID)
	assert.Equal(t, 25.0, bets[0].Amount)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, domain.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, domain.ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			_, err := c.GetMarket(context.Background(), "m1")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnexpectedStatusIncludesBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal broke", http.StatusInternalServerError)
	}))
	_, err := c.GetMarket(context.Background(), "m1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal broke")
}
