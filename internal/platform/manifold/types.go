package manifold

import (
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// APIMarket is the wire representation of a market returned by the Manifold
// lite markets endpoints.
type APIMarket struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	TextDescription string   `json:"textDescription"`
	CreatorID       string   `json:"creatorId"`
	CreatorUsername string   `json:"creatorUsername"`
	OutcomeType     string   `json:"outcomeType"` // BINARY, MULTIPLE_CHOICE, ...
	Probability     *float64 `json:"probability"`
	TotalLiquidity  float64  `json:"totalLiquidity"`
	Volume24Hours   float64  `json:"volume24Hours"`
	CloseTime       *int64   `json:"closeTime"` // epoch milliseconds
	IsResolved      bool     `json:"isResolved"`
	Resolution      string   `json:"resolution"`
	URL             string   `json:"url"`
}

// Binary reports whether the market has a single YES/NO outcome.
func (m APIMarket) Binary() bool {
	return m.OutcomeType == "BINARY"
}

// ToDomain converts the API market to the domain snapshot.
func (m APIMarket) ToDomain() domain.Market {
	out := domain.Market{
		ID:          m.ID,
		Question:    m.Question,
		Description: m.TextDescription,
		Creator:     m.CreatorUsername,
		Liquidity:   m.TotalLiquidity,
		Volume24h:   m.Volume24Hours,
		Resolved:    m.IsResolved,
		Resolution:  m.Resolution,
		URL:         m.URL,
	}
	if m.Probability != nil {
		out.Probability = *m.Probability
	}
	if m.CloseTime != nil {
		t := time.UnixMilli(*m.CloseTime).UTC()
		out.CloseTime = &t
	}
	return out
}

// APIUser is the wire representation of a Manifold user.
type APIUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Balance  float64 `json:"balance"`
}

// APIBet is the wire representation of a bet returned by the bets endpoint.
type APIBet struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	ContractID  string  `json:"contractId"`
	Amount      float64 `json:"amount"`
	Outcome     string  `json:"outcome"`
	Shares      float64 `json:"shares"`
	ProbBefore  float64 `json:"probBefore"`
	ProbAfter   float64 `json:"probAfter"`
	CreatedTime int64   `json:"createdTime"` // epoch milliseconds
	IsFilled    bool    `json:"isFilled"`
	IsCancelled bool    `json:"isCancelled"`
}

// BetRequest is the payload for placing a bet.
type BetRequest struct {
	ContractID string   `json:"contractId"`
	Amount     float64  `json:"amount"`
	Outcome    string   `json:"outcome"`
	LimitProb  *float64 `json:"limitProb,omitempty"`
}

// BetConfirmation is the response to a placed bet.
type BetConfirmation struct {
	BetID      string  `json:"betId"`
	ContractID string  `json:"contractId"`
	Amount     float64 `json:"amount"`
	Outcome    string  `json:"outcome"`
	Shares     float64 `json:"shares"`
	ProbAfter  float64 `json:"probAfter"`
	IsFilled   bool    `json:"isFilled"`
}
