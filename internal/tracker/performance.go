// Package tracker records trades, resolves their P&L when markets settle, and
// aggregates ROI and win-rate statistics. All state lives in memory, mirrored
// to a single flat JSON ledger after every mutation.
package tracker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// PerformanceTracker owns every Position and TradeRecord. The orchestrator is
// the only writer; the internal mutex exists so the periodic reporter can read
// statistics concurrently.
type PerformanceTracker struct {
	mu sync.Mutex

	positions map[string]*domain.Position // keyed by market ID
	trades    []domain.TradeRecord

	startingBalance float64
	currentBalance  float64

	ledgerPath string
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a PerformanceTracker backed by the ledger file at path, loading
// any prior history it contains.
func New(ledgerPath string, logger *slog.Logger) (*PerformanceTracker, error) {
	lf, err := loadLedger(ledgerPath)
	if err != nil {
		return nil, err
	}

	t := &PerformanceTracker{
		positions:       make(map[string]*domain.Position, len(lf.Positions)),
		trades:          lf.Trades,
		startingBalance: lf.StartingBalance,
		currentBalance:  lf.CurrentBalance,
		ledgerPath:      ledgerPath,
		logger:          logger.With(slog.String("component", "tracker")),
		now:             time.Now,
	}
	for i := range lf.Positions {
		p := lf.Positions[i]
		t.positions[p.MarketID] = &p
	}
	return t, nil
}

// RecordTrade stores a newly executed position, appends the matching trade
// record, and persists the ledger. The position receives a fresh ID when it
// has none.
func (t *PerformanceTracker) RecordTrade(pos domain.Position) domain.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	if pos.ID == "" {
		pos.ID = uuid.NewString()
	}
	if pos.PlacedAt.IsZero() {
		pos.PlacedAt = t.now().UTC()
	}
	pos.Status = domain.PositionStatusOpen

	t.positions[pos.MarketID] = &pos
	t.trades = append(t.trades, domain.TradeRecord{
		ID:               pos.ID,
		MarketID:         pos.MarketID,
		Question:         pos.Question,
		Side:             pos.Side,
		Amount:           pos.Amount,
		EntryProbability: pos.EntryProbability,
		Rationale:        pos.Rationale,
		PlacedAt:         pos.PlacedAt,
	})

	t.persistLocked()
	t.logger.Info("recorded trade",
		slog.String("market_id", pos.MarketID),
		slog.String("side", string(pos.Side)),
		slog.Float64("amount", pos.Amount),
	)
	return pos
}

// Resolve settles the position held in the given market. Won pays out against
// the entry odds, lost forfeits the stake. Resolving an already-settled market
// is a no-op returning the previously recorded P&L, so a resolution seen twice
// never double-counts.
func (t *PerformanceTracker) Resolve(marketID string, won bool) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[marketID]
	if !ok {
		return 0, fmt.Errorf("tracker: resolve %s: %w", marketID, domain.ErrNotFound)
	}
	if pos.Status.Terminal() {
		return pos.PnL, nil
	}

	var pnl float64
	if won {
		odds := pos.EntryProbability
		if pos.Side == domain.OutcomeNo {
			odds = 1 - pos.EntryProbability
		}
		if odds > 0 {
			pnl = pos.Amount * (1/odds - 1)
		}
		pos.Status = domain.PositionStatusWon
	} else {
		pnl = -pos.Amount
		pos.Status = domain.PositionStatusLost
	}

	resolvedAt := t.now().UTC()
	pos.PnL = pnl
	pos.ResolvedAt = &resolvedAt

	for i := range t.trades {
		if t.trades[i].MarketID == marketID && !t.trades[i].Resolved {
			t.trades[i].Resolved = true
			t.trades[i].Won = won
			t.trades[i].PnL = pnl
			t.trades[i].ResolvedAt = &resolvedAt
		}
	}

	t.persistLocked()
	t.logger.Info("resolved position",
		slog.String("market_id", marketID),
		slog.Bool("won", won),
		slog.Float64("pnl", pnl),
	)
	return pnl, nil
}

// WonSide reports whether the given market resolution favors the side held.
// Resolution "MKT" settles by the final probability; "CANCEL" refunds, which
// is treated as a loss of zero by the caller skipping resolution.
func WonSide(side domain.Outcome, resolution string, finalProb float64) (bool, bool) {
	switch resolution {
	case "YES":
		return side == domain.OutcomeYes, true
	case "NO":
		return side == domain.OutcomeNo, true
	case "MKT":
		if side == domain.OutcomeYes {
			return finalProb > 0.5, true
		}
		return finalProb <= 0.5, true
	default:
		return false, false
	}
}

// HasOpenPosition reports whether an open stake exists in the market.
func (t *PerformanceTracker) HasOpenPosition(marketID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.positions[marketID]
	return ok && pos.Status == domain.PositionStatusOpen
}

// OpenPositions returns a copy of all open positions.
func (t *PerformanceTracker) OpenPositions() []domain.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []domain.Position
	for _, p := range t.positions {
		if p.Status == domain.PositionStatusOpen {
			out = append(out, *p)
		}
	}
	return out
}

// Portfolio derives the read-only portfolio view from the open positions.
// TotalAtRisk is always the sum of open position amounts.
func (t *PerformanceTracker) Portfolio(totalCapital float64) domain.PortfolioState {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := domain.PortfolioState{TotalCapital: totalCapital}
	for _, p := range t.positions {
		if p.Status == domain.PositionStatusOpen {
			state.OpenPositions++
			state.TotalAtRisk += p.Amount
		}
	}
	return state
}

// UpdateBalance records the account balance, fixing the starting balance the
// first time one is seen.
func (t *PerformanceTracker) UpdateBalance(balance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startingBalance == 0 {
		t.startingBalance = balance
	}
	t.currentBalance = balance
	t.persistLocked()
}

// Stats aggregates realized performance. Win rate counts only settled
// positions; open stakes never enter the denominator.
func (t *PerformanceTracker) Stats() domain.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := domain.Stats{
		TotalTrades:     len(t.trades),
		StartingBalance: t.startingBalance,
		CurrentBalance:  t.currentBalance,
	}

	var settledInvested float64
	for _, p := range t.positions {
		switch p.Status {
		case domain.PositionStatusOpen:
			s.OpenPositions++
		case domain.PositionStatusWon:
			s.Wins++
			s.PnL += p.PnL
			settledInvested += p.Amount
		case domain.PositionStatusLost:
			s.Losses++
			s.PnL += p.PnL
			settledInvested += p.Amount
		}
	}
	for _, tr := range t.trades {
		s.TotalInvested += tr.Amount
	}

	if settled := s.Wins + s.Losses; settled > 0 {
		s.WinRate = float64(s.Wins) / float64(settled) * 100
	}
	if settledInvested > 0 {
		s.ROI = s.PnL / settledInvested * 100
	}
	return s
}

// persistLocked rewrites the ledger file, retrying once on failure. A
// persistent failure is logged and trading continues in memory; durability is
// best-effort, not transactional. Caller must hold the mutex.
func (t *PerformanceTracker) persistLocked() {
	lf := ledgerFile{
		Trades:          t.trades,
		StartingBalance: t.startingBalance,
		CurrentBalance:  t.currentBalance,
	}
	for _, p := range t.positions {
		lf.Positions = append(lf.Positions, *p)
	}

	err := saveLedger(t.ledgerPath, lf)
	if err != nil {
		err = saveLedger(t.ledgerPath, lf)
	}
	if err != nil {
		t.logger.Warn("ledger write failed after retry, continuing in memory",
			slog.String("path", t.ledgerPath),
			slog.String("error", err.Error()),
		)
	}
}
