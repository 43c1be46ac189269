package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alanyoungcy/manifoldbot/internal/domain"
)

// ledgerFile is the on-disk shape of the trade ledger: the full set of
// positions and trade records plus balance bookkeeping, rewritten as a whole
// after every mutation. Durability over performance; trade frequency is low.
type ledgerFile struct {
	Positions       []domain.Position    `json:"positions"`
	Trades          []domain.TradeRecord `json:"trades"`
	StartingBalance float64              `json:"starting_balance"`
	CurrentBalance  float64              `json:"current_balance"`
	UpdatedAt       time.Time            `json:"last_updated"`
}

// loadLedger reads the ledger file at path. A missing file yields an empty
// ledger; a corrupt file is an error so the operator decides what to keep.
func loadLedger(path string) (ledgerFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ledgerFile{}, nil
		}
		return ledgerFile{}, fmt.Errorf("tracker: read ledger %s: %w", path, err)
	}

	var lf ledgerFile
	if err := json.Unmarshal(raw, &lf); err != nil {
		return ledgerFile{}, fmt.Errorf("tracker: decode ledger %s: %w", path, err)
	}
	return lf, nil
}

// saveLedger writes the ledger atomically: a temp file in the same directory
// followed by a rename, so a crash mid-write never truncates the history.
func saveLedger(path string, lf ledgerFile) error {
	lf.UpdatedAt = time.Now().UTC()

	raw, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("tracker: encode ledger: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("tracker: create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("tracker: write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tracker: close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("tracker: replace ledger %s: %w", path, err)
	}
	return nil
}
