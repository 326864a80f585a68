package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartspend/internal/core"
)

// StorageKey is the fixed key the ledger snapshot is persisted under.
const StorageKey = "smartspend_data"

// SnapshotVersion is the current persisted layout. Payloads without a
// version field are treated as version 0.
const SnapshotVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// State is the full canonical ledger content.
type State struct {
	Transactions []core.Transaction `json:"transactions"`
	Categories   []core.Category    `json:"categories"`
	Budgets      []core.Budget      `json:"budgets"`
	Reports      []core.Report      `json:"reports"`
}

type snapshot struct {
	Version int `json:"version"`
	State
}

// SeedState returns the first-run ledger: default categories and the demo
// transactions dated relative to now.
func SeedState(now time.Time) State {
	return State{
		Transactions: core.SampleTransactions(now),
		Categories:   core.DefaultCategories(),
		Budgets:      []core.Budget{},
		Reports:      []core.Report{},
	}
}

// Clone returns a deep copy so callers can never alias ledger internals.
func (s State) Clone() State {
	out := State{
		Transactions: make([]core.Transaction, len(s.Transactions)),
		Categories:   append([]core.Category{}, s.Categories...),
		Budgets:      make([]core.Budget, len(s.Budgets)),
		Reports:      append([]core.Report{}, s.Reports...),
	}
	for i, t := range s.Transactions {
		if t.NextOccurrence != nil {
			next := *t.NextOccurrence
			t.NextOccurrence = &next
		}
		out.Transactions[i] = t
	}
	for i, b := range s.Budgets {
		if b.EndDate != nil {
			end := *b.EndDate
			b.EndDate = &end
		}
		out.Budgets[i] = b
	}
	return out
}

// EncodeSnapshot serializes s at the current snapshot version.
func EncodeSnapshot(s State) ([]byte, error) {
	data, err := json.Marshal(snapshot{Version: SnapshotVersion, State: s})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a persisted payload and upgrades older layouts.
func DecodeSnapshot(data []byte) (State, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := migrateSnapshot(&snap); err != nil {
		return State{}, err
	}
	return snap.State, nil
}

// migrateSnapshot upgrades snap in place, one version step at a time.
func migrateSnapshot(snap *snapshot) error {
	if snap.Version > SnapshotVersion || snap.Version < 0 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	for snap.Version < SnapshotVersion {
		switch snap.Version {
		case 0:
			// Unversioned payloads could omit collections entirely.
			if snap.Transactions == nil {
				snap.Transactions = []core.Transaction{}
			}
			if len(snap.Categories) == 0 {
				snap.Categories = core.DefaultCategories()
			}
			if snap.Budgets == nil {
				snap.Budgets = []core.Budget{}
			}
			if snap.Reports == nil {
				snap.Reports = []core.Report{}
			}
		}
		snap.Version++
	}
	return nil
}
