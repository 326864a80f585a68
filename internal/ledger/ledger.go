// Package ledger holds the authoritative SmartSpend state: transactions,
// categories, budgets and report metadata.
//
// All mutations go through Manager.Update, which applies the change to a
// copy of the state, recomputes budget figures, persists the snapshot under
// StorageKey and then notifies event sinks.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/storage"

	"github.com/google/uuid"
)

// StateStore is the key-value slot the snapshot is persisted to.
type StateStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// IDGenerator mints identifiers for new entities.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator mints random version 4 UUIDs.
var UUIDGenerator IDGenerator = IDFunc(uuid.NewString)

// Option configures a Manager.
type Option func(*Manager)

func WithIDGenerator(g IDGenerator) Option {
	return func(m *Manager) { m.ids = g }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithSinks(sinks ...EventSink) Option {
	return func(m *Manager) { m.sinks = append(m.sinks, sinks...) }
}

// Manager is the single owner of ledger state. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	state    State
	revision uint64
	store    StateStore
	ids      IDGenerator
	now      func() time.Time

	sinkMu sync.RWMutex
	sinks  []EventSink
}

// New creates a manager holding seed data. Call Load to replace it with the
// persisted snapshot.
func New(store StateStore, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		ids:   UUIDGenerator,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	seed := SeedState(m.now())
	seed.Budgets = Recompute(seed.Budgets, seed.Transactions)
	m.state = seed
	return m
}

// AddSink registers an additional event sink.
func (m *Manager) AddSink(s EventSink) {
	m.sinkMu.Lock()
	defer m.sinkMu.Unlock()
	m.sinks = append(m.sinks, s)
}

// Now returns the manager's clock reading.
func (m *Manager) Now() time.Time {
	return m.now()
}

// NewID mints an identifier with the manager's generator.
func (m *Manager) NewID() string {
	return m.ids.NewID()
}

// Load reads the persisted snapshot. A missing key persists the seed data;
// an unreadable payload is logged and the seed data is kept.
func (m *Manager) Load(ctx context.Context) error {
	return m.load(ctx, true)
}

// Reload picks up the latest persisted snapshot without ever writing. A
// missing key or unreadable payload leaves the current state as it is.
func (m *Manager) Reload(ctx context.Context) error {
	return m.load(ctx, false)
}

func (m *Manager) load(ctx context.Context, persistSeed bool) error {
	data, err := m.store.Load(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		if !persistSeed {
			slog.DebugContext(ctx, "No saved ledger to reload", "key", StorageKey)
			return nil
		}
		slog.InfoContext(ctx, "No saved ledger found, starting from seed data", "key", StorageKey)
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.persistLocked(ctx)
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	st, err := DecodeSnapshot(data)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse saved ledger, keeping current state",
			"key", StorageKey,
			"error", err)
		return nil
	}
	m.replace(st)

	slog.InfoContext(ctx, "Ledger loaded",
		"transactions", len(st.Transactions),
		"categories", len(st.Categories),
		"budgets", len(st.Budgets),
		"reports", len(st.Reports))
	return nil
}

// Restore replaces the ledger with an encoded snapshot, such as an earlier
// revision from the store history, and persists it as the current state.
func (m *Manager) Restore(ctx context.Context, data []byte) error {
	st, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceLocked(st)
	if err := m.persistLocked(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ledger restored",
		"transactions", len(m.state.Transactions),
		"budgets", len(m.state.Budgets))
	return nil
}

func (m *Manager) replace(st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceLocked(st)
}

func (m *Manager) replaceLocked(st State) {
	normalize(&st)
	st.Budgets = Recompute(st.Budgets, st.Transactions)
	m.state = st
	m.revision++
}

// Update applies fn to a copy of the state. When fn returns events the copy
// becomes the new state, budgets are recomputed and the snapshot is saved
// once. No events means nothing changed and nothing is written.
//
// A save failure is returned but the new state is kept in memory; the next
// successful save will persist it.
func (m *Manager) Update(ctx context.Context, fn func(s *State) ([]Event, error)) error {
	m.mu.Lock()
	next := m.state.Clone()
	events, err := fn(&next)
	if err != nil || len(events) == 0 {
		m.mu.Unlock()
		return err
	}
	next.Budgets = Recompute(next.Budgets, next.Transactions)
	m.state = next
	m.revision++
	saveErr := m.persistLocked(ctx)
	m.mu.Unlock()

	ts := m.now()
	for i := range events {
		if events[i].Timestamp.IsZero() {
			events[i].Timestamp = ts
		}
	}
	m.dispatch(ctx, events)
	return saveErr
}

func (m *Manager) persistLocked(ctx context.Context) error {
	data, err := EncodeSnapshot(m.state)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, StorageKey, data); err != nil {
		slog.ErrorContext(ctx, "Failed to persist ledger", "error", err)
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

func (m *Manager) dispatch(ctx context.Context, events []Event) {
	m.sinkMu.RLock()
	sinks := append([]EventSink(nil), m.sinks...)
	m.sinkMu.RUnlock()
	for _, e := range events {
		for _, s := range sinks {
			s.HandleEvent(ctx, e)
		}
	}
}

func normalize(s *State) {
	if s.Transactions == nil {
		s.Transactions = []core.Transaction{}
	}
	if s.Categories == nil {
		s.Categories = []core.Category{}
	}
	if s.Budgets == nil {
		s.Budgets = []core.Budget{}
	}
	if s.Reports == nil {
		s.Reports = []core.Report{}
	}
}

// Revision increases on every committed change. Readers use it as a cache key.
func (m *Manager) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *Manager) Transactions() []core.Transaction {
	return m.Snapshot().Transactions
}

func (m *Manager) Categories() []core.Category {
	return m.Snapshot().Categories
}

func (m *Manager) Budgets() []core.Budget {
	return m.Snapshot().Budgets
}

func (m *Manager) Reports() []core.Report {
	return m.Snapshot().Reports
}
