package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"smartspend/internal/ledger"
	"smartspend/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Wednesday, mid-June.
var testNow = time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) (*ledger.Manager, *memory.Store) {
	t.Helper()
	var mu sync.Mutex
	n := 0
	ids := ledger.IDFunc(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("t-%d", n)
	})
	store := memory.New()
	m := ledger.New(store, ledger.WithIDGenerator(ids), ledger.WithClock(func() time.Time { return testNow }))
	require.NoError(t, m.Load(context.Background()))
	return m, store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }
