package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "smartspend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "smartspend_data")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Save(ctx, "smartspend_data", []byte(`{"version":1}`)))
	require.NoError(t, s.Save(ctx, "smartspend_data", []byte(`{"version":1,"transactions":[]}`)))

	got, err := s.Load(ctx, "smartspend_data")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"transactions":[]}`, string(got))
	assert.NoError(t, s.Ping(ctx))
}

func TestSQLiteStoreHistoryIsBounded(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.SetHistoryLimit(3)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, "k", []byte(fmt.Sprintf("v%d", i))))
	}

	revs, err := s.History(ctx, "k", 10)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	assert.Equal(t, "v4", string(revs[0].Value))
	assert.Equal(t, "v2", string(revs[2].Value))

	rev, err := s.Revision(ctx, revs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "v3", string(rev.Value))

	_, err = s.Revision(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStoreReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "smartspend.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "k", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "persisted", string(got))
}
