package memory

import (
	"context"
	"errors"
	"testing"

	"smartspend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissing(t *testing.T) {
	s := New()
	_, err := s.Load(context.Background(), "smartspend_data")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := New()

	payload := []byte(`{"version":1}`)
	require.NoError(t, s.Save(ctx, "k", payload))
	payload[0] = 'X'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got), "store must keep its own copy")
	assert.Equal(t, 1, s.Saves())
}

func TestStoreFailWith(t *testing.T) {
	ctx := context.Background()
	s := NewWithValue("k", []byte("old"))
	boom := errors.New("disk full")

	s.FailWith(boom)
	assert.ErrorIs(t, s.Save(ctx, "k", []byte("new")), boom)

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	s.FailWith(nil)
	assert.NoError(t, s.Save(ctx, "k", []byte("new")))
}
