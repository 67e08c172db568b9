package draft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	_, err := store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "k", []byte("v")))
	value, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)

	require.NoError(t, store.Clear(ctx, "k"))
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing an absent key is not an error.
	assert.NoError(t, store.Clear(ctx, "k"))
}

func TestInMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	original := []byte("value")
	require.NoError(t, store.Save(ctx, "k", original))
	original[0] = 'x'

	loaded, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), loaded)
}
