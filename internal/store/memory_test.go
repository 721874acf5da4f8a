package store

import (
	"context"
	"testing"
	"time"

	"flashq/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Get(ctx, "s1", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "s1", "k", "v"))
	require.NoError(t, st.Set(ctx, "s2", "k", "w"))

	val, err := st.Get(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	ok, err := st.Exists(ctx, "s2", "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, st.Delete(ctx, "s1", "k"))
	ok, err = st.Exists(ctx, "s1", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Delete(ctx, "missing", "k"))
}

func TestMemoryStore_PopQueueCancelled(t *testing.T) {
	st := NewMemoryStore()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := st.PopQueue(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	d := model.NewDelivery("s1", model.Success, "saved")
	require.NoError(t, st.Push(context.Background(), d))
	got, err := st.PopQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
}
