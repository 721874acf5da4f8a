package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"flashq/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore wires miniredis and an in-memory Badger directly, skipping
// NewHybridStore so nothing touches disk.
func newTestStore(t *testing.T, ttl time.Duration) (*HybridStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	st := &HybridStore{
		rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		db:  db,
		ttl: ttl,
	}
	t.Cleanup(st.Close)
	return st, mr
}

func TestHybridStore_Set_And_Get(t *testing.T) {
	st, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "abc", "FlashMessages", `[{"id":1}]`))

	// Redis holds the hot copy with a TTL
	assert.Equal(t, `[{"id":1}]`, mr.HGet("session:abc", "FlashMessages"))
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	// Badger holds the durable copy
	err := st.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("session:abc:FlashMessages"))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		assert.Equal(t, `[{"id":1}]`, string(val))
		return err
	})
	require.NoError(t, err)

	val, err := st.Get(ctx, "abc", "FlashMessages")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, val)

	ok, err := st.Exists(ctx, "abc", "FlashMessages")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHybridStore_FallsBackToBadger(t *testing.T) {
	st, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "abc", "k", "v"))
	mr.FlushAll()

	val, err := st.Get(ctx, "abc", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	ok, err := st.Exists(ctx, "abc", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHybridStore_Delete(t *testing.T) {
	st, mr := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "abc", "k", "v"))
	require.NoError(t, st.Set(ctx, "abc", "other", "x"))
	require.NoError(t, st.Delete(ctx, "abc", "k"))

	_, err := st.Get(ctx, "abc", "k")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := st.Exists(ctx, "abc", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "x", mr.HGet("session:abc", "other"))
}

func TestHybridStore_GetMissing(t *testing.T) {
	st, _ := newTestStore(t, 0)

	_, err := st.Get(context.Background(), "nobody", "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHybridStore_ClientMode_NoBadger(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	// Initialize with EMPTY badger path (Simulating 'flashq push')
	st, err := NewHybridStore(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "abc", "k", "v"))
	val, err := st.Get(ctx, "abc", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	mr.FlushAll()
	_, err = st.Get(ctx, "abc", "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewHybridStore_RedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewHybridStore(addr, "", 0)
	assert.Error(t, err)
}

func TestHybridStore_Queue(t *testing.T) {
	st, mr := newTestStore(t, 0)
	ctx := context.Background()

	d := model.NewDelivery("abc", model.Warning, "disk almost full")
	require.NoError(t, st.Push(ctx, d))

	queued, err := mr.List(deliveryQueue)
	require.NoError(t, err)
	require.Len(t, queued, 1)

	var raw model.Delivery
	require.NoError(t, json.Unmarshal([]byte(queued[0]), &raw))
	assert.Equal(t, d.ID, raw.ID)

	got, err := st.PopQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, "abc", got.SessionID)
	assert.Equal(t, model.Warning, got.Category)
	assert.Equal(t, "disk almost full", got.Content)
}

func TestHybridStore_PopQueueEmpty(t *testing.T) {
	st, _ := newTestStore(t, 0)

	start := time.Now()
	_, err := st.PopQueue(context.Background())
	assert.ErrorIs(t, err, ErrQueueEmpty)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// A failed Badger write or delete must leave the Redis copy as it was.
func TestHybridStore_BadgerFailureKeepsRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	st := &HybridStore{rdb: rdb, db: db}
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "abc", "FlashMessages", "old"))
	require.NoError(t, db.Close())

	err = st.Set(ctx, "abc", "FlashMessages", "new")
	assert.Error(t, err)
	assert.Equal(t, "old", mr.HGet("session:abc", "FlashMessages"))

	err = st.Delete(ctx, "abc", "FlashMessages")
	assert.Error(t, err)
	assert.Equal(t, "old", mr.HGet("session:abc", "FlashMessages"))
}
