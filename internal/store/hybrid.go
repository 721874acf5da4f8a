package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"flashq/internal/model"

	"github.com/dgraph-io/badger/v4"
	"github.com/redis/go-redis/v9"
)

const (
	deliveryQueue = "queue:flash"
	// popTimeout bounds each BRPOP so a cancelled context is noticed.
	popTimeout = time.Second
)

// HybridStore combines Redis (hot session reads, delivery queue) and Badger
// (durable copy that survives a Redis flush).
type HybridStore struct {
	rdb *redis.Client
	db  *badger.DB
	ttl time.Duration
}

// NewHybridStore initializes databases.
// Pass badgerPath="" to run in "Redis-Only" mode (for CLI tools).
func NewHybridStore(redisAddr string, badgerPath string, ttl time.Duration) (*HybridStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	var db *badger.DB
	var err error

	if badgerPath != "" {
		opts := badger.DefaultOptions(badgerPath)
		opts.Logger = nil // Silence default logger
		db, err = badger.Open(opts)
		if err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to open badger: %w", err)
		}
	}

	return &HybridStore{rdb: rdb, db: db, ttl: ttl}, nil
}

// Close cleans up connections
func (s *HybridStore) Close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func badgerKey(sessionID, key string) []byte {
	return []byte("session:" + sessionID + ":" + key)
}

// Set writes the value to Badger, when configured, and then to the session
// hash in Redis. A Badger failure leaves Redis untouched.
func (s *HybridStore) Set(ctx context.Context, sessionID, key, value string) error {
	if s.db != nil {
		err := s.db.Update(func(txn *badger.Txn) error {
			e := badger.NewEntry(badgerKey(sessionID, key), []byte(value))
			if s.ttl > 0 {
				e = e.WithTTL(s.ttl)
			}
			return txn.SetEntry(e)
		})
		if err != nil {
			return fmt.Errorf("badger set: %w", err)
		}
	}

	hkey := sessionKey(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, hkey, key, value)
	if s.ttl > 0 {
		pipe.Expire(ctx, hkey, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Get reads from Redis first and falls back to Badger.
func (s *HybridStore) Get(ctx context.Context, sessionID, key string) (string, error) {
	val, err := s.rdb.HGet(ctx, sessionKey(sessionID), key).Result()
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", err
	}
	if s.db == nil {
		return "", ErrNotFound
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(sessionID, key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = string(v)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Exists reports whether key is set for the session in either database.
func (s *HybridStore) Exists(ctx context.Context, sessionID, key string) (bool, error) {
	ok, err := s.rdb.HExists(ctx, sessionKey(sessionID), key).Result()
	if err != nil {
		return false, err
	}
	if ok || s.db == nil {
		return ok, nil
	}

	err = s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(sessionID, key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes key from Badger first, then from Redis, so a failed
// delete never leaves a stale durable copy behind a deleted hot one.
func (s *HybridStore) Delete(ctx context.Context, sessionID, key string) error {
	if s.db != nil {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(badgerKey(sessionID, key))
		})
		if err != nil {
			return fmt.Errorf("badger delete: %w", err)
		}
	}
	return s.rdb.HDel(ctx, sessionKey(sessionID), key).Err()
}

// Push queues a delivery for the worker.
func (s *HybridStore) Push(ctx context.Context, d model.Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, deliveryQueue, data).Err()
}

// PopQueue waits up to popTimeout for a delivery in the Redis queue and
// returns ErrQueueEmpty when none arrived.
func (s *HybridStore) PopQueue(ctx context.Context) (*model.Delivery, error) {
	result, err := s.rdb.BRPop(ctx, popTimeout, deliveryQueue).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrQueueEmpty
	}
	if err != nil {
		return nil, err
	}

	var d model.Delivery
	if err := json.Unmarshal([]byte(result[1]), &d); err != nil {
		return nil, fmt.Errorf("decode delivery: %w", err)
	}
	return &d, nil
}
