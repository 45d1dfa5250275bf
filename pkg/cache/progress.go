package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "autoassign:progress:"

// ProgressStore persists auto-assign progress snapshots so pollers survive
// API restarts. Redis-backed; falls back to an in-memory map when no client
// is configured (tests, single-node dev).
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	local map[string][]byte
}

// NewProgressStore builds a store. A nil client selects the in-memory mode.
func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ProgressStore{client: client, ttl: ttl, local: make(map[string][]byte)}
}

// Save writes the latest snapshot for a run. Best effort: callers log and
// continue on error, a lost snapshot never fails the run itself.
func (s *ProgressStore) Save(ctx context.Context, runID string, snapshot interface{}) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if s.client == nil {
		s.mu.Lock()
		s.local[runID] = payload
		s.mu.Unlock()
		return nil
	}
	return s.client.Set(ctx, progressKeyPrefix+runID, payload, s.ttl).Err()
}

// Load reads the latest snapshot for a run into out. Returns false when the
// run is unknown or expired.
func (s *ProgressStore) Load(ctx context.Context, runID string, out interface{}) (bool, error) {
	var payload []byte
	if s.client == nil {
		s.mu.RLock()
		raw, ok := s.local[runID]
		s.mu.RUnlock()
		if !ok {
			return false, nil
		}
		payload = raw
	} else {
		raw, err := s.client.Get(ctx, progressKeyPrefix+runID).Bytes()
		if err == redis.Nil {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		payload = raw
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, err
	}
	return true, nil
}
