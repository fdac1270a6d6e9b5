// Package snapshot caches generated seating plans in Redis so repeated
// reads and the Excel export do not recompute them.  Keys are scoped per
// exam session; entries expire after a configurable TTL.  Concurrent
// writers last-write-win: serializing generate-then-save flows is the
// caller's responsibility.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/blazex/seat-allocation/internal/seating"
)

// ErrNotFound is returned when no snapshot exists for a session.
var ErrNotFound = errors.New("snapshot not found")

// Store reads and writes plan snapshots.  A nil Redis client disables the
// store: writes become no-ops and reads report ErrNotFound, so the
// service degrades to recomputing plans.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a Store around the given client.  ttl bounds how long a
// snapshot stays readable after its last write.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis backend is attached.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

func key(sessionID uint64) string {
	return fmt.Sprintf("seating:snapshot:%d", sessionID)
}

// Put stores the formatted plan for a session, replacing any previous
// snapshot and resetting the TTL.
func (s *Store) Put(ctx context.Context, sessionID uint64, out *seating.Output) error {
	if !s.Enabled() {
		return nil
	}
	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sessionID), body, s.ttl).Err(); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Get loads the snapshot for a session.  ErrNotFound covers both a
// missing key and a disabled store.
func (s *Store) Get(ctx context.Context, sessionID uint64) (*seating.Output, error) {
	if !s.Enabled() {
		return nil, ErrNotFound
	}
	body, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var out seating.Output
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &out, nil
}

// Delete drops a session's snapshot, typically after its allocation is
// reset.
func (s *Store) Delete(ctx context.Context, sessionID uint64) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Del(ctx, key(sessionID)).Err()
}
