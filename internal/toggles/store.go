// Package toggles holds the per-event-type enable flags and the main
// delivery target. Reads happen before every dispatch; writes only through
// the admin surface. The Redis snapshot keeps admin settings across
// restarts and is written fire-and-forget, so concurrent readers see the
// in-memory value immediately and eventual consistency is acceptable.
package toggles

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	togglesKey      = "relay:toggles"
	targetKey       = "relay:target"
	snapshotTimeout = 5 * time.Second
)

type Store struct {
	mu      sync.RWMutex
	enabled map[string]bool
	target  int64

	rdb *redis.Client
	log *slog.Logger
}

// New creates a store with the given default delivery target. Event types
// without an explicit flag are enabled.
func New(rdb *redis.Client, defaultTarget int64, log *slog.Logger) *Store {
	return &Store{
		enabled: make(map[string]bool),
		target:  defaultTarget,
		rdb:     rdb,
		log:     log,
	}
}

// Load restores the snapshot from Redis. Missing keys are not an error;
// the defaults stand.
func (s *Store) Load(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	flags, err := s.rdb.HGetAll(ctx, togglesKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	s.mu.Lock()
	for typ, v := range flags {
		s.enabled[typ] = v == "1"
	}
	s.mu.Unlock()

	raw, err := s.rdb.Get(ctx, targetKey).Result()
	if err == nil {
		if target, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			s.mu.Lock()
			s.target = target
			s.mu.Unlock()
		}
	} else if err != redis.Nil {
		return err
	}

	return nil
}

// IsEnabled reports whether the event type should be processed.
func (s *Store) IsEnabled(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	on, ok := s.enabled[eventType]
	if !ok {
		return true
	}
	return on
}

func (s *Store) SetEnabled(eventType string, on bool) {
	s.mu.Lock()
	s.enabled[eventType] = on
	s.mu.Unlock()

	s.snapshot(func(ctx context.Context) error {
		v := "0"
		if on {
			v = "1"
		}
		return s.rdb.HSet(ctx, togglesKey, eventType, v).Err()
	})
}

// All returns a copy of the explicit flags, for the admin surface.
func (s *Store) All() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.enabled))
	for k, v := range s.enabled {
		out[k] = v
	}
	return out
}

// MainTarget returns the current delivery chat.
func (s *Store) MainTarget() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

func (s *Store) SetMainTarget(chatID int64) {
	s.mu.Lock()
	s.target = chatID
	s.mu.Unlock()

	s.snapshot(func(ctx context.Context) error {
		return s.rdb.Set(ctx, targetKey, strconv.FormatInt(chatID, 10), 0).Err()
	})
}

// snapshot persists a mutation in the background; failures are logged and
// dropped so admin operations never block on Redis.
func (s *Store) snapshot(fn func(ctx context.Context) error) {
	if s.rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn("toggle snapshot failed", "error", err)
		}
	}()
}
