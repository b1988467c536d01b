// Package cache provides the Redis-backed per-session turn lock.
// Falls back to an in-memory lock when Redis is unavailable, which is
// sufficient for a single-process deployment.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/logging"
)

// ErrTurnInProgress is returned when a session already has a turn in flight.
// The HTTP layer maps it to 409 Conflict.
var ErrTurnInProgress = errors.New("turn already in progress for session")

// Turn processing is bounded by the generation timeout plus research, so a
// lock older than this is a leak from a crashed worker and may expire.
const lockTTL = 45 * time.Second

// TurnLock serializes turn processing per session. Each session has at most
// one turn in flight; concurrent requests are rejected rather than queued.
type TurnLock struct {
	redis *db.RedisClient // nil when running without Redis

	mu    sync.Mutex
	local map[string]time.Time
}

// NewTurnLock creates a turn lock. Pass nil to run on the in-memory
// fallback only.
func NewTurnLock(redis *db.RedisClient) *TurnLock {
	return &TurnLock{
		redis: redis,
		local: make(map[string]time.Time),
	}
}

// Acquire takes the lock for a session, returning ErrTurnInProgress when a
// turn is already running. A Redis error degrades to the in-memory lock.
func (t *TurnLock) Acquire(ctx context.Context, sessionID string) error {
	if t.redis != nil {
		ok, err := t.redis.SetNX(ctx, lockKey(sessionID), "1", lockTTL)
		if err == nil {
			if !ok {
				return ErrTurnInProgress
			}
			return nil
		}
		logging.S().Warnw("turn lock redis error, using in-memory fallback", "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if deadline, held := t.local[sessionID]; held && time.Now().Before(deadline) {
		return ErrTurnInProgress
	}
	t.local[sessionID] = time.Now().Add(lockTTL)
	return nil
}

// Release frees the lock for a session.
func (t *TurnLock) Release(ctx context.Context, sessionID string) {
	if t.redis != nil {
		if err := t.redis.Del(ctx, lockKey(sessionID)); err != nil {
			logging.S().Warnw("turn lock release failed", "session_id", sessionID, "error", err)
		}
	}

	t.mu.Lock()
	delete(t.local, sessionID)
	t.mu.Unlock()
}

func lockKey(sessionID string) string {
	return "angel:turnlock:" + sessionID
}
