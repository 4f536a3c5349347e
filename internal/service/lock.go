package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// GameLock guarantees at most one attendance update per (user, game) is
// being applied at a time, across server instances when Redis is
// available and within the process otherwise.
type GameLock struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string

	mu    sync.Mutex
	local map[string]struct{}
}

// NewGameLock returns a lock backed by rdb, or an in-process lock when rdb
// is nil.  ttl bounds how long a crashed holder can block the game.
func NewGameLock(rdb *redis.Client, ttl time.Duration) *GameLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &GameLock{rdb: rdb, ttl: ttl, prefix: "attendlock", local: make(map[string]struct{})}
}

// TryAcquire claims the lock.  It returns ok=false without error when the
// lock is already held.  The returned release func must be called once.
func (l *GameLock) TryAcquire(ctx context.Context, userID, gameID uint64) (release func(), ok bool, err error) {
	key := fmt.Sprintf("%s:%d:%d", l.prefix, userID, gameID)
	if l.rdb == nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if _, held := l.local[key]; held {
			return func() {}, false, nil
		}
		l.local[key] = struct{}{}
		return func() {
			l.mu.Lock()
			delete(l.local, key)
			l.mu.Unlock()
		}, true, nil
	}

	token := uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return func() {}, false, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return func() {}, false, nil
	}
	return func() {
		// The request context may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{key}, token).Err()
	}, true, nil
}
