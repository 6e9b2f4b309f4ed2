package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/datamodel/pkg/ports"
)

// Locker implements ports.DistributedLocker inside one process. Locks expire after their
// ttl like their Redis counterparts.
type Locker struct {
	mu    sync.Mutex
	held  map[string]lease
	retry time.Duration
}

type lease struct {
	token   uint64
	expires time.Time
}

var tokens struct {
	sync.Mutex
	next uint64
}

func nextToken() uint64 {
	tokens.Lock()
	defer tokens.Unlock()
	tokens.next++
	return tokens.next
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]lease), retry: 10 * time.Millisecond}
}

func (l *Locker) tryLock(key string, ttl time.Duration) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return 0, false
	}
	tok := nextToken()
	l.held[key] = lease{token: tok, expires: now.Add(ttl)}
	return tok, true
}

// Lock polls until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		if tok, ok := l.tryLock(key, ttl); ok {
			return func(context.Context) error {
				l.mu.Lock()
				defer l.mu.Unlock()
				if cur, ok := l.held[key]; ok && cur.token == tok {
					delete(l.held, key)
				}
				return nil
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
