package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/debot/internal/logging"
	"github.com/aretw0/debot/pkg/ports"
)

// lockEntry holds the per-session semaphore and the reference count.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Locker implements ports.SessionLocker with in-process locks, optionally
// backed by a distributed locker.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	distributed ports.SessionLocker
	logger      *slog.Logger
}

// Option configures the Locker.
type Option func(*Locker)

// WithDistributed also takes the lock from locker once the local lock is held.
func WithDistributed(locker ports.SessionLocker) Option {
	return func(l *Locker) {
		l.distributed = locker
	}
}

// WithLogger configures a logger for deferred errors.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locker) {
		l.logger = logger
	}
}

// NewLocker creates a session locker.
func NewLocker(opts ...Option) *Locker {
	l := &Locker{
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// acquire gets or creates a lock entry and increments its reference count.
// Every acquire must be paired with a release.
func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until the session is held locally (and remotely, when a
// distributed locker is configured) or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}
	unlockLocal := func() {
		<-entry.sem
		l.release(key)
	}

	var unlockRemote ports.UnlockFunc
	if l.distributed != nil {
		var err error
		unlockRemote, err = l.distributed.Lock(ctx, key, ttl)
		if err != nil {
			unlockLocal()
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
	}

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			if unlockRemote != nil {
				if err = unlockRemote(ctx); err != nil {
					l.logger.Warn("failed to release distributed lock (will expire via TTL)", "session_id", key, "err", err)
				}
			}
			unlockLocal()
		})
		return err
	}, nil
}

// Held returns the number of sessions with a holder or waiter.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
