package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/debot/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed runner keeps a session locked.
const DefaultLockTTL = 30 * time.Second

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithResume makes Run restore the session from its checkpoint instead of starting fresh.
func WithResume(resume bool) Option {
	return func(r *Runner) {
		r.resume = resume
	}
}

// WithLock guards the session against concurrent runners for its whole duration.
// A non-positive ttl falls back to DefaultLockTTL.
func WithLock(locker ports.SessionLocker, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = locker
		if ttl <= 0 {
			ttl = DefaultLockTTL
		}
		r.lockTTL = ttl
	}
}

// WithBanner prints text once before the session starts.
func WithBanner(banner string) Option {
	return func(r *Runner) {
		r.banner = banner
	}
}
