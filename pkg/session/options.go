package session

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Registry.
type Option func(*Registry)

// WithStore sets the backing session store.
func WithStore(store Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithConfig sets the full configuration.
func WithConfig(config Config) Option {
	return func(r *Registry) {
		r.config = config
	}
}

// WithLogger sets the logger for heartbeat and removal failures.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMaxSessions sets the per-account concurrency bound.
func WithMaxSessions(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.config.MaxSessions = n
		}
	}
}

// WithHeartbeatInterval sets the client heartbeat interval.
func WithHeartbeatInterval(interval time.Duration) Option {
	return func(r *Registry) {
		if interval > 0 {
			r.config.HeartbeatInterval = interval
		}
	}
}

// WithStaleAfter sets the staleness threshold for reaping.
func WithStaleAfter(threshold time.Duration) Option {
	return func(r *Registry) {
		if threshold > 0 {
			r.config.StaleAfter = threshold
		}
	}
}
