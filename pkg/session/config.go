package session

import "time"

// Config holds session concurrency configuration.
type Config struct {
	// MaxSessions is the concurrency bound per account.
	MaxSessions int `env:"SESSION_MAX_SESSIONS" envDefault:"3"`

	// HeartbeatInterval is how often each client refreshes its session.
	HeartbeatInterval time.Duration `env:"SESSION_HEARTBEAT_INTERVAL" envDefault:"60s"`

	// StaleAfter is the heartbeat age past which a session is eligible for
	// reaping. Keep it at several multiples of HeartbeatInterval so a
	// single dropped heartbeat does not kill a live session.
	StaleAfter time.Duration `env:"SESSION_STALE_AFTER" envDefault:"5m"`

	// ReapInterval is how often stale sessions are reclaimed
	// (0 disables the built-in reaper of the memory store).
	ReapInterval time.Duration `env:"SESSION_REAP_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns the default session concurrency configuration.
func DefaultConfig() Config {
	return Config{
		MaxSessions:       3,
		HeartbeatInterval: 60 * time.Second,
		StaleAfter:        5 * time.Minute,
		ReapInterval:      time.Minute,
	}
}
