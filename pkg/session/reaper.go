package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Reaper periodically reclaims sessions whose heartbeat has gone stale.
// It is the operator-side recovery path for sessions that terminated
// ungracefully (crash, network loss) and never called Remove. Run one
// reaper per shared store; it is not part of any client.
type Reaper struct {
	store      Store
	staleAfter time.Duration
	interval   time.Duration
	log        *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// NewReaper creates a Reaper over the given store using the config's
// StaleAfter and ReapInterval. Call Start to launch it.
func NewReaper(store Store, cfg Config, log *slog.Logger) *Reaper {
	if log == nil {
		log = slog.Default()
	}
	return &Reaper{
		store:      store,
		staleAfter: cfg.StaleAfter,
		interval:   cfg.ReapInterval,
		log:        log,
		done:       make(chan struct{}),
	}
}

// Start launches the reap loop in a background goroutine.
func (r *Reaper) Start() {
	go r.run()
}

// Stop terminates the reap loop. Idempotent.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

func (r *Reaper) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-r.staleAfter)
			reclaimed, err := r.store.DeleteStale(context.Background(), cutoff)
			if err != nil {
				r.log.Warn("stale session reap failed", slog.Any("error", err))
				continue
			}
			if reclaimed > 0 {
				r.log.Info("reclaimed stale sessions", slog.Int64("count", reclaimed))
			}
		case <-r.done:
			return
		}
	}
}
