package core

// janitor.go runs background maintenance for in-memory sessions.
//
// Sessions live only in memory and are dropped after a period of
// inactivity. The janitor sweeps expired sessions on a fixed interval and
// stops when its context is cancelled. A failed or empty sweep never stops
// the loop.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often expired sessions are removed.
const DefaultSweepInterval = time.Minute

// StartSessionJanitor removes expired sessions every interval until ctx is
// cancelled. It sweeps once immediately on start.
func (s *Service) StartSessionJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	slog.Info("session janitor started",
		"interval", interval.String(),
		"ttl", s.store.TTL().String(),
	)

	s.sweepSessions()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			s.sweepSessions()
		}
	}
}

// sweepSessions performs one expiry pass.
func (s *Service) sweepSessions() {
	start := time.Now()
	removed := s.store.Sweep(s.now())
	if removed == 0 {
		slog.Debug("session sweep completed", "remaining", s.store.Len())
		return
	}
	slog.Info("expired sessions removed",
		"removed", removed,
		"remaining", s.store.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
