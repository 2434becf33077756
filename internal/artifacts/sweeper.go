package artifacts

import (
	"context"
	"log/slog"
	"time"

	"mediagate/internal/logging"
)

// Sweeper periodically reclaims abandoned scratch files.
type Sweeper struct {
	store    *Store
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewSweeper wires a sweep loop around the store. Non-positive interval
// or maxAge values fall back to conservative defaults.
func NewSweeper(store *Store, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Sweeper{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		logger:   logging.WithComponent(logger, "sweeper"),
	}
}

// Run sweeps once immediately and then on every tick until the context is
// cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// SweepNow triggers a single sweep outside the schedule, for the control
// surface.
func (s *Sweeper) SweepNow() (int, error) {
	return s.store.SweepTemp(s.maxAge)
}

func (s *Sweeper) sweep() {
	removed, err := s.store.SweepTemp(s.maxAge)
	if err != nil {
		s.logger.Warn("temp sweep incomplete", logging.Error(err), slog.Int("removed", removed))
		return
	}
	if removed > 0 {
		s.logger.Info("temp sweep", slog.Int("removed", removed))
	}
}
