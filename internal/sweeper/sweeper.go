package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	models "github.com/pawhaven/bookingsync/internal"
)

var (
	sweepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookingsync_sweeps_total",
		Help: "The total number of auto-complete sweeps attempted",
	})
	sweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookingsync_sweep_errors_total",
		Help: "The total number of auto-complete sweeps that failed",
	})
	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookingsync_sessions_completed_total",
		Help: "The total number of sessions completed by sweeps",
	})
)

// Completer is the one service operation the sweeper needs.
type Completer interface {
	AutoCompleteSessions(ctx context.Context) (models.SweepResult, error)
}

// Sweeper periodically asks the backend to complete overdue sessions. It is
// the single background-initiated mutation source and goes through the same
// mirror/notify path as user-initiated transitions.
type Sweeper struct {
	svc      Completer
	interval time.Duration
	log      *slog.Logger
}

func New(svc Completer, interval time.Duration, log *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run sweeps on a fixed ticker until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("session sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one auto-complete pass. Failures are logged and counted; the
// next tick retries.
func (s *Sweeper) Sweep(ctx context.Context) {
	sweepsTotal.Inc()
	result, err := s.svc.AutoCompleteSessions(ctx)
	if err != nil {
		sweepErrors.Inc()
		s.log.Warn("auto-complete sweep failed", "error", err)
		return
	}
	if result.CompletedCount > 0 {
		sessionsCompleted.Add(float64(result.CompletedCount))
		s.log.Info("auto-completed sessions", "count", result.CompletedCount)
	}
}
