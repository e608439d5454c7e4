package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/attestly/attest-backend/internal/service"
)

// SweepWorker periodically force-completes expired IN_PROGRESS sessions whose
// participants stopped polling. The lazy guard on the request path already
// catches active participants; this loop is the backstop for abandoned tabs.
type SweepWorker struct {
	timer    *service.TimerService
	interval time.Duration
	log      zerolog.Logger
}

// NewSweepWorker creates a new SweepWorker.
func NewSweepWorker(timer *service.TimerService, interval time.Duration, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		timer:    timer,
		interval: interval,
		log:      log.With().Str("component", "sweep_worker").Logger(),
	}
}

func (w *SweepWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("SweepWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("SweepWorker stopped")
			return
		case <-ticker.C:
			swept, err := w.timer.SweepAll(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("Sweep pass failed")
				continue
			}
			if swept > 0 {
				w.log.Info().Int("swept", swept).Msg("Expired sessions swept")
			}
		}
	}
}
