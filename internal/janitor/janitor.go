package janitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirzhanov/jobboard-auth/internal/metrics"
	"github.com/amirzhanov/jobboard-auth/internal/repository"
	"github.com/robfig/cron/v3"
)

// Janitor removes dead OTP rows on a schedule. Every read already
// filters on expiry, so the sweep is storage hygiene, not correctness.
type Janitor struct {
	otps     repository.OtpRepository
	logger   *slog.Logger
	schedule string
}

func New(otps repository.OtpRepository, logger *slog.Logger, schedule string) *Janitor {
	return &Janitor{
		otps:     otps,
		logger:   logger.With("component", "janitor"),
		schedule: schedule,
	}
}

// Start runs sweeps on the cron schedule until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.Sweep(ctx) }); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}
	c.Start()
	j.logger.Info("janitor started", "schedule", j.schedule)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		j.logger.Info("janitor shut down")
	}()
	return nil
}

func (j *Janitor) Sweep(ctx context.Context) {
	purged, err := j.otps.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("purge expired otps", "error", err)
		return
	}
	if purged > 0 {
		metrics.OtpPurgedTotal.Add(float64(purged))
		j.logger.Info("purged expired otps", "count", purged)
	}
}
