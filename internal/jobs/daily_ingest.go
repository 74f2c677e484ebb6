// Package jobs runs background work on a wall-clock schedule.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/fx_rate_dashboard/internal/core/domain"
	portssvc "github.com/SscSPs/fx_rate_dashboard/internal/core/ports/services"
)

// DailyIngest triggers the rate ingest once a day at a fixed local time.
type DailyIngest struct {
	svc    portssvc.ExchangeRateIngestSvc
	loc    *time.Location
	hour   int
	minute int
	logger *slog.Logger
	now    func() time.Time
}

// NewDailyIngest creates the job. A nil location means UTC.
func NewDailyIngest(svc portssvc.ExchangeRateIngestSvc, loc *time.Location, hour, minute int, logger *slog.Logger) *DailyIngest {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyIngest{
		svc:    svc,
		loc:    loc,
		hour:   hour,
		minute: minute,
		logger: logger.With(slog.String("job", "daily_ingest")),
		now:    time.Now,
	}
}

// NextRun returns the first scheduled instant strictly after t.
func (j *DailyIngest) NextRun(t time.Time) time.Time {
	local := t.In(j.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), j.hour, j.minute, 0, 0, j.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, j.hour, j.minute, 0, 0, j.loc)
	}
	return next
}

// Today is the calendar date in the job's zone.
func (j *DailyIngest) Today() time.Time {
	return domain.DateOnly(j.now().In(j.loc))
}

// RunOnce ingests today's rates.
func (j *DailyIngest) RunOnce(ctx context.Context) (int, error) {
	date := j.Today()
	dateAttr := slog.String("date", date.Format(time.DateOnly))

	j.logger.Info("Scheduled ingest starting", dateAttr)
	start := time.Now()
	count, err := j.svc.IngestForDate(ctx, date)
	if err != nil {
		j.logger.Error("Scheduled ingest failed", dateAttr, slog.String("error", err.Error()))
		return 0, err
	}
	j.logger.Info("Scheduled ingest finished", dateAttr,
		slog.Int("rows", count),
		slog.Duration("took", time.Since(start)))
	return count, nil
}

// Run blocks, ingesting at every scheduled instant until ctx is cancelled.
func (j *DailyIngest) Run(ctx context.Context) {
	for {
		next := j.NextRun(j.now())
		j.logger.Info("Next scheduled ingest", slog.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("Daily ingest job stopped")
			return
		case <-timer.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}
