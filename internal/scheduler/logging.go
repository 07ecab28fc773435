package scheduler

import (
	"context"
	"time"

	obscontext "github.com/kickwatch/alerts-service/internal/observability/context"
	obslogger "github.com/kickwatch/alerts-service/internal/observability/logger"
	"go.uber.org/zap"
)

// runState carries per-run identity for log correlation.
type runState struct {
	runID     string
	date      time.Time
	dryRun    bool
	startedAt time.Time
}

func (s *Scheduler) beginRun(ctx context.Context, date time.Time, cfg Config) (context.Context, *runState) {
	run := &runState{
		runID:     s.genID.Generate().String(),
		date:      date,
		dryRun:    cfg.DryRun,
		startedAt: s.clock.Now(),
	}
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	ctx = obscontext.WithRequestID(ctx, run.runID)
	return ctx, run
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logRunStart(ctx context.Context, run *runState) {
	s.logger(ctx).Info("scheduler.run.start",
		zap.String("run_id", run.runID),
		zap.String("date", run.date.Format("2006-01-02")),
		zap.Bool("dry_run", run.dryRun),
	)
}

func (s *Scheduler) logRunSummary(ctx context.Context, run *runState, summary RunSummary) {
	s.logger(ctx).Info("scheduler.summary",
		zap.String("run_id", run.runID),
		zap.String("date", summary.Date),
		zap.Bool("dry_run", run.dryRun),
		zap.Int("scraped_count", summary.ScrapedCount),
		zap.Int("deduped_count", summary.DedupedCount),
		zap.Int("alerts_checked", summary.AlertsChecked),
		zap.Int("triggered", summary.Triggered),
		zap.Int("emails_sent", summary.EmailsSent),
		zap.Int("suppressed", summary.Suppressed),
		zap.Int("errors", summary.Errors),
		zap.Int64("duration_ms", time.Since(run.startedAt).Milliseconds()),
	)
}
