package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartCron wires the recurring trigger. The cron expression and zone
// come from the config snapshot taken at startup; a config reload
// takes effect on the next process restart for the schedule itself,
// while run behavior (dry run, caps, test email) reloads live.
func (s *Scheduler) StartCron() (*cron.Cron, error) {
	cfg := s.config()

	runner := cron.New(cron.WithLocation(cfg.Location()))
	_, err := runner.AddFunc(cfg.Cron, func() {
		if _, err := s.RunToday(context.Background()); err != nil {
			s.log.Error("scheduler.run_failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	runner.Start()
	s.log.Info("scheduler.cron_started",
		zap.String("cron", cfg.Cron),
		zap.String("timezone", cfg.Timezone),
	)

	if cfg.RunOnStartup {
		go func() {
			if _, err := s.RunToday(context.Background()); err != nil {
				s.log.Error("scheduler.startup_run_failed", zap.Error(err))
			}
		}()
	}
	return runner, nil
}
