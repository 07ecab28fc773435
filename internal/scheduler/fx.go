package scheduler

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfigSource),
	fx.Provide(New),
)

// CronModule additionally starts the recurring trigger. The API-only
// deployment imports Module alone so on-demand runs still work there.
var CronModule = fx.Module("scheduler.cron",
	Module,
	fx.Invoke(RunCron),
)

func RunCron(lc fx.Lifecycle, sched *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runner, err := sched.StartCron()
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					stopCtx := runner.Stop()
					select {
					case <-stopCtx.Done():
					case <-ctx.Done():
					}
					return nil
				},
			})
			return nil
		},
	})
}
