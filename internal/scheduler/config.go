package scheduler

import (
	"time"

	"github.com/kickwatch/alerts-service/internal/config"
)

// Config is the per-run snapshot of the scheduler settings. It is
// derived from the hot-reloadable config holder at the start of each
// run so a reload never changes behavior mid-run.
type Config struct {
	Cron                      string
	Timezone                  string
	RunOnStartup              bool
	DryRun                    bool
	MaxAlertsPerProduct       int
	FallbackToLatestWhenEmpty bool
	TestEmail                 string
}

// ConfigSource yields the current scheduler settings. The config
// holder satisfies it; tests substitute a fixed value.
type ConfigSource interface {
	Get() config.SchedulerConfig
}

func ProvideConfigSource(h *config.SchedulerConfigHolder) ConfigSource {
	return h
}

func fromAppConfig(cfg config.SchedulerConfig) Config {
	return Config{
		Cron:                      cfg.Cron,
		Timezone:                  cfg.Timezone,
		RunOnStartup:              cfg.RunOnStartup,
		DryRun:                    cfg.DryRun,
		MaxAlertsPerProduct:       cfg.MaxAlertsPerProduct,
		FallbackToLatestWhenEmpty: cfg.FallbackToLatestWhenEmpty,
		TestEmail:                 cfg.TestEmail,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := config.DefaultSchedulerConfig()
	if c.Cron == "" {
		c.Cron = defaults.Cron
	}
	if c.Timezone == "" {
		c.Timezone = defaults.Timezone
	}
	if c.MaxAlertsPerProduct <= 0 {
		c.MaxAlertsPerProduct = defaults.MaxAlertsPerProduct
	}
	return c
}

// Location resolves the configured time zone, falling back to UTC when
// the zone name is unknown to the tzdata on the host.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
