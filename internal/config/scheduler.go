package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// SchedulerConfig controls the daily alert evaluation run.
type SchedulerConfig struct {
	Cron                      string `mapstructure:"cron"`
	Timezone                  string `mapstructure:"timezone"`
	RunOnStartup              bool   `mapstructure:"runOnStartup"`
	DryRun                    bool   `mapstructure:"dryRun"`
	MaxAlertsPerProduct       int    `mapstructure:"maxAlertsPerProduct"`
	FallbackToLatestWhenEmpty bool   `mapstructure:"fallbackToLatestWhenEmpty"`
	TestEmail                 string `mapstructure:"testEmail"`
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Cron:                      "30 23 * * *",
		Timezone:                  "Asia/Manila",
		RunOnStartup:              false,
		DryRun:                    false,
		MaxAlertsPerProduct:       1000,
		FallbackToLatestWhenEmpty: true,
		TestEmail:                 "",
	}
}

type SchedulerConfigHolder struct {
	current atomic.Value // holds SchedulerConfig
}

func NewSchedulerConfigHolder() (*SchedulerConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scheduler")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kickwatch/config")
	v.AddConfigPath("/etc/kickwatch")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KICKWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSchedulerConfig()
	v.SetDefault("scheduler.cron", defaults.Cron)
	v.SetDefault("scheduler.timezone", defaults.Timezone)
	v.SetDefault("scheduler.runOnStartup", defaults.RunOnStartup)
	v.SetDefault("scheduler.dryRun", defaults.DryRun)
	v.SetDefault("scheduler.maxAlertsPerProduct", defaults.MaxAlertsPerProduct)
	v.SetDefault("scheduler.fallbackToLatestWhenEmpty", defaults.FallbackToLatestWhenEmpty)
	v.SetDefault("scheduler.testEmail", defaults.TestEmail)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg SchedulerConfig
	if err := v.UnmarshalKey("scheduler", &cfg); err != nil {
		return nil, err
	}
	if err := validateSchedulerConfig(cfg); err != nil {
		return nil, err
	}

	holder := &SchedulerConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated SchedulerConfig
		if err := v.UnmarshalKey("scheduler", &updated); err != nil {
			log.Printf("[scheduler-config] reload failed: %v", err)
			return
		}
		if err := validateSchedulerConfig(updated); err != nil {
			log.Printf("[scheduler-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[scheduler-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *SchedulerConfigHolder) Get() SchedulerConfig {
	return h.current.Load().(SchedulerConfig)
}

func validateSchedulerConfig(cfg SchedulerConfig) error {
	if strings.TrimSpace(cfg.Cron) == "" {
		return errors.New("scheduler.cron cannot be empty")
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		return errors.New("scheduler.timezone cannot be empty")
	}
	if cfg.MaxAlertsPerProduct <= 0 {
		return errors.New("scheduler.maxAlertsPerProduct must be positive")
	}
	return nil
}
