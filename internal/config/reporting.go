package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AgingBucket groups overdue installments by how many days past due they are.
// MaxDays nil means an open-ended bucket.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

// ReportingConfig tunes the read-side reconciliation views.
type ReportingConfig struct {
	AgingBuckets []AgingBucket `mapstructure:"agingBuckets"`
	DueSoonDays  int           `mapstructure:"dueSoonDays"`
}

func DefaultReportingConfig() ReportingConfig {
	return ReportingConfig{
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "61+", MinDays: 61, MaxDays: nil},
		},
		DueSoonDays: 7,
	}
}

func intPtr(v int) *int { return &v }

// ReportingConfigHolder serves the current reporting config and hot-reloads
// it when the underlying file changes.
type ReportingConfigHolder struct {
	current atomic.Value // holds ReportingConfig
}

func NewReportingConfigHolder() (*ReportingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reporting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ledgerline/config")
	v.AddConfigPath("/etc/ledgerline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEDGERLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultReportingConfig()
		v.SetDefault("reporting.agingBuckets", defaults.AgingBuckets)
		v.SetDefault("reporting.dueSoonDays", defaults.DueSoonDays)
	}

	var cfg ReportingConfig
	if err := v.UnmarshalKey("reporting", &cfg); err != nil {
		return nil, err
	}
	if err := validateReportingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReportingConfig
		if err := v.UnmarshalKey("reporting", &updated); err != nil {
			log.Printf("[reporting-config] reload failed: %v", err)
			return
		}
		if err := validateReportingConfig(updated); err != nil {
			log.Printf("[reporting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reporting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticReportingConfigHolder wraps a fixed config, used by tests.
func NewStaticReportingConfigHolder(cfg ReportingConfig) *ReportingConfigHolder {
	holder := &ReportingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ReportingConfigHolder) Get() ReportingConfig {
	return h.current.Load().(ReportingConfig)
}

func validateReportingConfig(cfg ReportingConfig) error {
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("reporting.agingBuckets cannot be empty")
	}
	if cfg.DueSoonDays <= 0 {
		return errors.New("reporting.dueSoonDays must be positive")
	}
	return nil
}
