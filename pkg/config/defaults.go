package config

import (
	"time"

	"bastion-hq/rampart/pkg/waf"
)

// Default values applied to unset fields.
const (
	DefaultListenAddress  = ":8080"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultIdleTimeout    = 120 * time.Second
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRulesetDebounce = 500 * time.Millisecond

	DefaultMetricsPath = "/metrics"

	DefaultEventsReporter    = "log"
	DefaultSQLitePath        = "rampart-events.db"
	DefaultRetentionSchedule = "0 3 * * *" // daily at 03:00
)

// ApplyDefaults fills unset fields with default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Ruleset.Debounce == 0 {
		cfg.Ruleset.Debounce = DefaultRulesetDebounce
	}

	if cfg.WAF.Budget == 0 {
		cfg.WAF.Budget = waf.DefaultBudget
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Events.Reporter == "" {
		cfg.Events.Reporter = DefaultEventsReporter
	}
	if cfg.Events.SQLite.Path == "" {
		cfg.Events.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Events.Retention.Schedule == "" {
		cfg.Events.Retention.Schedule = DefaultRetentionSchedule
	}
}
