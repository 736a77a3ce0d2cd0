package config

import "fmt"

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validReporters = map[string]bool{
	"log":    true,
	"sqlite": true,
	"none":   true,
}

// Validate checks the configuration for consistency. It expects defaults to
// have been applied.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Server.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must not be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must not be negative")
	}
	if cfg.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("server.max_header_bytes must not be negative")
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", cfg.Logging.Level)
	}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format %q is not one of json, text", cfg.Logging.Format)
	}

	if cfg.Ruleset.Path == "" {
		return fmt.Errorf("ruleset.path must not be empty")
	}
	if cfg.Ruleset.Debounce < 0 {
		return fmt.Errorf("ruleset.debounce must not be negative")
	}

	if cfg.WAF.Budget <= 0 {
		return fmt.Errorf("waf.budget must be positive")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		return fmt.Errorf("metrics.path must not be empty when metrics are enabled")
	}

	if !validReporters[cfg.Events.Reporter] {
		return fmt.Errorf("events.reporter %q is not one of log, sqlite, none", cfg.Events.Reporter)
	}
	if cfg.Events.Reporter == "sqlite" && cfg.Events.SQLite.Path == "" {
		return fmt.Errorf("events.sqlite.path must not be empty for the sqlite reporter")
	}
	if cfg.Events.Retention.Days < 0 {
		return fmt.Errorf("events.retention.days must not be negative")
	}

	return nil
}
