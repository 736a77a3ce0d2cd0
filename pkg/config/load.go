package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides on top. Variables follow the
// RAMPART_SECTION_FIELD convention (e.g. RAMPART_SERVER_LISTEN_ADDRESS)
// and always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies RAMPART_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("RAMPART_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("RAMPART_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("RAMPART_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("RAMPART_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("RAMPART_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	if val := os.Getenv("RAMPART_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("RAMPART_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("RAMPART_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.AddSource = b
		}
	}

	if val := os.Getenv("RAMPART_RULESET_PATH"); val != "" {
		cfg.Ruleset.Path = val
	}
	if val := os.Getenv("RAMPART_RULESET_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Ruleset.Watch = b
		}
	}
	if val := os.Getenv("RAMPART_RULESET_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Ruleset.Debounce = d
		}
	}

	if val := os.Getenv("RAMPART_WAF_ENGINE"); val != "" {
		cfg.WAF.Engine = val
	}
	if val := os.Getenv("RAMPART_WAF_BUDGET"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.WAF.Budget = d
		}
	}

	if val := os.Getenv("RAMPART_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("RAMPART_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}

	if val := os.Getenv("RAMPART_EVENTS_REPORTER"); val != "" {
		cfg.Events.Reporter = val
	}
	if val := os.Getenv("RAMPART_EVENTS_SQLITE_PATH"); val != "" {
		cfg.Events.SQLite.Path = val
	}
	if val := os.Getenv("RAMPART_EVENTS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Events.Retention.Days = i
		}
	}
	if val := os.Getenv("RAMPART_EVENTS_RETENTION_SCHEDULE"); val != "" {
		cfg.Events.Retention.Schedule = val
	}
}
