package config

import "time"

// Config is the root configuration of the rampart daemon.
type Config struct {
	// Server configures the embedded HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Ruleset configures where detection rules are loaded from.
	Ruleset RulesetConfig `yaml:"ruleset"`

	// WAF configures the rule engine binding and its evaluation budget.
	WAF WAFConfig `yaml:"waf"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Events configures attack event reporting and retention.
	Events EventsConfig `yaml:"events"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port the server binds to.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// MaxHeaderBytes limits request header size.
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`

	// AddSource includes source file positions in log records.
	AddSource bool `yaml:"add_source"`
}

// RulesetConfig contains ruleset loading settings.
type RulesetConfig struct {
	// Path is a rule file or a directory of rule files.
	Path string `yaml:"path"`

	// Watch enables hot reload when rule files change.
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period after a file change before reloading.
	Debounce time.Duration `yaml:"debounce"`
}

// WAFConfig contains rule engine settings.
type WAFConfig struct {
	// Engine selects a registered engine binding by name. Empty selects
	// the sole registered binding, if any.
	Engine string `yaml:"engine"`

	// Budget is the CPU-time allowance per evaluation call.
	Budget time.Duration `yaml:"budget"`
}

// MetricsConfig contains metrics endpoint settings.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served.
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}

// EventsConfig contains attack event reporting settings.
type EventsConfig struct {
	// Reporter selects the event sink: log, sqlite, or none.
	Reporter string `yaml:"reporter"`

	// SQLite configures the sqlite event store.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention configures pruning of stored events.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains sqlite event store settings.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`
}

// RetentionConfig contains event retention settings.
type RetentionConfig struct {
	// Days is how long stored events are kept. Zero disables pruning.
	Days int `yaml:"days"`

	// Schedule is the cron expression for the pruning job.
	Schedule string `yaml:"schedule"`
}
