// Package config provides centralized configuration management for the
// loader. It reads environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig
	Loader   LoaderConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// Schema is the database schema to introspect and load into (default: public)
	Schema string `env:"DB_SCHEMA" default:"public"`
}

// LoaderConfig holds data-loading settings.
type LoaderConfig struct {
	// DataDir is the base directory holding one subdirectory per table (required)
	DataDir string `env:"LOADER_DATA_DIR" required:"true"`

	// SkipNoModel skips tables that have no registered model instead of
	// failing the run (default: false)
	SkipNoModel bool `env:"LOADER_SKIP_NO_MODEL" default:"false"`

	// SkipNoLoader skips tables for which no loader strategy validates
	// instead of failing the run (default: false)
	SkipNoLoader bool `env:"LOADER_SKIP_NO_LOADER" default:"false"`

	// MapNested enables expansion of embedded sequences into child-table
	// records linked by foreign keys (default: false)
	MapNested bool `env:"LOADER_MAP_NESTED" default:"false"`

	// ModelsFile is a YAML file mapping table names to column mapping
	// rules. When empty, every introspected table is registered with no
	// mapping rules.
	ModelsFile string `env:"LOADER_MODELS_FILE"`
}

// ServerConfig holds settings for the optional reload API server.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 10m,
	// a reload holds the response open for the whole run)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"10m"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
