// Package config loads the basedata configuration from environment variables.
// Every setting has a default except the optional sinks, and Load validates
// the whole configuration before returning it.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Logging   LoggingConfig
	Server    ServerConfig
	Security  SecurityConfig
	Database  DatabaseConfig
	SQLite    SQLiteConfig
	S3        S3Config
	IDs       IDConfig
	Inventory InventoryConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBody caps the size of uploaded CSV bodies in bytes (default: 32MB)
	MaxBody int64 `env:"SERVER_MAX_BODY" default:"33554432"`
}

// SecurityConfig holds request trust settings.
type SecurityConfig struct {
	// TrustedProxies lists the proxy CIDRs (or bare IPs) whose X-Real-IP and
	// X-Forwarded-For headers are believed
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys, when set, are required in X-API-Key on /api routes
	APIKeys []string `env:"API_KEYS"`
}

// DatabaseConfig holds the optional PostgreSQL sink settings. An empty URL
// disables the sink.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns int    `env:"DB_MAX_CONNS" default:"4"`
}

// SQLiteConfig holds the optional SQLite sink settings. An empty path
// disables the sink.
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH"`
}

// S3Config holds the optional S3 report sink settings. An empty bucket
// disables the sink. Credentials come from the default AWS chain.
type S3Config struct {
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" default:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"` // MinIO and other S3-compatible stores
	Prefix    string `env:"S3_PREFIX"`
	PathStyle bool   `env:"S3_PATH_STYLE"`
}

// IDConfig holds the defaults of the ID cleaning pipeline.
type IDConfig struct {
	// TargetLen is the expected length of a clean ID (default: 8)
	TargetLen int `env:"ID_TARGET_LEN" default:"8"`

	// Pattern matches one valid ID character (default: [0-9])
	Pattern string `env:"ID_PATTERN" default:"[0-9]"`

	// StripPattern matches the characters removed from IDs (default: [^0-9])
	StripPattern string `env:"ID_STRIP_PATTERN" default:"[^0-9]"`
}

// InventoryConfig holds inventory scan settings.
type InventoryConfig struct {
	// Root is the directory whose subdirectories are scanned (default: .)
	Root string `env:"INVENTORY_ROOT" default:"."`

	// ExtraExtensions are listed in addition to .csv, .xls, .xlsx, .sqlite3
	ExtraExtensions []string `env:"INVENTORY_EXTRA_EXTENSIONS"`

	// Columns names the directory and filename columns
	Columns []string `env:"INVENTORY_COLUMNS" default:"directory,filename"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasDatabase reports whether the PostgreSQL sink is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasSQLite reports whether the SQLite sink is configured.
func (c *Config) HasSQLite() bool { return c.SQLite.Path != "" }

// HasS3 reports whether the S3 sink is configured.
func (c *Config) HasS3() bool { return c.S3.Bucket != "" }
