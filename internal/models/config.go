package models

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Watcher  WatcherConfig
	Redis    RedisConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
	PricingFile     string
	AllowedOrigin   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	SeedAdminEmail  string
}

// AuthConfig holds session token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// WatcherConfig holds the expiry watcher settings
type WatcherConfig struct {
	PollingInterval time.Duration
	WarningWindow   time.Duration
}

// RedisConfig holds the rate limiter backend settings. An empty URL disables
// rate limiting.
type RedisConfig struct {
	URL            string
	RequestsPerMin int64
}
