package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	// WebSocket transport
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	SendQueueSize      int           `mapstructure:"send_queue_size" yaml:"send_queue_size"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	DefaultDisplayName string `mapstructure:"default_display_name" yaml:"default_display_name"`

	// Identity verification; disabled while JWTSecret is empty.
	JWTSecret   string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string `mapstructure:"jwt_audience" yaml:"jwt_audience"`

	// Presence audit log; disabled while AuditDatabasePath is empty.
	AuditDatabasePath string `mapstructure:"audit_database_path" yaml:"audit_database_path"`
	AuditBufferSize   int    `mapstructure:"audit_buffer_size" yaml:"audit_buffer_size"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":3001",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		MaxMessageBytes:    64 << 10,
		SendQueueSize:      64,
		WriteTimeout:       5 * time.Second,
		RateLimitPerMinute: 120,
		DefaultDisplayName: "Guest",
		AuditBufferSize:    256,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.SendQueueSize != 0 {
		c.SendQueueSize = other.SendQueueSize
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.DefaultDisplayName != "" {
		c.DefaultDisplayName = other.DefaultDisplayName
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.AuditDatabasePath != "" {
		c.AuditDatabasePath = other.AuditDatabasePath
	}
	if other.AuditBufferSize != 0 {
		c.AuditBufferSize = other.AuditBufferSize
	}
}
