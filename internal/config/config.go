// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"

	"github.com/gurkanbulca/tasktracker/internal/database"
	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

const (
	defaultAccessSecret  = "dev-access-secret-change-in-production"
	defaultRefreshSecret = "dev-refresh-secret-change-in-production"
	defaultSessionSecret = "dev-session-secret-change-in-production"
)

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Password  PasswordConfig  `envPrefix:"PASSWORD_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	CORS      CORSConfig      `envPrefix:"CORS_"`
	UserCache UserCacheConfig `envPrefix:"USER_CACHE_"`
	Logger    LoggerConfig    `envPrefix:"LOGGER_"`
}

type ServerConfig struct {
	HTTPAddress      string        `env:"HTTP_ADDRESS" envDefault:":8080"`
	GRPCAddress      string        `env:"GRPC_ADDRESS" envDefault:":50051"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	AutoMigrate      bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	EnableReflection bool          `env:"ENABLE_REFLECTION" envDefault:"false"`
	TrustProxy       bool          `env:"TRUST_PROXY" envDefault:"false"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type DatabaseConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD" envDefault:"postgres"`
	DBName          string        `env:"NAME" envDefault:"tasktracker"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

type JWTConfig struct {
	AccessSecret         string        `env:"ACCESS_SECRET" envDefault:"dev-access-secret-change-in-production"`
	RefreshSecret        string        `env:"REFRESH_SECRET" envDefault:"dev-refresh-secret-change-in-production"`
	AccessTokenDuration  time.Duration `env:"ACCESS_TOKEN_DURATION" envDefault:"15m"`
	RefreshTokenDuration time.Duration `env:"REFRESH_TOKEN_DURATION" envDefault:"168h"`
}

type PasswordConfig struct {
	StrictPolicy bool `env:"STRICT_POLICY" envDefault:"false"`
	HashCost     int  `env:"HASH_COST" envDefault:"12"`
}

type SessionConfig struct {
	Name   string        `env:"NAME" envDefault:"tasktracker_session"`
	Secret string        `env:"SECRET" envDefault:"dev-session-secret-change-in-production"`
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"336h"`
	Secure bool          `env:"SECURE" envDefault:"false"`
}

type RateLimitConfig struct {
	Interval  time.Duration `env:"INTERVAL" envDefault:"1s"`
	MaxBurst  int           `env:"MAX_BURST" envDefault:"10"`
	CacheSize int           `env:"CACHE_SIZE" envDefault:"1024"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type UserCacheConfig struct {
	Size int           `env:"SIZE" envDefault:"1024"`
	TTL  time.Duration `env:"TTL" envDefault:"30s"`
}

type LoggerConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// ToDatabaseConfig converts the DB_ settings for database.Open.
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		DBName:          c.Database.DBName,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// PasswordOptions converts the PASSWORD_ settings for auth.NewPasswordManager.
func (c *Config) PasswordOptions() []auth.PasswordOption {
	opts := []auth.PasswordOption{auth.WithHashCost(c.Password.HashCost)}
	if c.Password.StrictPolicy {
		opts = append(opts, auth.WithStrictPolicy())
	}
	return opts
}

// LogLevel parses LOGGER_LEVEL, falling back to info.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logger.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ValidateConfig rejects settings that are unsafe or unusable.
func (c *Config) ValidateConfig() error {
	var errs []error

	if c.Password.HashCost < bcrypt.MinCost || c.Password.HashCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.JWT.AccessTokenDuration <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_DURATION must be positive"))
	}
	if c.JWT.RefreshTokenDuration < c.JWT.AccessTokenDuration {
		errs = append(errs, errors.New("JWT_REFRESH_TOKEN_DURATION must not be shorter than the access token duration"))
	}
	if c.RateLimit.MaxBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_BURST must be positive"))
	}
	if c.UserCache.Size <= 0 {
		errs = append(errs, errors.New("USER_CACHE_SIZE must be positive"))
	}
	if c.Logger.Format != "text" && c.Logger.Format != "json" {
		errs = append(errs, fmt.Errorf("LOGGER_FORMAT must be text or json, got %q", c.Logger.Format))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}

	if c.IsProduction() {
		if c.JWT.AccessSecret == defaultAccessSecret || c.JWT.RefreshSecret == defaultRefreshSecret {
			errs = append(errs, errors.New("JWT secrets must be set in production"))
		}
		if c.Session.Secret == defaultSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if !c.Session.Secure {
			errs = append(errs, errors.New("SESSION_SECURE must be enabled in production"))
		}
	}

	return errors.Join(errs...)
}
