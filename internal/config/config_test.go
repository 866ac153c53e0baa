package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/tasktracker/pkg/auth"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTokenDuration)
	assert.True(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.ValidateConfig())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_HTTP_ADDRESS", ":9000")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_ACCESS_TOKEN_DURATION", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTPAddress)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateConfig_Production(t *testing.T) {
	t.Setenv("SERVER_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.ValidateConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secrets must be set in production")
	assert.Contains(t, err.Error(), "SESSION_SECURE")
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{raw: "debug", want: slog.LevelDebug},
		{raw: "WARN", want: slog.LevelWarn},
		{raw: "error", want: slog.LevelError},
		{raw: "chatty", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cfg := &Config{Logger: LoggerConfig{Level: tt.raw}}
			assert.Equal(t, tt.want, cfg.LogLevel())
		})
	}
}

func TestValidateConfig_LoggerFormat(t *testing.T) {
	t.Setenv("LOGGER_FORMAT", "xml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.ValidateConfig(), "LOGGER_FORMAT")
}

func TestToDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "tracker")

	cfg, err := Load()
	require.NoError(t, err)

	dbCfg := cfg.ToDatabaseConfig()
	assert.Equal(t, "db.internal", dbCfg.Host)
	assert.Equal(t, "tracker", dbCfg.DBName)
	assert.Equal(t, 25, dbCfg.MaxOpenConns)
}

func TestPasswordOptions(t *testing.T) {
	tests := []struct {
		name     string
		strict   string
		password string
		wantErr  bool
	}{
		{name: "default policy accepts lowercase", strict: "false", password: "plain-words!"},
		{name: "strict policy rejects lowercase", strict: "true", password: "plain-words!", wantErr: true},
		{name: "strict policy accepts mixed", strict: "true", password: "Plain-words1!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PASSWORD_STRICT_POLICY", tt.strict)
			t.Setenv("PASSWORD_HASH_COST", "4")

			cfg, err := Load()
			require.NoError(t, err)
			require.NoError(t, cfg.ValidateConfig())

			err = auth.NewPasswordManager(cfg.PasswordOptions()...).ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrWeakPassword)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateConfig_HashCost(t *testing.T) {
	t.Setenv("PASSWORD_HASH_COST", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.ValidateConfig(), "PASSWORD_HASH_COST")
}
