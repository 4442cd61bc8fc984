package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.NotNil(t, cfg)

	// Server defaults
	assert.Equal(t, config.DefaultHost, cfg.Server.Host)
	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)

	// MongoDB defaults
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "feastline", cfg.MongoDB.Database)
	assert.Equal(t, config.DefaultMongoDBTimeout, cfg.MongoDB.Timeout)
	assert.Equal(t, uint64(config.DefaultMongoDBMaxPoolSize), cfg.MongoDB.MaxPoolSize)

	// Redis defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, config.DefaultRedisPoolSize, cfg.Redis.PoolSize)

	// Auth defaults
	assert.Equal(t, "dev-secret-change-in-production", cfg.Auth.JWTSecret)
	assert.Equal(t, config.DefaultAccessTokenTTL, cfg.Auth.AccessTokenTTL)

	// EventBus defaults
	assert.Equal(t, "redis", cfg.EventBus.Type)
	assert.Equal(t, "chat:", cfg.EventBus.RedisChannelPrefix)

	// Log defaults
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// WebSocket defaults
	assert.Equal(t, config.DefaultWSBufferSize, cfg.WebSocket.ReadBufferSize)
	assert.Equal(t, config.DefaultWSBufferSize, cfg.WebSocket.WriteBufferSize)
	assert.Equal(t, config.DefaultWSPingInterval, cfg.WebSocket.PingInterval)
	assert.Equal(t, config.DefaultWSPongTimeout, cfg.WebSocket.PongTimeout)

	// Payment defaults
	assert.Equal(t, "http://localhost:5174", cfg.Payment.ClientURL)
	assert.Equal(t, int64(config.DefaultDeliveryFee), cfg.Payment.DeliveryFee)
	assert.Equal(t, "usd", cfg.Payment.Currency)
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		port     int
		expected string
	}{
		{
			name:     "default address",
			host:     "0.0.0.0",
			port:     8080,
			expected: "0.0.0.0:8080",
		},
		{
			name:     "localhost",
			host:     "localhost",
			port:     3000,
			expected: "localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ServerConfig{
				Host: tt.host,
				Port: tt.port,
			}
			assert.Equal(t, tt.expected, cfg.Address())
		})
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"negative port", -1},
		{"zero port", 0},
		{"port too high", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Server.Port = tt.port
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "server.port")
		})
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{
			name: "negative read timeout",
			modify: func(c *config.Config) {
				c.Server.ReadTimeout = -1 * time.Second
			},
			errMsg: "server.read_timeout must be positive",
		},
		{
			name: "zero write timeout",
			modify: func(c *config.Config) {
				c.Server.WriteTimeout = 0
			},
			errMsg: "server.write_timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		errMsg string
	}{
		{
			name:   "missing mongodb uri",
			modify: func(c *config.Config) { c.MongoDB.URI = "" },
			errMsg: "mongodb.uri is required",
		},
		{
			name:   "missing mongodb database",
			modify: func(c *config.Config) { c.MongoDB.Database = "" },
			errMsg: "mongodb.database is required",
		},
		{
			name:   "missing redis addr",
			modify: func(c *config.Config) { c.Redis.Addr = "" },
			errMsg: "redis.addr is required",
		},
		{
			name:   "missing jwt secret",
			modify: func(c *config.Config) { c.Auth.JWTSecret = "" },
			errMsg: "auth.jwt_secret is required",
		},
		{
			name:   "missing client url",
			modify: func(c *config.Config) { c.Payment.ClientURL = "" },
			errMsg: "payment.client_url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_Validate_InvalidLog(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.Log.Format = "xml"
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_InvalidEventBusType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.EventBus.Type = "kafka"

	err := cfg.Validate()

	require.ErrorIs(t, err, config.ErrInvalidEventBusType)
}

func TestLoader_LoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  host: 127.0.0.1
  port: 9000
mongodb:
  database: feastline_test
payment:
  delivery_fee: 350
  currency: eur
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.LoadFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "feastline_test", cfg.MongoDB.Database)
	assert.Equal(t, int64(350), cfg.Payment.DeliveryFee)
	assert.Equal(t, "eur", cfg.Payment.Currency)

	// Untouched sections keep defaults.
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
}

func TestLoader_LoadFromFile_NotFound(t *testing.T) {
	_, err := config.LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("MONGODB_TIMEOUT", "5s")
	t.Setenv("APP_MODE", "mock")

	cfg, err := config.LoadFromPath(path)

	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.MongoDB.Timeout)
	assert.True(t, cfg.App.IsMockMode())
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	_, err := config.LoadFromPath("")

	require.Error(t, err)
}
