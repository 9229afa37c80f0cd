package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "postgres", cfg.DBDriver)
				assert.Equal(t, 25, cfg.DBMaxOpenConnections)
				assert.Equal(t, 5, cfg.DBMaxIdleConnections)
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 300*time.Second, cfg.TokenTTL)
				assert.Equal(t, 8, cfg.TokenShortCodeLength)
				assert.Equal(t, 5, cfg.TokenGenerationMaxRetries)
				assert.Equal(t, 30, cfg.TokenRetentionDays)
				assert.InDelta(t, 0.01, cfg.PaymentAmountTolerance, 0.0001)
				assert.True(t, cfg.RateLimitEnabled)
				assert.True(t, cfg.RateLimitIPEnabled)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "paytokens", cfg.MetricsNamespace)
				assert.Equal(t, 5*time.Second, cfg.NotifierInterval)
				assert.Equal(t, 50, cfg.NotifierBatchSize)
				assert.Equal(t, 15*time.Minute, cfg.SecurityEventWindow)
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"DB_DRIVER":               "mysql",
				"DB_CONNECTION_STRING":    "user:password@tcp(localhost:3306)/testdb",
				"DB_MAX_OPEN_CONNECTIONS": "50",
				"DB_MAX_IDLE_CONNECTIONS": "10",
				"DB_CONN_MAX_LIFETIME":    "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "mysql", cfg.DBDriver)
				assert.Equal(t, "user:password@tcp(localhost:3306)/testdb", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
			},
		},
		{
			name: "load custom token configuration",
			envVars: map[string]string{
				"TOKEN_SIGNING_KEY":            "a-32-byte-signing-key-for-tests!",
				"TOKEN_TTL_SECONDS":            "120",
				"TOKEN_SHORT_CODE_LENGTH":      "6",
				"TOKEN_GENERATION_MAX_RETRIES": "3",
				"TOKEN_RETENTION_DAYS":         "7",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "a-32-byte-signing-key-for-tests!", cfg.TokenSigningKey)
				assert.Equal(t, 120*time.Second, cfg.TokenTTL)
				assert.Equal(t, 6, cfg.TokenShortCodeLength)
				assert.Equal(t, 3, cfg.TokenGenerationMaxRetries)
				assert.Equal(t, 7, cfg.TokenRetentionDays)
			},
		},
		{
			name: "load custom rate limit configuration",
			envVars: map[string]string{
				"RATE_LIMIT_ENABLED":             "false",
				"RATE_LIMIT_IP_REQUESTS_PER_SEC": "2.5",
				"RATE_LIMIT_IP_BURST":            "5",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.RateLimitEnabled)
				assert.InDelta(t, 2.5, cfg.RateLimitIPRequestsPerSec, 0.0001)
				assert.Equal(t, 5, cfg.RateLimitIPBurst)
			},
		},
		{
			name: "load custom notifier configuration",
			envVars: map[string]string{
				"NOTIFIER_INTERVAL_SECONDS": "1",
				"NOTIFIER_BATCH_SIZE":       "10",
				"NOTIFIER_MAX_RETRIES":      "3",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 1*time.Second, cfg.NotifierInterval)
				assert.Equal(t, 10, cfg.NotifierBatchSize)
				assert.Equal(t, 3, cfg.NotifierMaxRetries)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		want     string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, cfg.GetGinMode())
		})
	}
}
