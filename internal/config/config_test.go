package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.RunAddr)
	assert.Equal(t, "", cfg.ShortURLBase)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, 100, cfg.MaxCodeAttempts)
	assert.False(t, cfg.SeedSampleUsers)
}

func TestWithDefaultRunAddr(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true), WithDefaultRunAddr(":5001"))
	require.NoError(t, err)
	assert.Equal(t, ":5001", cfg.RunAddr)

	t.Setenv("SERVER_ADDRESS", ":9000")
	cfg, err = New(WithDisableFlagsParsing(true), WithDefaultRunAddr(":5001"))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.RunAddr)
}

func TestClarifyShortURLBase(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		enableHTTPS bool
		expected    string
	}{
		{"https disabled", "http://localhost:8080", false, "http://localhost:8080"},
		{"empty base", "", true, ""},
		{"alt port kept", "http://localhost:447", true, "https://localhost:447"},
		{"default http port dropped", "http://sho.rt:80", true, "https://sho.rt"},
		{"path kept", "http://sho.rt/s", true, "https://sho.rt/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := Config{}
			applyDefaults(&values, defaultConfig)
			values.ShortURLBase = tt.base
			values.EnableHTTPS = tt.enableHTTPS

			require.NoError(t, values.clarifyShortURLBase())
			assert.Equal(t, tt.expected, values.ShortURLBase)
		})
	}
}

const testJSON = `{
	"server_address": ":3000",
	"base_url": "http://json-config.com",
	"database_dsn": "json-dsn",
	"trusted_subnet": "10.0.0.0/8",
	"max_code_attempts": 7,
	"seed_sample_users": true
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp(t.TempDir(), "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	return file.Name()
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	t.Setenv("CONFIG", writeTempJSON(t, testJSON))

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "http://json-config.com", cfg.ShortURLBase)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	assert.Equal(t, 7, cfg.MaxCodeAttempts)
	assert.True(t, cfg.SeedSampleUsers)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	t.Setenv("CONFIG", writeTempJSON(t, testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("BASE_URL", "http://env.com")
	t.Setenv("SEED_SAMPLE_USERS", "false")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr)
	assert.Equal(t, "http://env.com", cfg.ShortURLBase)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.False(t, cfg.SeedSampleUsers)
}

func TestConfigPriorityAllSources(t *testing.T) {
	t.Setenv("CONFIG", writeTempJSON(t, testJSON))
	t.Setenv("SERVER_ADDRESS", ":4000")
	t.Setenv("BASE_URL", "http://env.com")

	cfg, err := New(WithArgs([]string{
		"-a", ":6000",
		"-b", "http://cli.com",
		"-s", "-cert", "cert.pem", "-key", "key.pem",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr)
	assert.Equal(t, "https://cli.com", cfg.ShortURLBase)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.True(t, cfg.EnableHTTPS)
}

func TestConfigFileFlagBeatsEnv(t *testing.T) {
	t.Setenv("CONFIG", "/definitely/not/here.json")

	cfg, err := New(WithArgs([]string{"-c", writeTempJSON(t, testJSON)}))
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.RunAddr)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("BASE_URL", "http://envonly.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_CONNECTION_TIMEOUT", "3s")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "http://envonly.com", cfg.ShortURLBase)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.DBConnectionTimeout)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, nil},
		{"bad address", map[string]string{"SERVER_ADDRESS": "nowhere"}, nil},
		{"bad subnet", map[string]string{"TRUSTED_SUBNET": "10.0.0.0"}, nil},
		{"zero attempts", map[string]string{"MAX_CODE_ATTEMPTS": "0"}, nil},
		{"https without cert", nil, []string{"-s"}},
		{"unknown flag", nil, []string{"-nope"}},
		{"missing config file", map[string]string{"CONFIG": "/definitely/not/here.json"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New(WithArgs(tt.args))
			assert.Error(t, err)
		})
	}
}
