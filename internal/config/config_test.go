package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 60*time.Second, cfg.HTTP.IdleTimeout)
	assert.Equal(t, int64(20<<20), cfg.HTTP.MaxUploadBytes)
	assert.Equal(t, "*", cfg.HTTP.AllowedOrigin)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "fintrackr-statements", cfg.Storage.Bucket)
	assert.Equal(t, "test-secret", cfg.Session.Secret)
	assert.False(t, cfg.Session.AllowDevSecret)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "fintrackr", cfg.Session.Issuer)
	assert.Equal(t, "python3", cfg.Extractor.Command)
	assert.Equal(t, []string{"backend/read_pdf.py"}, cfg.Extractor.Args)
	assert.Equal(t, 60*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, 4, cfg.Extractor.Workers)
	assert.Equal(t, 32, cfg.Extractor.QueueSize)
	assert.Empty(t, cfg.Audit.ProjectID)
	assert.Equal(t, "fintrackr", cfg.Audit.Dataset)
	assert.False(t, cfg.Analytics.Enabled)
	assert.Equal(t, "gemini-2.5-flash", cfg.Analytics.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "http override",
			envVars: map[string]string{
				"HTTP_PORT":             "9090",
				"HTTP_WRITE_TIMEOUT":    "2m",
				"HTTP_MAX_UPLOAD_BYTES": "1024",
				"HTTP_ALLOWED_ORIGIN":   "https://app.example.com",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "9090", cfg.HTTP.Port)
				assert.Equal(t, 2*time.Minute, cfg.HTTP.WriteTimeout)
				assert.Equal(t, int64(1024), cfg.HTTP.MaxUploadBytes)
				assert.Equal(t, "https://app.example.com", cfg.HTTP.AllowedOrigin)
			},
		},
		{
			name: "minio storage",
			envVars: map[string]string{
				"STORAGE_BACKEND":          "minio",
				"STORAGE_BUCKET":           "statements",
				"STORAGE_MINIO_ENDPOINT":   "minio:9000",
				"STORAGE_MINIO_ACCESS_KEY": "ak",
				"STORAGE_MINIO_SECRET_KEY": "sk",
				"STORAGE_MINIO_USE_SSL":    "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, BackendMinio, cfg.Storage.Backend)
				assert.Equal(t, "statements", cfg.Storage.Bucket)
				assert.Equal(t, "minio:9000", cfg.Storage.MinioEndpoint)
				assert.Equal(t, "ak", cfg.Storage.MinioAccessKey)
				assert.Equal(t, "sk", cfg.Storage.MinioSecretKey)
				assert.True(t, cfg.Storage.MinioUseSSL)
			},
		},
		{
			name: "extractor args",
			envVars: map[string]string{
				"EXTRACTOR_COMMAND": "/usr/local/bin/extract",
				"EXTRACTOR_ARGS":    "--format json",
				"EXTRACTOR_TIMEOUT": "90s",
				"EXTRACTOR_WORKERS": "2",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "/usr/local/bin/extract", cfg.Extractor.Command)
				assert.Equal(t, []string{"--format", "json"}, cfg.Extractor.Args)
				assert.Equal(t, 90*time.Second, cfg.Extractor.Timeout)
				assert.Equal(t, 2, cfg.Extractor.Workers)
			},
		},
		{
			name: "database and identity",
			envVars: map[string]string{
				"DB_DSN":           "postgres://u:p@db:5432/fintrackr",
				"DB_MAX_CONNS":     "25",
				"GOOGLE_CLIENT_ID": "client.apps.googleusercontent.com",
				"SESSION_SECRET":   "s3cret",
				"SESSION_TTL":      "1h",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "postgres://u:p@db:5432/fintrackr", cfg.Database.DSN)
				assert.Equal(t, int32(25), cfg.Database.MaxConns)
				assert.Equal(t, "client.apps.googleusercontent.com", cfg.Google.ClientID)
				assert.Equal(t, "s3cret", cfg.Session.Secret)
				assert.Equal(t, time.Hour, cfg.Session.TTL)
			},
		},
		{
			name: "audit and analytics",
			envVars: map[string]string{
				"AUDIT_PROJECT_ID":  "proj",
				"ANALYTICS_ENABLED": "true",
				"LOG_LEVEL":         "debug",
				"LOG_FORMAT":        "json",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "proj", cfg.Audit.ProjectID)
				assert.True(t, cfg.Analytics.Enabled)
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "test-secret")
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "s3"}},
		{"zero workers", map[string]string{"EXTRACTOR_WORKERS": "0"}},
		{"zero upload size", map[string]string{"HTTP_MAX_UPLOAD_BYTES": "0"}},
		{"bad duration", map[string]string{"HTTP_READ_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SECRET", "test-secret")
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewConfig_SessionSecret(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", "")

		_, err := NewConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_SECRET")
	})

	t.Run("development secret rejected", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", DevSessionSecret)

		_, err := NewConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_ALLOW_DEV_SECRET")
	})

	t.Run("development secret allowed", func(t *testing.T) {
		t.Setenv("SESSION_SECRET", DevSessionSecret)
		t.Setenv("SESSION_ALLOW_DEV_SECRET", "true")

		cfg, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, DevSessionSecret, cfg.Session.Secret)
		assert.True(t, cfg.Session.AllowDevSecret)
	})
}
