package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv points the loader at an empty secrets dir and sets the minimum
// a development configuration needs.
func setBaseEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CI", "")
	t.Setenv("ENV", "development")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DB_USER", "recipes")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PARSER_URL", "https://parser.example.com/api/parse")
	t.Setenv("STORAGE_MODE", "")
	t.Setenv("SEARCH_LIMIT", "")
	t.Setenv("PARSER_TIMEOUT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("CORS_ORIGINS", "")
	return dir
}

func TestLoadConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("STORAGE_MODE", "Local")
	t.Setenv("PARSER_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "recipes", cfg.DBUser)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.True(t, cfg.RedisConfigured())
	assert.Equal(t, "local", cfg.StorageMode)
	assert.Equal(t, 5*time.Second, cfg.ParserTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "database", cfg.StorageMode)
	assert.Equal(t, "recipe-hub-saved-recipes", cfg.CacheKey)
	assert.Equal(t, 10, cfg.SearchLimit)
	assert.Equal(t, 30*time.Second, cfg.ParserTimeout)
	assert.Equal(t, 24*time.Hour, cfg.ExportURLExpiry)
	assert.False(t, cfg.RedisConfigured())
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	dir := setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-secret-file\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("s3cret"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret-file", cfg.JWTSecret)
	assert.Equal(t, "s3cret", cfg.DBPassword)
}

func TestLoadConfigCIIgnoresSecrets(t *testing.T) {
	dir := setBaseEnv(t)
	t.Setenv("CI", "true")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "pw")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("ignored"), 0o600))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigRejectsMalformedNumbers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SEARCH_LIMIT", "lots")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SEARCH_LIMIT")
}

func validConfig() *Config {
	return &Config{
		Environment:         Development,
		ServerPort:          "8080",
		DBDriver:            "sqlite",
		DBPath:              "test.db",
		JWTSecret:           "secret",
		StorageMode:         "database",
		ParserURL:           "https://parser.example.com/parse",
		ParserTimeout:       time.Second,
		ParserRatePerSecond: 1,
		ParseRateLimit:      10,
		SearchLimit:         10,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		edit   func(c *Config)
		fields []string
	}{
		{"valid", func(c *Config) {}, nil},
		{"bad port", func(c *Config) { c.ServerPort = "http" }, []string{"SERVER_PORT"}},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, []string{"DB_DRIVER"}},
		{"postgres needs host and user", func(c *Config) { c.DBDriver = "postgres" }, []string{"DB_HOST", "DB_NAME", "DB_USER"}},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, []string{"JWT_SECRET"}},
		{"unknown mode", func(c *Config) { c.StorageMode = "cloud" }, []string{"STORAGE_MODE"}},
		{"relative parser url", func(c *Config) { c.ParserURL = "/parse" }, []string{"PARSER_URL"}},
		{"search limit", func(c *Config) { c.SearchLimit = 0 }, []string{"SEARCH_LIMIT"}},
		{"production rules", func(c *Config) {
			c.Environment = Production
		}, []string{"DB_DRIVER", "JWT_SECRET", "REDIS_URL"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.edit(cfg)

			err := ValidateConfig(cfg)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var got []string
			for _, e := range errs {
				got = append(got, e.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}
