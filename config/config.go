package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment
	Debug       bool

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Recipe storage
	StorageMode   string
	CacheKey      string
	CacheMaxBytes int

	// Parser service
	ParserURL           string
	ParserTimeout       time.Duration
	ParserRatePerSecond float64
	ParseRateLimit      int

	SearchLimit int

	// Export storage
	S3Bucket        string
	AWSRegion       string
	ExportURLExpiry time.Duration
}

// RedisConfigured reports whether a Redis server was configured.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	src := newSource(env)

	cfg, err := load(src)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}
	cfg.Environment = env

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load(src source) (*Config, error) {
	cfg := &Config{
		Debug:       src.getBool("DEBUG", false),
		ServerPort:  src.getString("SERVER_PORT", "8080"),
		ServerHost:  src.getString("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: src.getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		DBDriver:   strings.ToLower(src.getString("DB_DRIVER", "postgres")),
		DBHost:     src.getString("DB_HOST", "localhost"),
		DBPort:     src.getString("DB_PORT", ""),
		DBUser:     src.getString("DB_USER", ""),
		DBPassword: src.getString("DB_PASSWORD", ""),
		DBName:     src.getString("DB_NAME", "recipe_hub"),
		DBSSLMode:  src.getString("DB_SSL_MODE", "disable"),
		DBPath:     src.getString("DB_PATH", "recipe_hub.db"),

		RedisURL:      src.getString("REDIS_URL", ""),
		RedisHost:     src.getString("REDIS_HOST", ""),
		RedisPort:     src.getString("REDIS_PORT", "6379"),
		RedisPassword: src.getString("REDIS_PASSWORD", ""),

		JWTSecret: src.getString("JWT_SECRET", ""),

		StorageMode: strings.ToLower(src.getString("STORAGE_MODE", "database")),
		CacheKey:    src.getString("CACHE_KEY", "recipe-hub-saved-recipes"),

		ParserURL: src.getString("PARSER_URL", ""),

		S3Bucket:  src.getString("S3_BUCKET_NAME", ""),
		AWSRegion: src.getString("AWS_REGION", "us-east-1"),
	}

	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort(cfg.DBDriver)
	}

	var err error
	if cfg.RedisDB, err = src.getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheMaxBytes, err = src.getInt("CACHE_MAX_BYTES", 5*1024*1024); err != nil {
		return nil, err
	}
	if cfg.ParserTimeout, err = src.getDuration("PARSER_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ParserRatePerSecond, err = src.getFloat("PARSER_RATE_PER_SECOND", 2); err != nil {
		return nil, err
	}
	if cfg.ParseRateLimit, err = src.getInt("PARSE_RATE_LIMIT", 60); err != nil {
		return nil, err
	}
	if cfg.SearchLimit, err = src.getInt("SEARCH_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.ExportURLExpiry, err = src.getDuration("EXPORT_URL_EXPIRY", 24*time.Hour); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultDBPort(driver string) string {
	if driver == "mysql" {
		return "3306"
	}
	return "5432"
}

// source resolves a setting from the environment first and then from Docker
// secrets. CI runs read environment variables only.
type source struct {
	secretsDir string
	useSecrets bool
}

func newSource(env Environment) source {
	dir := os.Getenv("SECRETS_DIR")
	if dir == "" {
		dir = "/run/secrets"
	}
	return source{secretsDir: dir, useSecrets: env != CI}
}

func (s source) lookup(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if !s.useSecrets {
		return "", false
	}
	if v := readSecret(s.secretsDir, strings.ToLower(name)); v != "" {
		return v, true
	}
	return "", false
}

func (s source) getString(name, def string) string {
	if v, ok := s.lookup(name); ok {
		return v
	}
	return def
}

func (s source) getList(name string, def []string) []string {
	v, ok := s.lookup(name)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s source) getInt(name string, def int) (int, error) {
	v, ok := s.lookup(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return n, nil
}

func (s source) getFloat(name string, def float64) (float64, error) {
	v, ok := s.lookup(name)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return f, nil
}

func (s source) getDuration(name string, def time.Duration) (time.Duration, error) {
	v, ok := s.lookup(name)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

func (s source) getBool(name string, def bool) bool {
	v, ok := s.lookup(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
