package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a configuration.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

const minProductionSecretLength = 32

var (
	supportedDrivers = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}
	storageModes     = map[string]bool{"database": true, "local": true}
)

// ValidateConfig checks if the configuration meets the requirements for its
// environment. All problems are reported at once.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", "must be a valid port number")
	}

	switch {
	case !supportedDrivers[cfg.DBDriver]:
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q (use postgres, mysql or sqlite)", cfg.DBDriver))
	case cfg.DBDriver == "sqlite":
		if cfg.DBPath == "" {
			add("DB_PATH", "is required for sqlite")
		}
		if cfg.Environment.IsProduction() {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
	default:
		if cfg.DBHost == "" {
			add("DB_HOST", "is required")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required")
		}
		if cfg.DBPassword == "" && cfg.Environment != Development {
			add("DB_PASSWORD", "is required")
		}
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Environment.IsProduction() && len(cfg.JWTSecret) < minProductionSecretLength {
		add("JWT_SECRET", fmt.Sprintf("must be at least %d characters in production", minProductionSecretLength))
	}

	if !storageModes[cfg.StorageMode] {
		add("STORAGE_MODE", fmt.Sprintf("unsupported mode %q (use database or local)", cfg.StorageMode))
	}
	if cfg.CacheMaxBytes < 0 {
		add("CACHE_MAX_BYTES", "must not be negative")
	}

	if cfg.ParserURL == "" {
		add("PARSER_URL", "is required")
	} else if u, err := url.Parse(cfg.ParserURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		add("PARSER_URL", "must be an absolute http(s) URL")
	}
	if cfg.ParserTimeout <= 0 {
		add("PARSER_TIMEOUT", "must be positive")
	}
	if cfg.ParserRatePerSecond <= 0 {
		add("PARSER_RATE_PER_SECOND", "must be positive")
	}
	if cfg.ParseRateLimit <= 0 {
		add("PARSE_RATE_LIMIT", "must be positive")
	}
	if cfg.SearchLimit <= 0 || cfg.SearchLimit > 100 {
		add("SEARCH_LIMIT", "must be between 1 and 100")
	}

	if cfg.Environment.IsProduction() && !cfg.RedisConfigured() {
		add("REDIS_URL", "redis is required in production")
	}
	if cfg.S3Bucket != "" && cfg.ExportURLExpiry <= 0 {
		add("EXPORT_URL_EXPIRY", "must be positive")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
