package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Config struct {
	Port string

	// Auth; empty disables bearer checks.
	APIKey string

	// Upload limits
	MaxUploadBytes int64

	// Session state
	SessionTTL      time.Duration
	CleanupInterval time.Duration

	// Rendering
	DefaultStylesheet string

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("FRAGDECK_API_KEY"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		SessionTTL:      envDuration("SESSION_TTL", 2*time.Hour),
		CleanupInterval: envDuration("CLEANUP_INTERVAL", 5*time.Minute),

		DefaultStylesheet: os.Getenv("DEFAULT_STYLESHEET"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.By(func(any) error {
			if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
				return errors.New("must be a number between 1 and 65535")
			}
			return nil
		})),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(1))),
		validation.Field(&c.CleanupInterval, validation.By(func(any) error {
			if c.CleanupInterval > c.SessionTTL {
				return fmt.Errorf("must not exceed session ttl (%s)", c.SessionTTL)
			}
			return nil
		})),
		validation.Field(&c.DefaultStylesheet, validation.By(func(any) error {
			if c.DefaultStylesheet == "" {
				return nil
			}
			_, err := os.Stat(c.DefaultStylesheet)
			return err
		})),
	)
}

// Stylesheet returns the contents of DefaultStylesheet, or "" when unset.
func (c Config) Stylesheet() (string, error) {
	if c.DefaultStylesheet == "" {
		return "", nil
	}
	b, err := os.ReadFile(c.DefaultStylesheet)
	if err != nil {
		return "", fmt.Errorf("read stylesheet: %w", err)
	}
	return string(b), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
