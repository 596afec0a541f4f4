package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

const maxImportWorkers = 10

type Config struct {
	DatabaseURL string
	Port        string
	LogLevel    string
	AutoMigrate bool

	ImportBaseDir     string
	ImportWorkers     int
	ImportChunkSize   int
	ImportJobLease    time.Duration
	IdentityCreateRPS float64
	Location          *time.Location

	SweepInterval time.Duration
	SweepOffsets  []int
	RedisURL      string
}

// Load reads the configuration from the environment. Malformed numeric and
// duration values fall back to their defaults; a bad timezone or offset list
// is an error.
func Load() (Config, error) {
	cfg := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AutoMigrate:       parseBoolEnv("AUTO_MIGRATE", false),
		ImportBaseDir:     getEnv("IMPORT_BASE_DIR", "."),
		ImportWorkers:     clampWorkers(parseIntEnv("IMPORT_WORKERS", maxImportWorkers)),
		ImportChunkSize:   parseIntEnv("IMPORT_CHUNK_SIZE", 100),
		ImportJobLease:    time.Duration(parseIntEnv("IMPORT_JOB_LEASE_SECONDS", 60)) * time.Second,
		IdentityCreateRPS: parseFloatEnv("IDENTITY_CREATE_RPS", 0),
		SweepInterval:     parseDurationEnv("WAITLIST_SWEEP_INTERVAL", 24*time.Hour),
		RedisURL:          os.Getenv("REDIS_URL"),
	}
	if cfg.ImportChunkSize <= 0 {
		cfg.ImportChunkSize = 100
	}

	loc, err := time.LoadLocation(getEnv("IMPORT_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("IMPORT_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	offsets, err := parseOffsets(getEnv("WAITLIST_SWEEP_OFFSETS", "0,7"))
	if err != nil {
		return Config{}, fmt.Errorf("WAITLIST_SWEEP_OFFSETS: %w", err)
	}
	cfg.SweepOffsets = offsets

	return cfg, nil
}

// Validate reports settings the API server cannot start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func clampWorkers(workers int) int {
	if workers <= 0 || workers > maxImportWorkers {
		return maxImportWorkers
	}
	return workers
}

func parseOffsets(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	offsets := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		offset, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q", part)
		}
		offsets = append(offsets, offset)
	}
	if len(offsets) == 0 {
		return nil, errors.New("at least one offset is required")
	}
	return offsets, nil
}

func parseIntEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseFloatEnv(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func parseBoolEnv(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func parseDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
