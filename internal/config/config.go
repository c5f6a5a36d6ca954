// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/applicant-tracker/internal/matching"
)

// Config holds service configuration, loaded from the environment.
type Config struct {
	Port        int
	DatabaseURL string

	// MatchThreshold is the skill-match confidence threshold. Defaults to
	// the matcher's fixed 0.70.
	MatchThreshold float64

	LogJSON  bool
	LogDebug bool
}

// Load reads configuration from environment variables. DATABASE_URL is
// required; everything else has defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           8080,
		MatchThreshold: matching.DefaultThreshold,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if thresholdStr := os.Getenv("MATCH_THRESHOLD"); thresholdStr != "" {
		threshold, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MATCH_THRESHOLD: %v", err)
		}
		if threshold <= 0 || threshold > 1 {
			return nil, fmt.Errorf("MATCH_THRESHOLD must be in (0,1], got: %s", thresholdStr)
		}
		cfg.MatchThreshold = threshold
	}

	cfg.LogJSON = os.Getenv("LOG_JSON") == "true"
	cfg.LogDebug = os.Getenv("LOG_DEBUG") == "true"

	return cfg, nil
}
