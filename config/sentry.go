package config

import (
	"fmt"
	"os"
)

// SentryConfig enables error reporting for unmet cycles and publish failures.
// An empty DSN keeps monitoring disabled.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
	ServerName       string  `json:"server_name"`
}

// SetDefaults takes the environment from APP_ENV when none is configured.
func (s *SentryConfig) SetDefaults() {
	if s.Environment == "" {
		s.Environment = os.Getenv("APP_ENV")
	}
	if s.Environment == "" {
		s.Environment = "development"
	}
}

// Validate checks the sample rate.
func (s SentryConfig) Validate() error {
	if s.TracesSampleRate < 0 || s.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate %v outside [0,1]", s.TracesSampleRate)
	}
	return nil
}
