package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides values from environment variables:
//   - DUPSCAN_MODE: self or cross
//   - DUPSCAN_THRESHOLD: match threshold in [0,1]
//   - DUPSCAN_DEADLINE: run deadline as a Go duration ("2m")
//   - DUPSCAN_WORKERS: worker pool size
//   - DUPSCAN_MAX_BLOCK_SIZE: block size cap
//   - DUPSCAN_MIN_TOKEN_LENGTH: shortest token kept by the normalizer
//   - DUPSCAN_LOG_LEVEL, DUPSCAN_LOG_FORMAT
//   - DUPSCAN_LISTEN_ADDR: HTTP listen address
//   - MEMGRAPH_URI, MEMGRAPH_USER, MEMGRAPH_PASSWORD
//
// It returns an error if a variable holds a value of the wrong type; range
// checks are left to Validate.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DUPSCAN_MODE"); v != "" {
		c.Scan.Mode = Mode(strings.ToLower(strings.TrimSpace(v)))
	}
	if err := parseEnvFloat("DUPSCAN_THRESHOLD", &c.Scan.Threshold); err != nil {
		return err
	}
	if err := parseEnvDuration("DUPSCAN_DEADLINE", &c.Scan.Deadline.Duration); err != nil {
		return err
	}
	if err := parseEnvInt("DUPSCAN_WORKERS", &c.Scan.Workers); err != nil {
		return err
	}
	if err := parseEnvInt("DUPSCAN_MAX_BLOCK_SIZE", &c.Blocking.MaxBlockSize); err != nil {
		return err
	}
	if err := parseEnvInt("DUPSCAN_MIN_TOKEN_LENGTH", &c.Normalize.MinTokenLength); err != nil {
		return err
	}
	if v := os.Getenv("DUPSCAN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DUPSCAN_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("DUPSCAN_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	return nil
}

func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

func parseEnvDuration(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
