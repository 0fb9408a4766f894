package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// NotifyPolicy controls webhook delivery behavior.
type NotifyPolicy struct {
	MaxRetries       int           // max retry attempts per delivery
	BaseBackoff      time.Duration // initial backoff duration
	MaxBackoff       time.Duration // upper bound on backoff
	Timeout          time.Duration // per-request HTTP timeout
	FailureThreshold int           // consecutive failures to suspend a channel
	SuccessThreshold int           // consecutive successes to restore a channel
}

// Config holds the runtime configuration, loaded from the environment
// with sensible defaults for local development.
type Config struct {
	HTTPBind string // address:port for the HTTP server
	DBPath   string // SQLite database file

	ScheduleInterval time.Duration // scheduler tick
	BaselineWindow   int           // number of recent values the baseline averages
	CollectTimeout   time.Duration // per-collection HTTP timeout

	PruneInterval time.Duration // retention pruner tick
	Retention     time.Duration // age after which resolved alerts/history are removed

	LogBuffer int // ring buffer capacity of the in-memory log

	WebhookURLs []string // notification channels
	Notify      NotifyPolicy
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPBind:         getEnv("HTTP_BIND", ":8080"),
		DBPath:           getEnv("DB_PATH", "./monitoringgrid.db"),
		ScheduleInterval: getEnvDuration("SCHEDULE_INTERVAL", 30*time.Second),
		BaselineWindow:   getEnvInt("BASELINE_WINDOW", 20),
		CollectTimeout:   getEnvDuration("COLLECT_TIMEOUT", 10*time.Second),
		PruneInterval:    getEnvDuration("PRUNE_INTERVAL", time.Hour),
		Retention:        getEnvDuration("RETENTION", 30*24*time.Hour),
		LogBuffer:        getEnvInt("LOG_BUFFER", 1000),
		WebhookURLs:      splitAndTrim(os.Getenv("WEBHOOK_URLS"), ","),
		Notify:           DefaultNotifyPolicy(),
	}

	if cfg.ScheduleInterval <= 0 {
		return nil, fmt.Errorf("SCHEDULE_INTERVAL must be positive, got %s", cfg.ScheduleInterval)
	}
	if cfg.BaselineWindow <= 0 {
		return nil, fmt.Errorf("BASELINE_WINDOW must be positive, got %d", cfg.BaselineWindow)
	}
	return cfg, nil
}

// DefaultNotifyPolicy returns the stock webhook delivery policy.
func DefaultNotifyPolicy() NotifyPolicy {
	return NotifyPolicy{
		MaxRetries:       3,
		BaseBackoff:      100 * time.Millisecond,
		MaxBackoff:       2 * time.Second,
		Timeout:          2 * time.Second,
		FailureThreshold: 3,
		SuccessThreshold: 2,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
