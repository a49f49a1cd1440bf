package cmd

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset or cannot be parsed.
const (
	DefaultHTTPPort                = "8080"
	DefaultBackendTimeout          = 15 * time.Second
	DefaultUpdateQueueCapacity     = 256
	DefaultCatalogRefreshSchedule  = "@every 10m"
	DefaultSessionIdleTTL          = 2 * time.Hour
	DefaultSessionEvictionSchedule = "@every 5m"
)

var ErrBackendBaseURLIsRequired = errors.New("BACKEND_BASE_URL is required")

type Config struct {
	HTTPPort                string
	BackendBaseURL          string
	BackendTimeout          time.Duration
	BackendToken            string
	SurchargeRulesFile      string
	UpdateQueueCapacity     int
	CatalogRefreshSchedule  string
	SessionIdleTTL          time.Duration
	SessionEvictionSchedule string
}

// LoadConfig reads the process environment, after loading envFile when it
// exists. Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	}
	return ParseConfig(os.Getenv)
}

// ParseConfig builds a Config from a variable lookup. Invalid numbers and
// durations fall back to their defaults.
func ParseConfig(getenv func(string) string) (Config, error) {
	get := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}

	config := Config{
		HTTPPort:                stringOr(get("HTTP_PORT"), DefaultHTTPPort),
		BackendBaseURL:          get("BACKEND_BASE_URL"),
		BackendTimeout:          durationOr(get("BACKEND_TIMEOUT"), DefaultBackendTimeout),
		BackendToken:            get("BACKEND_TOKEN"),
		SurchargeRulesFile:      get("SURCHARGE_RULES_FILE"),
		UpdateQueueCapacity:     intOr(get("UPDATE_QUEUE_CAPACITY"), DefaultUpdateQueueCapacity),
		CatalogRefreshSchedule:  stringOr(get("CATALOG_REFRESH_SCHEDULE"), DefaultCatalogRefreshSchedule),
		SessionIdleTTL:          durationOr(get("SESSION_IDLE_TTL"), DefaultSessionIdleTTL),
		SessionEvictionSchedule: stringOr(get("SESSION_EVICTION_SCHEDULE"), DefaultSessionEvictionSchedule),
	}
	if config.BackendBaseURL == "" {
		return Config{}, ErrBackendBaseURLIsRequired
	}
	return config, nil
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationOr(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
