package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// World Bank Indicators API configuration.
	WorldBankBaseURL  string
	WorldBankTimeout  time.Duration
	WorldBankSource   string
	WorldBankPerPage  int
	WorldBankRate     float64
	Indicator         string
	Years             domain.YearRange
	IncludeAggregates bool

	CacheTTL time.Duration

	// Snapshot publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	wbTimeout, err := parsePositiveDuration("WORLDBANK_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	perPage, err := strconv.Atoi(sharedcfg.EnvOrDefault("WORLDBANK_PER_PAGE", "20000"))
	if err != nil || perPage < 1 || perPage > 32500 {
		return nil, errors.New("WORLDBANK_PER_PAGE must be between 1 and 32500")
	}

	rate, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("WORLDBANK_RATE", "2"), 64)
	if err != nil || rate <= 0 {
		return nil, errors.New("invalid WORLDBANK_RATE")
	}

	years, err := parseYears()
	if err != nil {
		return nil, err
	}

	includeAggregates := false
	if v := os.Getenv("INCLUDE_AGGREGATES"); v != "" {
		includeAggregates = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WorldBankBaseURL:  strings.TrimRight(sharedcfg.EnvOrDefault("WORLDBANK_BASE_URL", "https://api.worldbank.org/v2"), "/"),
		WorldBankTimeout:  wbTimeout,
		WorldBankSource:   sharedcfg.EnvOrDefault("WORLDBANK_SOURCE", "75"),
		WorldBankPerPage:  perPage,
		WorldBankRate:     rate,
		Indicator:         sharedcfg.EnvOrDefault("INDICATOR", "EN.ATM.CO2E.PC"),
		Years:             years,
		IncludeAggregates: includeAggregates,

		CacheTTL: cacheTTL,

		KafkaBrokers: parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "co2-observations"),
	}

	if err := domain.ValidateIndicator(cfg.Indicator); err != nil {
		return nil, fmt.Errorf("INDICATOR: %w", err)
	}
	if cfg.WorldBankBaseURL == "" {
		return nil, errors.New("WORLDBANK_BASE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEnabled reports whether snapshots should be written to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseYears() (domain.YearRange, error) {
	var r domain.YearRange
	for key, dst := range map[string]*int{"YEAR_FROM": &r.From, "YEAR_TO": &r.To} {
		s := os.Getenv(key)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return domain.YearRange{}, fmt.Errorf("invalid %s", key)
		}
		*dst = n
	}
	if err := r.Validate(); err != nil {
		return domain.YearRange{}, fmt.Errorf("YEAR_FROM/YEAR_TO: %w", err)
	}
	return r, nil
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
