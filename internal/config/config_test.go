package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

const defaultIndicator = "EN.ATM.CO2E.PC"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://api.worldbank.org/v2", cfg.WorldBankBaseURL)
	assert.Equal(t, 15*time.Second, cfg.WorldBankTimeout)
	assert.Equal(t, "75", cfg.WorldBankSource)
	assert.Equal(t, 20000, cfg.WorldBankPerPage)
	assert.Equal(t, 2.0, cfg.WorldBankRate)
	assert.Equal(t, defaultIndicator, cfg.Indicator)
	assert.True(t, cfg.Years.IsZero())
	assert.False(t, cfg.IncludeAggregates)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "co2-observations", cfg.KafkaTopic)
	assert.False(t, cfg.PublishEnabled())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WORLDBANK_BASE_URL", "http://localhost:8081/v2/")
	t.Setenv("WORLDBANK_TIMEOUT", "3s")
	t.Setenv("WORLDBANK_SOURCE", "2")
	t.Setenv("WORLDBANK_PER_PAGE", "500")
	t.Setenv("WORLDBANK_RATE", "0.5")
	t.Setenv("INDICATOR", "SP.POP.TOTL")
	t.Setenv("YEAR_FROM", "1990")
	t.Setenv("YEAR_TO", "2020")
	t.Setenv("INCLUDE_AGGREGATES", "true")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/v2", cfg.WorldBankBaseURL)
	assert.Equal(t, 3*time.Second, cfg.WorldBankTimeout)
	assert.Equal(t, "2", cfg.WorldBankSource)
	assert.Equal(t, 500, cfg.WorldBankPerPage)
	assert.Equal(t, 0.5, cfg.WorldBankRate)
	assert.Equal(t, "SP.POP.TOTL", cfg.Indicator)
	assert.Equal(t, domain.YearRange{From: 1990, To: 2020}, cfg.Years)
	assert.True(t, cfg.IncludeAggregates)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
	assert.True(t, cfg.PublishEnabled())
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidWorldBankTimeout(t *testing.T) {
	t.Setenv("WORLDBANK_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORLDBANK_TIMEOUT")
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "-1m")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_PerPageOutOfBounds(t *testing.T) {
	for _, v := range []string{"0", "40000", "many"} {
		t.Setenv("WORLDBANK_PER_PAGE", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "WORLDBANK_PER_PAGE")
	}
}

func TestLoad_InvalidRate(t *testing.T) {
	t.Setenv("WORLDBANK_RATE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORLDBANK_RATE")
}

func TestLoad_InvalidIndicator(t *testing.T) {
	t.Setenv("INDICATOR", "EN ATM")
	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIndicator)
}

func TestLoad_InvalidYear(t *testing.T) {
	t.Setenv("YEAR_FROM", "nineteen")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YEAR_FROM")
}

func TestLoad_InvertedYearRange(t *testing.T) {
	t.Setenv("YEAR_FROM", "2020")
	t.Setenv("YEAR_TO", "1990")
	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidYearRange)
}

func TestLoad_OpenEndedYearRange(t *testing.T) {
	t.Setenv("YEAR_FROM", "2000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, domain.YearRange{From: 2000}, cfg.Years)
}

func TestLoad_AggregatesExplicitlyDisabled(t *testing.T) {
	t.Setenv("INCLUDE_AGGREGATES", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IncludeAggregates)
}
