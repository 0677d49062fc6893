//go:build worldbank

package worldbank

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

// These tests hit the live World Bank API.
// Run with: go test -tags=worldbank ./internal/adapter/worldbank/ -v -count=1

func smokeClient() *Client {
	return NewClient(Options{
		BaseURL:           "https://api.worldbank.org/v2",
		Source:            "75",
		PerPage:           20000,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
	}, observability.NewMetricsForTesting(), discardLogger())
}

func TestSmoke_FetchCO2(t *testing.T) {
	table, err := smokeClient().Fetch(context.Background(), "EN.ATM.CO2E.PC", domain.YearRange{From: 2010, To: 2015})
	require.NoError(t, err)

	assert.NotEmpty(t, table.Indicator.Name)
	assert.Greater(t, table.Len(), 100)

	from, to, ok := table.YearBounds()
	require.True(t, ok)
	assert.GreaterOrEqual(t, from, 2010)
	assert.LessOrEqual(t, to, 2015)

	for _, o := range table.ForYear(2014) {
		assert.NotEqual(t, "WLD", o.CountryCode, "aggregates should be filtered")
	}
}

func TestSmoke_UnknownIndicator(t *testing.T) {
	_, err := smokeClient().Fetch(context.Background(), "NOT.A.REAL.SERIES", domain.YearRange{})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
