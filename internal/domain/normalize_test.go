package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIndicator = "EN.ATM.CO2E.PC"
	testUSA       = "United States"
)

func ptr(v float64) *float64 { return &v }

func rawRecord(code, name, date string, value *float64) RawRecord {
	return RawRecord{
		Indicator:       RefValue{ID: testIndicator, Value: "CO2 emissions (metric tons per capita)"},
		Country:         RefValue{ID: code[:min(2, len(code))], Value: name},
		CountryISO3Code: code,
		Date:            date,
		Value:           value,
	}
}

func TestNormalize(t *testing.T) {
	t.Run("decodes API record", func(t *testing.T) {
		data := []byte(`{"indicator":{"id":"EN.ATM.CO2E.PC","value":"CO2 emissions (metric tons per capita)"},"country":{"id":"US","value":"United States"},"countryiso3code":"USA","date":"2018","value":14.82,"unit":"","obs_status":"","decimal":1}`)
		var rec RawRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		rows, stats := Normalize([]RawRecord{rec}, nil)

		require.Len(t, rows, 1)
		assert.Equal(t, Observation{CountryCode: "USA", CountryName: testUSA, Year: 2018, Value: 14.82}, rows[0])
		assert.Equal(t, 1, stats.Kept)
		assert.Zero(t, stats.Dropped())
	})

	t.Run("null value dropped", func(t *testing.T) {
		data := []byte(`{"country":{"id":"US","value":"United States"},"countryiso3code":"USA","date":"2023","value":null}`)
		var rec RawRecord
		require.NoError(t, json.Unmarshal(data, &rec))

		rows, stats := Normalize([]RawRecord{rec}, nil)

		assert.Empty(t, rows)
		assert.Equal(t, 1, stats.MissingValue)
	})

	t.Run("empty or malformed code dropped", func(t *testing.T) {
		records := []RawRecord{
			rawRecord("", "Channel Islands", "2018", ptr(1)),
			rawRecord("US", testUSA, "2018", ptr(1)),
			rawRecord("U1A", "Bad", "2018", ptr(1)),
		}

		rows, stats := Normalize(records, nil)

		assert.Empty(t, rows)
		assert.Equal(t, 3, stats.MissingCode)
	})

	t.Run("lower-case code upper-cased", func(t *testing.T) {
		rows, _ := Normalize([]RawRecord{rawRecord(" usa ", testUSA, "2018", ptr(14.8))}, nil)
		require.Len(t, rows, 1)
		assert.Equal(t, "USA", rows[0].CountryCode)
	})

	t.Run("non-annual date dropped", func(t *testing.T) {
		records := []RawRecord{
			rawRecord("USA", testUSA, "2018Q1", ptr(1)),
			rawRecord("USA", testUSA, "", ptr(1)),
			rawRecord("USA", testUSA, "20x8", ptr(1)),
		}

		rows, stats := Normalize(records, nil)

		assert.Empty(t, rows)
		assert.Equal(t, 3, stats.BadYear)
	})

	t.Run("non-finite value dropped", func(t *testing.T) {
		records := []RawRecord{
			rawRecord("USA", testUSA, "2018", ptr(math.NaN())),
			rawRecord("USA", testUSA, "2019", ptr(math.Inf(1))),
		}

		rows, stats := Normalize(records, nil)

		assert.Empty(t, rows)
		assert.Equal(t, 2, stats.MissingValue)
	})

	t.Run("keep filter excludes aggregates", func(t *testing.T) {
		records := []RawRecord{
			rawRecord("USA", testUSA, "2018", ptr(14.8)),
			rawRecord("WLD", "World", "2018", ptr(4.5)),
		}
		keep := func(code string) bool { return code != "WLD" }

		rows, stats := Normalize(records, keep)

		require.Len(t, rows, 1)
		assert.Equal(t, "USA", rows[0].CountryCode)
		assert.Equal(t, 1, stats.Aggregate)
		assert.Equal(t, 1, stats.Dropped())
	})

	t.Run("zero value kept", func(t *testing.T) {
		rows, _ := Normalize([]RawRecord{rawRecord("TUV", "Tuvalu", "2018", ptr(0))}, nil)
		require.Len(t, rows, 1)
		assert.Equal(t, 0.0, rows[0].Value)
	})

	t.Run("nil input", func(t *testing.T) {
		rows, stats := Normalize(nil, nil)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
		assert.Zero(t, stats.Kept)
	})
}

func TestNormalize_RowsAlwaysValid(t *testing.T) {
	records := []RawRecord{
		rawRecord("USA", testUSA, "2018", ptr(14.82)),
		rawRecord("CHN", "China", "2018", ptr(7.4)),
		rawRecord("", "Unknown", "2018", ptr(2)),
		rawRecord("DEU", "Germany", "2018", nil),
		rawRecord("IND", "India", "bad", ptr(1.8)),
	}

	rows, stats := Normalize(records, nil)

	assert.Equal(t, 2, stats.Kept)
	assert.Equal(t, len(records), stats.Kept+stats.Dropped())
	for _, o := range rows {
		assert.Regexp(t, `^[A-Z]{3}$`, o.CountryCode)
		assert.False(t, math.IsNaN(o.Value))
	}
}
