package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// iso3Re matches an ISO-3166 alpha-3 code after upper-casing.
var iso3Re = regexp.MustCompile(`^[A-Z]{3}$`)

// RefValue is the API's {"id": ..., "value": ...} reference object.
type RefValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// RawRecord is one element of the records array in an indicator response.
type RawRecord struct {
	Indicator       RefValue `json:"indicator"`
	Country         RefValue `json:"country"`
	CountryISO3Code string   `json:"countryiso3code"`
	Date            string   `json:"date"`
	Value           *float64 `json:"value"` // null when unreported
	Unit            string   `json:"unit"`
	ObsStatus       string   `json:"obs_status"`
	Decimal         int      `json:"decimal"`
}

// NormalizeStats counts how many records were kept and why the rest were dropped.
type NormalizeStats struct {
	Kept         int
	MissingValue int
	MissingCode  int
	BadYear      int
	Aggregate    int
}

// Dropped returns the total number of discarded records.
func (s NormalizeStats) Dropped() int {
	return s.MissingValue + s.MissingCode + s.BadYear + s.Aggregate
}

// Normalize flattens raw records into observations. keep, when non-nil, is
// consulted with the alpha-3 code and lets the caller exclude aggregates.
func Normalize(records []RawRecord, keep func(code string) bool) ([]Observation, NormalizeStats) {
	var stats NormalizeStats
	out := make([]Observation, 0, len(records))

	for _, rec := range records {
		code := strings.ToUpper(strings.TrimSpace(rec.CountryISO3Code))
		if !iso3Re.MatchString(code) {
			stats.MissingCode++
			continue
		}
		if rec.Value == nil || math.IsNaN(*rec.Value) || math.IsInf(*rec.Value, 0) {
			stats.MissingValue++
			continue
		}
		year, ok := parseYear(rec.Date)
		if !ok {
			stats.BadYear++
			continue
		}
		if keep != nil && !keep(code) {
			stats.Aggregate++
			continue
		}

		out = append(out, Observation{
			CountryCode: code,
			CountryName: strings.TrimSpace(rec.Country.Value),
			Year:        year,
			Value:       *rec.Value,
		})
	}

	stats.Kept = len(out)
	return out, stats
}

// parseYear accepts the annual "2018" form. Quarterly or monthly dates
// ("2018Q1", "2018M01") are not annual observations and are rejected.
func parseYear(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date)
	if err != nil {
		return 0, false
	}
	return y, true
}
