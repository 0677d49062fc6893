package domain

import (
	"context"
	"sort"
	"time"
)

// Observation is one indicator value for one country in one year.
type Observation struct {
	CountryCode string  `json:"country_code" yaml:"country_code"` // ISO-3166 alpha-3
	CountryName string  `json:"country_name" yaml:"country_name"`
	Year        int     `json:"year" yaml:"year"`
	Value       float64 `json:"value" yaml:"value"`
}

// Indicator identifies the statistical series a table was built from.
type Indicator struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Table is the normalized result of one fetch. It is read-only once built;
// the derived views below return fresh slices.
type Table struct {
	Indicator    Indicator     `json:"indicator" yaml:"indicator"`
	Source       string        `json:"source,omitempty" yaml:"source,omitempty"`
	LastUpdated  string        `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at" yaml:"fetched_at"`
	Observations []Observation `json:"observations" yaml:"observations"`
}

// Summary holds the headline figures for one year.
type Summary struct {
	Year      int      `json:"year"`
	Countries int      `json:"countries"`
	Average   *float64 `json:"average"` // nil when the year has no rows
}

// Fetcher loads an indicator table from an upstream statistical source.
type Fetcher interface {
	// Fetch returns every (country, year) observation for the indicator within
	// the range. A zero range means all available years.
	Fetch(ctx context.Context, indicator string, years YearRange) (Table, error)
}

// Len returns the number of observations.
func (t Table) Len() int { return len(t.Observations) }

// Empty reports whether the table has no observations.
func (t Table) Empty() bool { return len(t.Observations) == 0 }

// Years returns the distinct years present, ascending.
func (t Table) Years() []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, o := range t.Observations {
		if _, ok := seen[o.Year]; ok {
			continue
		}
		seen[o.Year] = struct{}{}
		years = append(years, o.Year)
	}
	sort.Ints(years)
	return years
}

// YearBounds returns the earliest and latest year. ok is false for an empty table.
func (t Table) YearBounds() (minYear, maxYear int, ok bool) {
	if t.Empty() {
		return 0, 0, false
	}
	minYear, maxYear = t.Observations[0].Year, t.Observations[0].Year
	for _, o := range t.Observations[1:] {
		minYear = min(minYear, o.Year)
		maxYear = max(maxYear, o.Year)
	}
	return minYear, maxYear, true
}

// ForYear returns the rows for a single year. A year with no data yields an
// empty, non-nil slice.
func (t Table) ForYear(year int) []Observation {
	return t.filter(func(o Observation) bool { return o.Year == year })
}

// InRange returns the rows whose year lies within r. A zero range returns all rows.
func (t Table) InRange(r YearRange) []Observation {
	return t.filter(func(o Observation) bool { return r.Contains(o.Year) })
}

// Top returns up to n rows for the year ordered by value, highest first.
// Ties are broken by country name. n <= 0 returns every row for the year.
func (t Table) Top(year, n int) []Observation {
	rows := t.ForYear(year)
	SortByValueDesc(rows)
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Summarize computes the country count and mean value for a year.
func (t Table) Summarize(year int) Summary {
	rows := t.ForYear(year)
	s := Summary{Year: year, Countries: len(rows)}
	if len(rows) == 0 {
		return s
	}
	var sum float64
	for _, o := range rows {
		sum += o.Value
	}
	avg := sum / float64(len(rows))
	s.Average = &avg
	return s
}

func (t Table) filter(keep func(Observation) bool) []Observation {
	out := make([]Observation, 0)
	for _, o := range t.Observations {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// SortByValueDesc orders rows by value, highest first, then by country name.
func SortByValueDesc(rows []Observation) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].CountryName < rows[j].CountryName
	})
}

// SortByKey orders rows by country code, then year. Useful for stable output
// and for comparing tables whose upstream order differs.
func SortByKey(rows []Observation) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CountryCode != rows[j].CountryCode {
			return rows[i].CountryCode < rows[j].CountryCode
		}
		return rows[i].Year < rows[j].Year
	})
}
