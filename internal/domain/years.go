package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// FirstDataYear is the earliest year the Indicators API publishes.
const FirstDataYear = 1960

// indicatorRe matches World Bank series codes such as "EN.ATM.CO2E.PC" or
// "SP.POP.TOTL". Segments are alphanumeric, joined by dots.
var indicatorRe = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

// ValidateIndicator checks that code has the shape of a series identifier.
// Whether the upstream actually knows the series is only discovered on fetch.
func ValidateIndicator(code string) error {
	if !indicatorRe.MatchString(strings.TrimSpace(code)) {
		return fmt.Errorf("%w: %q", ErrInvalidIndicator, code)
	}
	return nil
}

// YearRange is an inclusive span of years. The zero value means "all years".
type YearRange struct {
	From int `json:"from,omitempty"`
	To   int `json:"to,omitempty"`
}

// IsZero reports whether the range is unbounded.
func (r YearRange) IsZero() bool { return r.From == 0 && r.To == 0 }

// Validate rejects negative bounds and ranges that start after they end. An
// open end (0) is allowed.
func (r YearRange) Validate() error {
	if r.From < 0 || r.To < 0 {
		return fmt.Errorf("%w: negative year in %d:%d", ErrInvalidYearRange, r.From, r.To)
	}
	if r.From != 0 && r.To != 0 && r.From > r.To {
		return fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, r.From, r.To)
	}
	return nil
}

// Contains reports whether year falls within the range. Open ends match anything.
func (r YearRange) Contains(year int) bool {
	if r.From != 0 && year < r.From {
		return false
	}
	if r.To != 0 && year > r.To {
		return false
	}
	return true
}

// Clamp intersects r with bounds, filling open ends from bounds. ok is false
// when the two do not overlap.
func (r YearRange) Clamp(bounds YearRange) (YearRange, bool) {
	from, to := r.From, r.To
	if from == 0 || from < bounds.From {
		from = bounds.From
	}
	if to == 0 || to > bounds.To {
		to = bounds.To
	}
	if from > to {
		return YearRange{}, false
	}
	return YearRange{From: from, To: to}, true
}

// String renders the range in the API's date parameter form, "1990:2020".
func (r YearRange) String() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d:%d", r.From, r.To)
}

// SupportedYears is the span the API can serve: FirstDataYear to the current year.
func SupportedYears() YearRange {
	return YearRange{From: FirstDataYear, To: Now().Year()}
}
