// Command genfixture records a trimmed World Bank indicator response as a test
// fixture. It fetches through the same client the dashboard uses, keeps only
// the requested countries and rewrites the envelope as a single page.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -indicator EN.ATM.CO2E.PC \
//	  -from 2017 -to 2018 \
//	  -countries USA,CHN,QAT,IND,WLD \
//	  -out internal/adapter/worldbank/testdata/co2_page.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/worldbank"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	indicator := flag.String("indicator", "EN.ATM.CO2E.PC", "World Bank indicator code")
	from := flag.Int("from", 0, "first year (0 = earliest)")
	to := flag.Int("to", 0, "last year (0 = latest)")
	countries := flag.String("countries", "", "comma-separated ISO-3 codes to keep")
	out := flag.String("out", "", "output path for the JSON fixture")
	baseURL := flag.String("base-url", "https://api.worldbank.org/v2", "World Bank API base URL")
	flag.Parse()

	if *out == "" || *countries == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -countries, -out")
	}

	years := domain.YearRange{From: *from, To: *to}
	if err := years.Validate(); err != nil {
		return err
	}
	keep := codeSet(*countries)

	client := worldbank.NewClient(worldbank.Options{
		BaseURL:           *baseURL,
		Source:            "75",
		PerPage:           20000,
		Timeout:           time.Minute,
		RequestsPerSecond: 2,
	}, observability.NewUnregisteredMetrics(), slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, info, err := client.FetchRecords(ctx, *indicator, years)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", *indicator, err)
	}

	var kept []domain.RawRecord
	for _, r := range records {
		if _, ok := keep[strings.ToUpper(r.CountryISO3Code)]; ok {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].CountryISO3Code != kept[j].CountryISO3Code {
			return kept[i].CountryISO3Code < kept[j].CountryISO3Code
		}
		return kept[i].Date > kept[j].Date
	})

	data, err := worldbank.EncodePage(info, kept)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := writeFile(*out, data); err != nil {
		return err
	}

	// Report what normalization will make of the fixture so test
	// expectations can be updated alongside it.
	rows, stats := domain.Normalize(kept, nil)
	fmt.Printf("Fetched %d records, kept %d for %d countries\n", len(records), len(kept), len(keep))
	fmt.Printf("Normalized: %d rows, %d dropped (missing value %d, bad year %d, missing code %d)\n",
		len(rows), stats.Dropped(), stats.MissingValue, stats.BadYear, stats.MissingCode)
	fmt.Printf("Wrote %s\n", *out)
	return nil
}

func codeSet(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range strings.Split(list, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = struct{}{}
		}
	}
	return set
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
