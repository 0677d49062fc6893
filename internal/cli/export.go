package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/render"
)

// createOutput opens the --output file. Replaced in tests.
var createOutput = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

// exportRange is the range to request: --from/--to when given, otherwise just
// --year, otherwise everything.
func exportRange(s Settings) domain.YearRange {
	r := domain.YearRange{From: s.From, To: s.To}
	if r.IsZero() && s.Year != 0 {
		return domain.YearRange{From: s.Year, To: s.Year}
	}
	return r
}

func runExport(ctx context.Context, stdout, stderr io.Writer, s Settings, newFetcher FetcherFactory) (err error) {
	format, err := render.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	years := exportRange(s)
	if err := years.Validate(); err != nil {
		return err
	}

	logger := observability.NewCLILogger(stderr, s.Verbose)
	logger.Debug("exporting", "indicator", s.Indicator, "years", years.String(), "format", format)

	table, err := newFetcher(s, logger).Fetch(ctx, s.Indicator, years)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", s.Indicator, err)
	}

	rows := table.InRange(domain.YearRange{})
	if s.Year != 0 {
		rows = table.ForYear(s.Year)
	}
	domain.SortByKey(rows)
	if len(rows) == 0 {
		logger.Warn("no observations matched", "indicator", s.Indicator, "years", years.String(), "year", s.Year)
	}

	w := stdout
	if s.Output != "" && s.Output != "-" {
		f, createErr := createOutput(s.Output)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		w = f
	}

	if err := render.Export(w, format, table, rows); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	logger.Info("export written", "rows", len(rows), "format", format, "output", s.Output)
	return nil
}
