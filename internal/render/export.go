package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML, FormatXLSX}

// ParseFormat accepts a format name, case-insensitively. "yml" is an alias
// for yaml.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return FormatYAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want csv, json, yaml or xlsx)", s)
}

// document is the JSON and YAML export shape: table metadata plus the
// selected rows.
type document struct {
	Indicator    domain.Indicator     `json:"indicator" yaml:"indicator"`
	Source       string               `json:"source,omitempty" yaml:"source,omitempty"`
	LastUpdated  string               `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	FetchedAt    string               `json:"fetched_at" yaml:"fetched_at"`
	Observations []domain.Observation `json:"observations" yaml:"observations"`
}

// Export writes rows from table in the given format.
func Export(w io.Writer, f Format, table domain.Table, rows []domain.Observation) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(table, rows))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(table, rows)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatXLSX:
		return WriteXLSX(w, table, rows)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func newDocument(table domain.Table, rows []domain.Observation) document {
	if rows == nil {
		rows = []domain.Observation{}
	}
	return document{
		Indicator:    table.Indicator,
		Source:       table.Source,
		LastUpdated:  table.LastUpdated,
		FetchedAt:    table.FetchedAt.Format(time.RFC3339),
		Observations: rows,
	}
}

func writeCSV(w io.Writer, rows []domain.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country_code", "country_name", "year", "value"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range rows {
		rec := []string{
			o.CountryCode,
			o.CountryName,
			strconv.Itoa(o.Year),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
