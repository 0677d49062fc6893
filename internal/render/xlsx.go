package render

import (
	"fmt"
	"io"
	"time"

	xlsx "github.com/360EntSecGroup-Skylar/excelize/v2"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
)

// Workbook sheet names.
const (
	SheetObservations = "Observations"
	SheetAbout        = "About"
)

var observationHeader = []string{"Country Code", "Country", "Year", "Value"}

// WriteXLSX writes rows as a workbook with an Observations sheet and an About
// sheet describing the table they came from.
func WriteXLSX(w io.Writer, table domain.Table, rows []domain.Observation) error {
	wb := xlsx.NewFile()
	wb.SetSheetName("Sheet1", SheetObservations)
	wb.NewSheet(SheetAbout)

	bold, err := wb.NewStyle(`{"font":{"bold":true}}`)
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	for col, h := range observationHeader {
		if err := setCell(wb, SheetObservations, col+1, 1, h); err != nil {
			return err
		}
	}
	if err := wb.SetCellStyle(SheetObservations, "A1", "D1", bold); err != nil {
		return fmt.Errorf("xlsx header style: %w", err)
	}

	for i, o := range rows {
		row := i + 2
		for col, v := range []any{o.CountryCode, o.CountryName, o.Year, o.Value} {
			if err := setCell(wb, SheetObservations, col+1, row, v); err != nil {
				return err
			}
		}
	}
	if err := wb.SetColWidth(SheetObservations, "B", "B", 32); err != nil {
		return fmt.Errorf("xlsx column width: %w", err)
	}

	about := [][2]any{
		{"Indicator", table.Indicator.ID},
		{"Name", table.Indicator.Name},
		{"Source", table.Source},
		{"Last Updated", table.LastUpdated},
		{"Fetched At", table.FetchedAt.Format(time.RFC3339)},
		{"Rows", len(rows)},
	}
	for i, kv := range about {
		if err := setCell(wb, SheetAbout, 1, i+1, kv[0]); err != nil {
			return err
		}
		if err := setCell(wb, SheetAbout, 2, i+1, kv[1]); err != nil {
			return err
		}
	}
	if err := wb.SetCellStyle(SheetAbout, "A1", fmt.Sprintf("A%d", len(about)), bold); err != nil {
		return fmt.Errorf("xlsx about style: %w", err)
	}

	wb.SetActiveSheet(0)
	if err := wb.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setCell(wb *xlsx.File, sheet string, col, row int, v any) error {
	cell, err := xlsx.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := wb.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("xlsx set %s!%s: %w", sheet, cell, err)
	}
	return nil
}
