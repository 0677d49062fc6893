// Command co2export fetches a World Bank indicator once and writes the
// flattened table as CSV, JSON, YAML or XLSX.
//
// Usage:
//
//	go run ./cmd/co2export --year 2018 --format csv
//	go run ./cmd/co2export --from 1990 --to 2020 -f xlsx -o co2.xlsx
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
