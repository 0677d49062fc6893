// Package cli implements the co2export command: fetch an indicator table once
// and write it as CSV, JSON, YAML or XLSX.
package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/carbon-emissions-tracker/internal/adapter/worldbank"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/domain"
	"github.com/couchcryptid/carbon-emissions-tracker/internal/observability"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// envPrefix scopes environment overrides, e.g. CO2_FORMAT=json.
const envPrefix = "CO2"

// Settings is the effective export configuration after flags, environment
// and config file are merged.
type Settings struct {
	Indicator         string        `yaml:"indicator"`
	From              int           `yaml:"from,omitempty"`
	To                int           `yaml:"to,omitempty"`
	Year              int           `yaml:"year,omitempty"`
	Format            string        `yaml:"format"`
	Output            string        `yaml:"output,omitempty"`
	IncludeAggregates bool          `yaml:"include-aggregates"`
	BaseURL           string        `yaml:"base-url"`
	Source            string        `yaml:"source"`
	PerPage           int           `yaml:"per-page"`
	Timeout           time.Duration `yaml:"timeout"`
	Rate              float64       `yaml:"rate"`
	Verbose           bool          `yaml:"verbose"`
}

// FetcherFactory builds the fetcher an export runs against.
type FetcherFactory func(s Settings, logger *slog.Logger) domain.Fetcher

// WorldBankFetcher is the production FetcherFactory.
func WorldBankFetcher(s Settings, logger *slog.Logger) domain.Fetcher {
	return worldbank.NewClient(worldbank.Options{
		BaseURL:           s.BaseURL,
		Source:            s.Source,
		PerPage:           s.PerPage,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.Rate,
		IncludeAggregates: s.IncludeAggregates,
	}, observability.NewUnregisteredMetrics(), logger)
}

// Execute runs the co2export command against the World Bank API.
func Execute() error {
	return NewRootCommand(WorldBankFetcher).Execute()
}

// NewRootCommand assembles the command tree. Each call gets its own viper
// instance so commands can be built repeatedly in tests.
func NewRootCommand(newFetcher FetcherFactory) *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "co2export",
		Short: "Export World Bank indicator data as CSV, JSON, YAML or XLSX",
		Long: `co2export fetches one World Bank indicator for every country and writes
the flattened (country, year, value) table.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CO2_*, e.g. CO2_FORMAT=json)
3. Config file (--config, YAML keys match the flag names)
4. Defaults

Example:
  co2export --year 2018 --format csv
  co2export --from 1990 --to 2020 --format xlsx --output co2.xlsx
  co2export --indicator SP.POP.TOTL --format json`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := settingsFrom(v)
			return runExport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), s, newFetcher)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("indicator", "EN.ATM.CO2E.PC", "World Bank indicator code")
	flags.Int("from", 0, "first year to fetch (0 = earliest)")
	flags.Int("to", 0, "last year to fetch (0 = latest)")
	flags.Int("year", 0, "export a single year")
	flags.StringP("format", "f", "csv", "output format: csv, json, yaml, xlsx")
	flags.StringP("output", "o", "", "output file (default stdout)")
	flags.Bool("include-aggregates", false, "keep regional and income-group aggregates")
	flags.String("base-url", "https://api.worldbank.org/v2", "World Bank API base URL")
	flags.String("source", "75", "World Bank source database id")
	flags.Int("per-page", 20000, "records per API page")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.Float64("rate", 2, "maximum API requests per second")
	flags.BoolP("verbose", "v", false, "verbose logging to stderr")

	_ = v.BindPFlags(flags)

	root.AddCommand(newVersionCommand(), newConfigCommand(v))
	return root
}

// initConfig layers environment variables and the optional config file over
// the flag defaults.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	return nil
}

func settingsFrom(v *viper.Viper) Settings {
	return Settings{
		Indicator:         strings.TrimSpace(v.GetString("indicator")),
		From:              v.GetInt("from"),
		To:                v.GetInt("to"),
		Year:              v.GetInt("year"),
		Format:            v.GetString("format"),
		Output:            v.GetString("output"),
		IncludeAggregates: v.GetBool("include-aggregates"),
		BaseURL:           v.GetString("base-url"),
		Source:            v.GetString("source"),
		PerPage:           v.GetInt("per-page"),
		Timeout:           v.GetDuration("timeout"),
		Rate:              v.GetFloat64("rate"),
		Verbose:           v.GetBool("verbose"),
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "co2export %s\n", Version)
		},
	}
}
