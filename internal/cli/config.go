package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect co2export configuration",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Long: `Print the settings an export would use after merging flags, CO2_*
environment variables, the config file and defaults. The output is a valid
--config file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(settingsFrom(v))
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# config file: %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configCmd.AddCommand(showCmd)
	return configCmd
}
