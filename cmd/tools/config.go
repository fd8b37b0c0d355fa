package tools

import (
	"github.com/Manu343726/rvdb/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Prints the configuration resolved from the config file, RVDB_*
environment variables and flags, in the format of the config file.

Example:
  rvdb tools config > ~/.rvdb.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		data, err := cfg.YAML()
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	ToolsCmd.AddCommand(configCmd)
}
