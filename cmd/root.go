package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Manu343726/rvdb/cmd/cpu"
	"github.com/Manu343726/rvdb/cmd/tools"
	"github.com/Manu343726/rvdb/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rvdb",
	Short: "A RISC-V emulator with a built-in debugger",
	Long: `rvdb emulates a 32 bit RISC-V hart (RV32I plus multiply/divide and
machine-mode CSRs) and lets you drive it from a gdb-like prompt with
expressions and watchpoints.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(cpu.CpuCmd, tools.ToolsCmd)
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rvdb.yaml)")
	flags.String("log-level", "warn", "Console log level (debug, info, warn, error)")
	flags.String("log-file", "", "Also write JSON logs to this file")
	flags.Uint32("memory-base", 0, "Physical address RAM is mapped at")
	flags.Uint32("memory-size", 0, "Amount of RAM in bytes")

	bind(config.KeyLogLevel, "log-level")
	bind(config.KeyLogFile, "log-file")
	bind(config.KeyMemoryBase, "memory-base")
	bind(config.KeyMemorySize, "memory-size")
}

func bind(key, flag string) {
	cobra.CheckErr(viper.BindPFlag(key, RootCmd.PersistentFlags().Lookup(flag)))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rvdb" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rvdb")
	}

	// RVDB_MEMORY_SIZE overrides memory.size and so on
	viper.SetEnvPrefix("RVDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
