package cpu

import (
	"os"

	"github.com/Manu343726/rvdb/pkg/config"
	"github.com/Manu343726/rvdb/pkg/debugger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var debugCmd = &cobra.Command{
	Use:   "debug [image]",
	Short: "Debug a RISC-V program interactively",
	Long: `Loads a raw binary image and opens the debugger prompt. Type 'help'
for the list of commands.

In batch mode the program is run to completion without a prompt, the
same way 'c' would.

Example:
  rvdb cpu debug program.bin
  rvdb cpu debug --watchpoint-ids dense program.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDebug,
}

func init() {
	CpuCmd.AddCommand(debugCmd)

	flags := debugCmd.Flags()
	flags.BoolP("batch", "b", false, "Run to completion without a prompt")
	flags.String("history", "", "File the prompt history is kept in")
	flags.String("watchpoint-ids", "", "Watchpoint id policy (unique, dense)")

	cobra.CheckErr(viper.BindPFlag(config.KeyBatch, flags.Lookup("batch")))
	cobra.CheckErr(viper.BindPFlag(config.KeyHistory, flags.Lookup("history")))
	cobra.CheckErr(viper.BindPFlag(config.KeyWatchpointsIDs, flags.Lookup("watchpoint-ids")))
}

func runDebug(cmd *cobra.Command, args []string) error {
	s, err := newSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	policy, _ := s.config.IDPolicy()
	d := debugger.New(s.machine, debugger.Options{
		Output:   cmd.OutOrStdout(),
		IDPolicy: policy,
		Logger:   s.logger,
	})

	if s.config.Batch {
		d.RunBatch()
	} else if err := d.Run(d.NewLineReader(s.config.History)); err != nil {
		return err
	}

	s.Close()
	os.Exit(s.machine.ExitCode())
	return nil
}
