package cpu

import (
	"fmt"
	"os"

	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/spf13/cobra"
)

var execMaxSteps uint64

var execCmd = &cobra.Command{
	Use:   "exec [image]",
	Short: "Execute a RISC-V program",
	Long: `Loads a raw binary image at the base of memory and runs it until it
executes ebreak, the step limit is reached, or execution aborts.

The exit code of the guest is taken from a0 when it executes ebreak:
zero is a good trap and makes rvdb exit with status 0. Without an image,
a small built-in program is run.

Example:
  rvdb cpu exec program.bin
  rvdb cpu exec --trace --max-steps 100 program.bin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func init() {
	CpuCmd.AddCommand(execCmd)
	execCmd.Flags().Uint64VarP(&execMaxSteps, "max-steps", "n", 0, "Maximum number of steps to execute (0 = unlimited)")
}

func runExec(cmd *cobra.Command, args []string) error {
	s, err := newSession(args)
	if err != nil {
		return err
	}
	defer s.Close()

	steps := execMaxSteps
	if steps == 0 {
		steps = riscv.Unlimited
	}

	if err := s.machine.Exec(steps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	state := s.machine.State()
	switch s.machine.Status() {
	case riscv.StatusEnd:
		halt := s.machine.HaltInfo()
		fmt.Fprintf(cmd.OutOrStdout(), "halted at 0x%08x with code %d after %d steps\n", halt.PC, halt.Code, s.machine.Steps())
	case riscv.StatusStopped:
		fmt.Fprintf(cmd.OutOrStdout(), "stopped at 0x%08x after %d steps\n", state.PC, s.machine.Steps())
	}

	s.Close()
	os.Exit(s.machine.ExitCode())
	return nil
}
