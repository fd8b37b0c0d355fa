package debugger

import (
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/Manu343726/rvdb/pkg/utils"
	"github.com/fatih/color"
)

var (
	colorAddr    = color.New(color.FgCyan)
	colorInstr   = color.New(color.FgYellow)
	colorReg     = color.New(color.FgGreen)
	colorValue   = color.New(color.FgWhite, color.Bold)
	colorHex     = color.New(color.FgMagenta)
	colorError   = color.New(color.FgRed, color.Bold)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
	colorHeader  = color.New(color.FgWhite, color.Bold, color.Underline)
)

// PrintStepLimit is the largest step count for which every executed
// instruction is printed
const PrintStepLimit = 10

// Options configures a debugger session
type Options struct {
	// Output receives everything the debugger prints. Defaults to stdout.
	Output io.Writer
	// IDPolicy selects how watchpoint ids are assigned
	IDPolicy IDPolicy
	// Logger receives diagnostic messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// Debugger drives a machine from user commands
type Debugger struct {
	machine      *riscv.Machine
	eval         *Evaluator
	watchpoints  *WatchpointManager
	commands     []Command
	commandIndex map[string]Command
	out          io.Writer
	logger       *slog.Logger
}

// New creates a debugger session for machine. Expressions read the live
// registers of the machine.
func New(machine *riscv.Machine, options Options) *Debugger {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	eval := NewEvaluator(machine.State())
	commands := defaultCommands()

	return &Debugger{
		machine:      machine,
		eval:         eval,
		watchpoints:  NewWatchpointManager(eval, options.IDPolicy),
		commands:     commands,
		commandIndex: utils.GenMap(commands, func(cmd Command) string { return cmd.Name }),
		out:          options.Output,
		logger:       options.Logger,
	}
}

// Machine returns the machine being debugged
func (d *Debugger) Machine() *riscv.Machine {
	return d.machine
}

// Watchpoints returns the watchpoint pool of the session
func (d *Debugger) Watchpoints() *WatchpointManager {
	return d.watchpoints
}

// Commands returns the command table
func (d *Debugger) Commands() []Command {
	return d.commands
}

// Exec executes up to n instructions. Execution stops early when a watchpoint
// changes, the guest halts or the machine aborts.
func (d *Debugger) Exec(n uint64) error {
	if !d.machine.Runnable() {
		colorWarning.Fprintln(d.out, f("Program execution has ended. To restart the program, exit and run again."))
		return nil
	}

	printSteps := n <= PrintStepLimit

	for i := uint64(0); i < n && d.machine.Runnable(); i++ {
		result, err := d.machine.Step()
		if err != nil {
			d.reportStatus()
			return err
		}

		if printSteps {
			d.printStep(result.Decode)
		}

		changes, err := d.watchpoints.Check()
		if err != nil {
			return err
		}
		if len(changes) > 0 {
			for _, change := range changes {
				d.printChange(change)
			}
			break
		}
	}

	d.reportStatus()
	return nil
}

func (d *Debugger) printStep(decode riscv.Decode) {
	colorAddr.Fprintf(d.out, "0x%08x", decode.PC)
	colorHex.Fprintf(d.out, "  %08x  ", decode.Word)
	colorInstr.Fprintln(d.out, riscv.Disassemble(decode))
}

func (d *Debugger) printChange(change Change) {
	colorWarning.Fprintln(d.out, f("Watchpoint %s: %s", strconv.Itoa(change.ID), change.Expr))
	colorValue.Fprintf(d.out, "  %s = %d\n", f("Old value"), change.Old)
	colorValue.Fprintf(d.out, "  %s = %d\n", f("New value"), change.Value)
}

func (d *Debugger) reportStatus() {
	switch d.machine.Status() {
	case riscv.StatusEnd:
		halt := d.machine.HaltInfo()
		if halt.Code == 0 {
			colorSuccess.Fprintln(d.out, f("HIT GOOD TRAP at pc = %s", formatHex(halt.PC)))
		} else {
			colorError.Fprintln(d.out, f("HIT BAD TRAP at pc = %s (exit code %s)", formatHex(halt.PC), strconv.FormatUint(uint64(halt.Code), 10)))
		}
	case riscv.StatusAborted:
		colorError.Fprintln(d.out, f("ABORT at pc = %s", formatHex(d.machine.State().PC)))
	}
}
