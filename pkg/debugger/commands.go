package debugger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/Manu343726/rvdb/pkg/utils"
)

// CommandHandler runs a command with the raw argument string. Returning true
// ends the session.
type CommandHandler func(d *Debugger, args string) (bool, error)

// Command is an entry of the command table
type Command struct {
	Name        string
	Usage       string
	// Description is an en-US translation key
	Description string
	Handler     CommandHandler
}

func defaultCommands() []Command {
	return []Command{
		{"help", "help [cmd]", "Display information about all supported commands", cmdHelp},
		{"c", "c", "Continue the execution of the program", cmdContinue},
		{"q", "q", "Exit the debugger", cmdQuit},
		{"si", "si [N]", "Execute N instructions and pause (N defaults to 1)", cmdStep},
		{"info", "info r|w", "Print the registers (r) or the watchpoints (w)", cmdInfo},
		{"p", "p EXPR", "Evaluate an expression", cmdPrint},
		{"w", "w EXPR", "Pause execution when the value of EXPR changes", cmdWatch},
		{"d", "d N", "Delete watchpoint N", cmdDelete},
		{"x", "x N ADDR", "Print N words of memory starting at hex address ADDR", cmdExamine},
	}
}

func formatHex(value uint32) string {
	return utils.FormatUintHex(uint64(value), 8)
}

// splitCommand separates the command word from the raw remainder of the line
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx:])
}

// Lookup returns the command with the given name
func (d *Debugger) Lookup(name string) (Command, bool) {
	cmd, ok := d.commandIndex[name]
	return cmd, ok
}

// Complete returns the command names starting with prefix
func (d *Debugger) Complete(prefix string) []string {
	names := utils.Map(d.commands, func(cmd Command) string { return cmd.Name })
	return utils.Filter(names, func(name string) bool { return strings.HasPrefix(name, prefix) })
}

// Execute runs one command line and prints its output. Errors caused by user
// input are printed and do not end the session. Returns true when the session
// should end.
func (d *Debugger) Execute(line string) bool {
	name, args := splitCommand(line)
	if name == "" {
		return false
	}

	cmd, ok := d.Lookup(name)
	if !ok {
		colorError.Fprintln(d.out, localizeError(utils.MakeError(ErrUnknownCommand, "'%v'", name)))
		return false
	}

	d.logger.Debug("command", "name", name, "args", args)

	quit, err := cmd.Handler(d, args)
	if err != nil {
		colorError.Fprintln(d.out, localizeError(err))
	}
	return quit
}

func cmdHelp(d *Debugger, args string) (bool, error) {
	if args == "" {
		for _, cmd := range d.commands {
			fmt.Fprintf(d.out, "%-10s - %s\n", cmd.Usage, f(cmd.Description))
		}
		return false, nil
	}

	cmd, ok := d.Lookup(args)
	if !ok {
		return false, utils.MakeError(ErrUnknownCommand, "'%v'", args)
	}
	fmt.Fprintf(d.out, "%-10s - %s\n", cmd.Usage, f(cmd.Description))
	return false, nil
}

func cmdContinue(d *Debugger, args string) (bool, error) {
	return false, d.Exec(riscv.Unlimited)
}

func cmdQuit(d *Debugger, args string) (bool, error) {
	d.machine.Quit()
	return true, nil
}

func cmdStep(d *Debugger, args string) (bool, error) {
	steps := uint64(1)
	if args != "" {
		n, err := strconv.ParseUint(args, 10, 64)
		if err != nil {
			return false, utils.MakeError(ErrBadArgument, "si: '%v' is not a step count", args)
		}
		steps = n
	}
	return false, d.Exec(steps)
}

func cmdInfo(d *Debugger, args string) (bool, error) {
	switch args {
	case "r":
		d.printRegisters()
	case "w":
		d.printWatchpoints()
	default:
		return false, utils.MakeError(ErrBadArgument, "usage: info r|w")
	}
	return false, nil
}

func (d *Debugger) printRegisters() {
	state := d.machine.State()

	colorHeader.Fprintln(d.out, f("Registers"))
	for i, name := range riscv.RegisterNames {
		value := state.GPR[i]
		fmt.Fprintf(d.out, "%s %s %s\n",
			colorReg.Sprintf("%-8s", name),
			colorHex.Sprintf("0x%08x", value),
			colorValue.Sprintf("%d", int32(value)))
	}

	special := []struct {
		name  string
		value uint32
	}{
		{"pc", state.PC},
		{"mtvec", state.CSR.Mtvec},
		{"mstatus", state.CSR.Mstatus},
		{"mepc", state.CSR.Mepc},
		{"mcause", state.CSR.Mcause},
	}
	for _, reg := range special {
		fmt.Fprintf(d.out, "%s %s %s\n",
			colorReg.Sprintf("%-8s", reg.name),
			colorHex.Sprintf("0x%08x", reg.value),
			colorValue.Sprintf("%d", int32(reg.value)))
	}
}

func (d *Debugger) printWatchpoints() {
	if d.watchpoints.Len() == 0 {
		fmt.Fprintln(d.out, f("No watchpoints."))
		return
	}

	colorHeader.Fprintf(d.out, "%-4s %-12s %s\n", "Num", "Value", "What")
	for wp := range d.watchpoints.List() {
		fmt.Fprintf(d.out, "%-4d %-12d %s\n", wp.ID, wp.Value, wp.Expr)
	}
}

func cmdPrint(d *Debugger, args string) (bool, error) {
	if args == "" {
		return false, utils.MakeError(ErrBadArgument, "usage: p EXPR")
	}

	value, err := d.eval.EvalString(args)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(d.out, "%s (%s)\n", colorValue.Sprintf("%d", value), colorHex.Sprintf("0x%08x", uint32(value)))
	return false, nil
}

func cmdWatch(d *Debugger, args string) (bool, error) {
	if args == "" {
		return false, utils.MakeError(ErrBadArgument, "usage: w EXPR")
	}

	if err := d.watchpoints.Add(args); err != nil {
		return false, err
	}

	wp, _ := d.watchpoints.Last()
	colorSuccess.Fprintf(d.out, "%s = %d\n", f("Watchpoint %s: %s", strconv.Itoa(wp.ID), wp.Expr), wp.Value)
	return false, nil
}

func cmdDelete(d *Debugger, args string) (bool, error) {
	id, err := strconv.Atoi(args)
	if err != nil {
		return false, utils.MakeError(ErrBadArgument, "usage: d N")
	}

	if !d.watchpoints.Remove(id) {
		return false, utils.MakeError(ErrNoSuchWatchpoint, "%d", id)
	}
	fmt.Fprintln(d.out, f("Deleted watchpoint %s", strconv.Itoa(id)))
	return false, nil
}

func parseHex(str string) (uint32, error) {
	str = strings.TrimPrefix(strings.ToLower(str), "0x")
	value, err := strconv.ParseUint(str, 16, 32)
	return uint32(value), err
}

func cmdExamine(d *Debugger, args string) (bool, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return false, utils.MakeError(ErrBadArgument, "usage: x N ADDR")
	}

	count, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return false, utils.MakeError(ErrBadArgument, "x: '%v' is not a word count", fields[0])
	}
	addr, err := parseHex(fields[1])
	if err != nil {
		return false, utils.MakeError(ErrBadArgument, "x: '%v' is not a hex address", fields[1])
	}

	memory := d.machine.Memory()
	for i := uint64(0); i < count; i++ {
		word, err := memory.Read(addr, 4)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(d.out, "%s: %s\n", colorAddr.Sprintf("0x%08x", addr), colorHex.Sprintf("0x%08x", word))
		addr += 4
	}
	return false, nil
}
