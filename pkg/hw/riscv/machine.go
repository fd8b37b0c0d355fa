package riscv

import (
	"encoding/binary"
	"log/slog"
	"math"
	"os"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// Status is the run state of a machine
type Status int

const (
	// StatusStopped means the machine is paused and can be resumed
	StatusStopped Status = iota
	// StatusRunning means the machine is executing instructions
	StatusRunning
	// StatusEnd means the guest executed ebreak
	StatusEnd
	// StatusAborted means execution failed with a decode or memory error
	StatusAborted
	// StatusQuit means the user left the debugger
	StatusQuit
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusRunning:
		return "running"
	case StatusEnd:
		return "end"
	case StatusAborted:
		return "aborted"
	case StatusQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Unlimited can be passed to Exec to run until the machine stops by itself
const Unlimited uint64 = math.MaxUint64

// defaultImageWords is the program loaded when no image is given: it stores
// zero to a scratch word, loads it back into a0 and halts with a0 as exit code.
var defaultImageWords = []uint32{
	0x00000297, // auipc t0, 0
	0x00028823, // sb    zero, 16(t0)
	0x0102c503, // lbu   a0, 16(t0)
	0x00100073, // ebreak
	0xdeadbeef, // scratch
}

// DefaultImage returns the built-in program as little-endian bytes
func DefaultImage() []byte {
	image := make([]byte, 0, len(defaultImageWords)*InstructionBytes)
	for _, word := range defaultImageWords {
		image = binary.LittleEndian.AppendUint32(image, word)
	}
	return image
}

// Machine is a single hart attached to physical memory. It drives the engine,
// dispatches traps and tracks the run state.
type Machine struct {
	state  *State
	memory *RAM
	engine *Engine
	traps  TrapHandler
	logger *slog.Logger
	trace  bool

	status Status
	halt   Halt
	err    error
	steps  uint64
}

// MachineOption configures optional machine features
type MachineOption func(*Machine)

// WithLogger sets the logger used for trace and run state messages
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithTrapHandler replaces the default machine-mode trap handler
func WithTrapHandler(handler TrapHandler) MachineOption {
	return func(m *Machine) {
		m.traps = handler
	}
}

// WithInstructions replaces the built-in decode table
func WithInstructions(table []Instruction) MachineOption {
	return func(m *Machine) {
		m.engine = NewEngine(table)
	}
}

// WithTrace enables instruction tracing at debug level
func WithTrace(enabled bool) MachineOption {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// NewMachine creates a stopped machine with the PC at the base of memory
func NewMachine(memory *RAM, options ...MachineOption) *Machine {
	m := &Machine{
		state:  NewState(memory.Base()),
		memory: memory,
		engine: NewEngine(defaultInstructions),
		traps:  MachineTrapHandler{},
		logger: slog.Default(),
		status: StatusStopped,
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// LoadImage copies an image to the base of memory. An empty image loads the
// built-in program.
func (m *Machine) LoadImage(image []byte) error {
	if len(image) == 0 {
		image = DefaultImage()
		m.logger.Info("no image given, using the built-in program")
	}

	if err := m.memory.Load(image, m.memory.Base()); err != nil {
		return err
	}

	m.logger.Info("image loaded", "bytes", len(image), "base", hex(m.memory.Base()))
	return nil
}

// LoadImageFile loads an image file from disk. An empty path loads the
// built-in program.
func (m *Machine) LoadImageFile(path string) error {
	if path == "" {
		return m.LoadImage(nil)
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return m.LoadImage(image)
}

// State returns the architectural state of the hart
func (m *Machine) State() *State {
	return m.state
}

// Memory returns the physical memory of the machine
func (m *Machine) Memory() *RAM {
	return m.memory
}

// Status returns the current run state
func (m *Machine) Status() Status {
	return m.status
}

// Err returns the error that aborted the machine, if any
func (m *Machine) Err() error {
	return m.err
}

// Steps returns the number of retired instructions
func (m *Machine) Steps() uint64 {
	return m.steps
}

// HaltInfo returns where the guest halted and its exit code. Only meaningful
// in StatusEnd.
func (m *Machine) HaltInfo() Halt {
	return m.halt
}

// Runnable reports whether the machine can execute more instructions
func (m *Machine) Runnable() bool {
	return m.status == StatusStopped || m.status == StatusRunning
}

// Quit marks the machine as left by the user
func (m *Machine) Quit() {
	m.status = StatusQuit
}

// ExitCode follows the usual emulator convention: success when the user quit
// or the guest halted with a zero code, failure otherwise.
func (m *Machine) ExitCode() int {
	switch {
	case m.status == StatusQuit:
		return 0
	case m.status == StatusEnd && m.halt.Code == 0:
		return 0
	default:
		return 1
	}
}

// Step executes exactly one instruction
func (m *Machine) Step() (StepResult, error) {
	if !m.Runnable() {
		return StepResult{}, utils.MakeError(ErrNotRunnable, "machine is %v", m.status)
	}

	result, err := m.engine.Step(m.state, m.memory)
	if err != nil {
		m.status = StatusAborted
		m.err = err
		m.logger.Error("execution aborted", "pc", hex(m.state.PC), "error", err)
		return result, err
	}

	m.steps++
	if m.trace {
		m.logger.Debug("itrace", "pc", hex(result.Decode.PC), "word", hex(result.Decode.Word), "inst", Disassemble(result.Decode))
	}

	switch result.Kind {
	case StepTrap:
		m.state.PC = m.traps.HandleTrap(m.state, result.Trap)
		m.logger.Debug("trap", "cause", result.Trap.Cause, "epc", hex(result.Trap.PC), "handler", hex(m.state.PC))
	case StepHalt:
		m.status = StatusEnd
		m.halt = result.Halt
		if result.Halt.Code == 0 {
			m.logger.Info("hit good trap", "pc", hex(result.Halt.PC))
		} else {
			m.logger.Warn("hit bad trap", "pc", hex(result.Halt.PC), "code", result.Halt.Code)
		}
	}

	return result, nil
}

// Exec executes up to n instructions, stopping early when the machine halts
// or aborts. Pass Unlimited to run to completion.
func (m *Machine) Exec(n uint64) error {
	if !m.Runnable() {
		return utils.MakeError(ErrNotRunnable, "machine is %v", m.status)
	}

	m.status = StatusRunning
	for ; n > 0 && m.status == StatusRunning; n-- {
		if _, err := m.Step(); err != nil {
			return err
		}
	}

	if m.status == StatusRunning {
		m.status = StatusStopped
	}
	return nil
}

func hex(value uint32) slog.Value {
	return slog.StringValue(formatHex(value))
}
