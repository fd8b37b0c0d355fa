// Package riscv implements an interpreter for a subset of the RV32IM
// instruction set with machine-mode traps.
package riscv

import (
	"fmt"
	"strconv"
	"strings"
)

// NumRegisters is the number of general purpose registers
const NumRegisters = 32

// Well known register indices
const (
	RegZero uint32 = 0
	RegRA   uint32 = 1
	RegSP   uint32 = 2
	RegA0   uint32 = 10
	RegA7   uint32 = 17
)

// RegisterNames are the ABI names of the general purpose registers, indexed by register number
var RegisterNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// CSRs holds the machine-mode control and status registers the emulator models
type CSRs struct {
	Mtvec   uint32
	Mstatus uint32
	Mepc    uint32
	Mcause  uint32
}

// State represents the architectural state of the hart
type State struct {
	// General purpose registers (x0-x31)
	GPR [NumRegisters]uint32
	// Program counter (byte address)
	PC uint32
	// Control and status registers
	CSR CSRs
}

// NewState creates a zeroed state with the program counter at entry
func NewState(entry uint32) *State {
	return &State{PC: entry}
}

// GetRegister returns the value of a register by index
func (s *State) GetRegister(idx uint32) uint32 {
	return s.GPR[idx&(NumRegisters-1)]
}

// SetRegister sets the value of a register by index. Writes to x0 are kept
// until the end of the instruction, where x0 is forced back to zero.
func (s *State) SetRegister(idx uint32, value uint32) {
	s.GPR[idx&(NumRegisters-1)] = value
}

// RegisterIndex resolves an ABI name ("a0"), an architectural name ("x10")
// or "fp" to a register index
func RegisterIndex(name string) (uint32, bool) {
	name = strings.ToLower(name)
	if name == "fp" {
		return 8, true
	}
	for i, n := range RegisterNames {
		if n == name {
			return uint32(i), true
		}
	}
	if num, ok := strings.CutPrefix(name, "x"); ok {
		if idx, err := strconv.ParseUint(num, 10, 8); err == nil && idx < NumRegisters {
			return uint32(idx), true
		}
	}
	return 0, false
}

// Lookup returns the value of a named register, including pc and the modelled
// CSRs. It is the register source used by the debugger's expressions.
func (s *State) Lookup(name string) (uint32, error) {
	switch strings.ToLower(name) {
	case "pc":
		return s.PC, nil
	case "mtvec":
		return s.CSR.Mtvec, nil
	case "mstatus":
		return s.CSR.Mstatus, nil
	case "mepc":
		return s.CSR.Mepc, nil
	case "mcause":
		return s.CSR.Mcause, nil
	}

	if idx, ok := RegisterIndex(name); ok {
		return s.GPR[idx], nil
	}

	return 0, fmt.Errorf("unknown register '%v'", name)
}
