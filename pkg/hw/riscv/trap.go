package riscv

// Trap describes an environment call raised by ecall
type Trap struct {
	// Cause is the value of a7 when ecall executed
	Cause uint32
	// PC is the address of the ecall instruction
	PC uint32
	// SNPC is the address of the instruction following the ecall
	SNPC uint32
}

// TrapHandler decides where execution continues after a trap
type TrapHandler interface {
	// HandleTrap updates the hart state for the trap and returns the address
	// execution continues at
	HandleTrap(state *State, trap Trap) uint32
}

// TrapHandlerFunc adapts a function to the TrapHandler interface
type TrapHandlerFunc func(state *State, trap Trap) uint32

func (f TrapHandlerFunc) HandleTrap(state *State, trap Trap) uint32 {
	return f(state, trap)
}

// MachineTrapHandler is the default machine-mode trap entry: mepc receives the
// address following the ecall, mcause the cause, and execution continues at
// mtvec. mret then resumes right after the ecall.
type MachineTrapHandler struct{}

func (MachineTrapHandler) HandleTrap(state *State, trap Trap) uint32 {
	state.CSR.Mepc = trap.SNPC
	state.CSR.Mcause = trap.Cause
	return state.CSR.Mtvec
}
