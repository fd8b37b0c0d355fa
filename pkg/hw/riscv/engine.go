package riscv

import (
	"slices"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// InstructionBytes is the size of an encoded instruction
const InstructionBytes = 4

// Decode holds the per-instruction decode context
type Decode struct {
	// Address of the instruction
	PC uint32
	// Static next PC (PC + 4)
	SNPC uint32
	// Dynamic next PC, updated by jumps and taken branches
	DNPC uint32
	// Raw instruction word
	Word uint32
	// Matched table entry
	Instruction Instruction
	// Operand fields extracted with the entry's layout
	Fields Fields
}

// StepKind identifies the outcome of executing one instruction
type StepKind int

const (
	// The instruction retired normally, execution continues at NextPC
	StepContinue StepKind = iota
	// The instruction raised an environment call trap
	StepTrap
	// The instruction requested the machine to stop (ebreak)
	StepHalt
)

func (k StepKind) String() string {
	switch k {
	case StepContinue:
		return "continue"
	case StepTrap:
		return "trap"
	case StepHalt:
		return "halt"
	default:
		return "unknown"
	}
}

// Halt describes a guest requested stop
type Halt struct {
	PC   uint32
	Code uint32
}

// StepResult contains the result of executing a single instruction. Only the
// field matching Kind is meaningful.
type StepResult struct {
	Kind   StepKind
	NextPC uint32
	Trap   Trap
	Halt   Halt
	// Decode is the decode context of the executed instruction, for tracing
	Decode Decode
}

// Engine fetches, decodes and executes instructions. Its decode table is fixed
// at construction and it keeps no hart state, so one engine can drive any
// number of harts.
type Engine struct {
	table []Instruction
}

// NewEngine creates an engine decoding with a private copy of table
func NewEngine(table []Instruction) *Engine {
	return &Engine{table: slices.Clone(table)}
}

// Lookup returns the first table entry matching word
func (e *Engine) Lookup(word uint32) (Instruction, bool) {
	for _, instruction := range e.table {
		if instruction.Pattern.Matches(word) {
			return instruction, true
		}
	}
	return Instruction{}, false
}

// Fetch reads the instruction word at pc and matches it against the decode table
func (e *Engine) Fetch(pc uint32, memory Memory) (*Decode, error) {
	word, err := memory.Read(pc, InstructionBytes)
	if err != nil {
		return nil, err
	}

	instruction, ok := e.Lookup(word)
	if !ok {
		return nil, &DecodeError{PC: pc, Word: word}
	}

	return &Decode{
		PC:          pc,
		SNPC:        pc + InstructionBytes,
		DNPC:        pc + InstructionBytes,
		Word:        word,
		Instruction: instruction,
		Fields:      Extract(instruction.Layout, word),
	}, nil
}

// Step executes the instruction at state.PC.
//
// On StepContinue the PC is advanced to the dynamic next PC. On StepTrap and
// StepHalt the PC is left at the instruction, it is up to the caller to
// dispatch the trap or stop. Register x0 reads as zero after every step.
func (e *Engine) Step(state *State, memory Memory) (StepResult, error) {
	decode, err := e.Fetch(state.PC, memory)
	if err != nil {
		return StepResult{}, err
	}

	ctx := ExecuteContext{
		State:  state,
		Memory: memory,
		Decode: decode,
	}

	err = decode.Instruction.Execute(&ctx)
	state.GPR[RegZero] = 0
	if err != nil {
		return StepResult{Decode: *decode}, utils.MakeError(err, "executing %v at pc 0x%08x", decode.Instruction.Name, decode.PC)
	}

	result := StepResult{Decode: *decode}
	switch {
	case ctx.halt != nil:
		result.Kind = StepHalt
		result.Halt = *ctx.halt
	case ctx.trap != nil:
		result.Kind = StepTrap
		result.Trap = *ctx.trap
	default:
		result.Kind = StepContinue
		result.NextPC = decode.DNPC
		state.PC = decode.DNPC
	}

	return result, nil
}
