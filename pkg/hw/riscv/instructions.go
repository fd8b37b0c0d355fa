package riscv

import (
	"math"
	"slices"
)

// ExecuteContext gives an instruction access to the hart while it executes
type ExecuteContext struct {
	State  *State
	Memory Memory
	Decode *Decode

	trap *Trap
	halt *Halt
}

// Src1 returns the value of the rs1 operand
func (c *ExecuteContext) Src1() uint32 {
	return c.State.GetRegister(c.Decode.Fields.Rs1)
}

// Src2 returns the value of the rs2 operand
func (c *ExecuteContext) Src2() uint32 {
	return c.State.GetRegister(c.Decode.Fields.Rs2)
}

// Imm returns the sign extended immediate
func (c *ExecuteContext) Imm() uint32 {
	return c.Decode.Fields.Imm
}

// SetRd writes the destination register
func (c *ExecuteContext) SetRd(value uint32) {
	c.State.SetRegister(c.Decode.Fields.Rd, value)
}

// Jump sets the address of the next instruction
func (c *ExecuteContext) Jump(target uint32) {
	c.Decode.DNPC = target
}

// Raise requests an environment call trap with the given cause
func (c *ExecuteContext) Raise(cause uint32) {
	c.trap = &Trap{Cause: cause, PC: c.Decode.PC, SNPC: c.Decode.SNPC}
}

// Halt stops the machine with the given exit code
func (c *ExecuteContext) Halt(code uint32) {
	c.halt = &Halt{PC: c.Decode.PC, Code: code}
}

// ExecuteFunc is the signature for instruction execution functions
type ExecuteFunc func(ctx *ExecuteContext) error

// Instruction describes one entry of the decode table
type Instruction struct {
	Name    string
	Pattern Pattern
	Layout  Layout
	Execute ExecuteFunc
}

func inst(name string, pattern string, layout Layout, execute ExecuteFunc) Instruction {
	return Instruction{
		Name:    name,
		Pattern: MustParsePattern(pattern),
		Layout:  layout,
		Execute: execute,
	}
}

func load(width int, signed bool) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		value, err := ctx.Memory.Read(ctx.Src1()+ctx.Imm(), width)
		if err != nil {
			return err
		}
		if signed {
			value = signExtendWidth(value, width)
		}
		ctx.SetRd(value)
		return nil
	}
}

func store(width int) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		return ctx.Memory.Write(ctx.Src1()+ctx.Imm(), width, ctx.Src2())
	}
}

func branch(cond func(a, b uint32) bool) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		if cond(ctx.Src1(), ctx.Src2()) {
			ctx.Jump(ctx.Decode.PC + ctx.Imm())
		}
		return nil
	}
}

func aluImm(op func(a, imm uint32) uint32) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		ctx.SetRd(op(ctx.Src1(), ctx.Imm()))
		return nil
	}
}

func aluReg(op func(a, b uint32) uint32) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		ctx.SetRd(op(ctx.Src1(), ctx.Src2()))
		return nil
	}
}

func csrOp(set bool) ExecuteFunc {
	return func(ctx *ExecuteContext) error {
		old, err := ctx.State.ReadModifyWriteCSR(ctx.Decode.Word>>20, ctx.Src1(), set)
		if err != nil {
			return err
		}
		ctx.SetRd(old)
		return nil
	}
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func signExtendWidth(value uint32, width int) uint32 {
	switch width {
	case 1:
		return uint32(int32(int8(value)))
	case 2:
		return uint32(int32(int16(value)))
	default:
		return value
	}
}

func div(a, b uint32) uint32 {
	switch {
	case b == 0:
		return math.MaxUint32
	case int32(a) == math.MinInt32 && int32(b) == -1:
		return a
	default:
		return uint32(int32(a) / int32(b))
	}
}

func divu(a, b uint32) uint32 {
	if b == 0 {
		return math.MaxUint32
	}
	return a / b
}

func rem(a, b uint32) uint32 {
	switch {
	case b == 0:
		return a
	case int32(a) == math.MinInt32 && int32(b) == -1:
		return 0
	default:
		return uint32(int32(a) % int32(b))
	}
}

func remu(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

func mulh(a, b uint32) uint32 {
	return uint32(uint64(int64(int32(a))*int64(int32(b))) >> 32)
}

func mulhu(a, b uint32) uint32 {
	return uint32((uint64(a) * uint64(b)) >> 32)
}

func mulhsu(a, b uint32) uint32 {
	return uint32(uint64(int64(int32(a))*int64(b)) >> 32)
}

// Patterns are tried in order and the first match wins, so more specific
// encodings must come before the general ones sharing their opcode.
var defaultInstructions = []Instruction{
	inst("lui", "??????? ????? ????? ??? ????? 01101 11", LayoutU, func(ctx *ExecuteContext) error {
		ctx.SetRd(ctx.Imm())
		return nil
	}),
	inst("lw", "??????? ????? ????? 010 ????? 00000 11", LayoutI, load(4, false)),
	inst("sw", "??????? ????? ????? 010 ????? 01000 11", LayoutS, store(4)),
	inst("addi", "??????? ????? ????? 000 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a + imm })),
	inst("auipc", "??????? ????? ????? ??? ????? 00101 11", LayoutU, func(ctx *ExecuteContext) error {
		ctx.SetRd(ctx.Decode.PC + ctx.Imm())
		return nil
	}),
	inst("jal", "??????? ????? ????? ??? ????? 11011 11", LayoutJ, func(ctx *ExecuteContext) error {
		ctx.SetRd(ctx.Decode.SNPC)
		ctx.Jump(ctx.Decode.PC + ctx.Imm())
		return nil
	}),
	inst("jalr", "??????? ????? ????? 000 ????? 11001 11", LayoutI, func(ctx *ExecuteContext) error {
		target := (ctx.Src1() + ctx.Imm()) &^ 1
		ctx.SetRd(ctx.Decode.SNPC)
		ctx.Jump(target)
		return nil
	}),
	inst("bgeu", "??????? ????? ????? 111 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return a >= b })),
	inst("bge", "??????? ????? ????? 101 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return int32(a) >= int32(b) })),
	inst("blt", "??????? ????? ????? 100 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return int32(a) < int32(b) })),
	inst("bltu", "??????? ????? ????? 110 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return a < b })),
	inst("beq", "??????? ????? ????? 000 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return a == b })),
	inst("bne", "??????? ????? ????? 001 ????? 11000 11", LayoutB, branch(func(a, b uint32) bool { return a != b })),
	inst("slli", "0000000 ????? ????? 001 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a << (imm & 0x1f) })),
	inst("sltiu", "??????? ????? ????? 011 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return boolWord(a < imm) })),
	inst("slti", "??????? ????? ????? 010 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return boolWord(int32(a) < int32(imm)) })),
	inst("andi", "??????? ????? ????? 111 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a & imm })),
	inst("lbu", "??????? ????? ????? 100 ????? 00000 11", LayoutI, load(1, false)),
	inst("lhu", "??????? ????? ????? 101 ????? 00000 11", LayoutI, load(2, false)),
	inst("lh", "??????? ????? ????? 001 ????? 00000 11", LayoutI, load(2, true)),
	inst("lb", "??????? ????? ????? 000 ????? 00000 11", LayoutI, load(1, true)),
	inst("xori", "??????? ????? ????? 100 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a ^ imm })),
	inst("ori", "??????? ????? ????? 110 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a | imm })),
	inst("srai", "0100000 ????? ????? 101 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return uint32(int32(a) >> (imm & 0x1f)) })),
	inst("srli", "0000000 ????? ????? 101 ????? 00100 11", LayoutI, aluImm(func(a, imm uint32) uint32 { return a >> (imm & 0x1f) })),
	inst("csrrw", "??????? ????? ????? 001 ????? 11100 11", LayoutI, csrOp(false)),
	inst("csrrs", "??????? ????? ????? 010 ????? 11100 11", LayoutI, csrOp(true)),
	inst("ecall", "0000000 00000 00000 000 00000 11100 11", LayoutN, func(ctx *ExecuteContext) error {
		ctx.Raise(ctx.State.GetRegister(RegA7))
		return nil
	}),
	inst("mret", "0011000 00010 00000 000 00000 11100 11", LayoutN, func(ctx *ExecuteContext) error {
		ctx.Jump(ctx.State.CSR.Mepc)
		return nil
	}),
	inst("add", "0000000 ????? ????? 000 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a + b })),
	inst("sub", "0100000 ????? ????? 000 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a - b })),
	inst("mul", "0000001 ????? ????? 000 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a * b })),
	inst("mulhu", "0000001 ????? ????? 011 ????? 01100 11", LayoutR, aluReg(mulhu)),
	inst("mulh", "0000001 ????? ????? 001 ????? 01100 11", LayoutR, aluReg(mulh)),
	inst("mulhsu", "0000001 ????? ????? 010 ????? 01100 11", LayoutR, aluReg(mulhsu)),
	inst("div", "0000001 ????? ????? 100 ????? 01100 11", LayoutR, aluReg(div)),
	inst("divu", "0000001 ????? ????? 101 ????? 01100 11", LayoutR, aluReg(divu)),
	inst("rem", "0000001 ????? ????? 110 ????? 01100 11", LayoutR, aluReg(rem)),
	inst("remu", "0000001 ????? ????? 111 ????? 01100 11", LayoutR, aluReg(remu)),
	inst("sll", "0000000 ????? ????? 001 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a << (b & 0x1f) })),
	inst("sra", "0100000 ????? ????? 101 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return uint32(int32(a) >> (b & 0x1f)) })),
	inst("srl", "0000000 ????? ????? 101 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a >> (b & 0x1f) })),
	inst("and", "0000000 ????? ????? 111 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a & b })),
	inst("sltu", "0000000 ????? ????? 011 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return boolWord(a < b) })),
	inst("slt", "0000000 ????? ????? 010 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return boolWord(int32(a) < int32(b)) })),
	inst("or", "0000000 ????? ????? 110 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a | b })),
	inst("xor", "0000000 ????? ????? 100 ????? 01100 11", LayoutR, aluReg(func(a, b uint32) uint32 { return a ^ b })),
	inst("sb", "??????? ????? ????? 000 ????? 01000 11", LayoutS, store(1)),
	inst("sh", "??????? ????? ????? 001 ????? 01000 11", LayoutS, store(2)),
	inst("ebreak", "0000000 00001 00000 000 00000 11100 11", LayoutN, func(ctx *ExecuteContext) error {
		ctx.Halt(ctx.State.GetRegister(RegA0))
		return nil
	}),
}

// DefaultInstructions returns a copy of the built-in decode table
func DefaultInstructions() []Instruction {
	return slices.Clone(defaultInstructions)
}
