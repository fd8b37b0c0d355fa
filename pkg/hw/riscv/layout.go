package riscv

import (
	"github.com/Manu343726/rvdb/pkg/utils"
)

// Layout is the instruction encoding format. It determines which bit
// fields are register operands and how the immediate is assembled.
type Layout int

const (
	LayoutR Layout = iota
	LayoutI
	LayoutS
	LayoutB
	LayoutU
	LayoutJ
	// LayoutN is used by system instructions without operands (mret, ebreak)
	LayoutN
)

func (l Layout) String() string {
	switch l {
	case LayoutR:
		return "R"
	case LayoutI:
		return "I"
	case LayoutS:
		return "S"
	case LayoutB:
		return "B"
	case LayoutU:
		return "U"
	case LayoutJ:
		return "J"
	case LayoutN:
		return "N"
	default:
		return "?"
	}
}

// Fields contains the raw operand fields of an instruction word
type Fields struct {
	Rd  uint32
	Rs1 uint32
	Rs2 uint32
	// Imm is the sign extended immediate (or PC-relative offset) as a two's complement word
	Imm uint32
}

// Opcode returns bits [6:0] of an instruction word
func Opcode(word uint32) uint32 {
	return utils.Field(word, 6, 0)
}

// Funct3 returns bits [14:12] of an instruction word
func Funct3(word uint32) uint32 {
	return utils.Field(word, 14, 12)
}

// Funct7 returns bits [31:25] of an instruction word
func Funct7(word uint32) uint32 {
	return utils.Field(word, 31, 25)
}

func immI(word uint32) uint32 {
	return utils.SignExtend(utils.Field(word, 31, 20), 12)
}

func immS(word uint32) uint32 {
	return utils.SignExtend(utils.Field(word, 31, 25)<<5|utils.Field(word, 11, 7), 12)
}

func immB(word uint32) uint32 {
	imm := utils.Bit(word, 31)<<12 |
		utils.Bit(word, 7)<<11 |
		utils.Field(word, 30, 25)<<5 |
		utils.Field(word, 11, 8)<<1
	return utils.SignExtend(imm, 13)
}

func immU(word uint32) uint32 {
	return utils.Field(word, 31, 12) << 12
}

func immJ(word uint32) uint32 {
	imm := utils.Bit(word, 31)<<20 |
		utils.Field(word, 19, 12)<<12 |
		utils.Bit(word, 20)<<11 |
		utils.Field(word, 30, 21)<<1
	return utils.SignExtend(imm, 21)
}

// Extract decodes the operand fields of word under the given layout. Fields
// the layout does not define are left zero.
func Extract(layout Layout, word uint32) Fields {
	rd := utils.Field(word, 11, 7)
	rs1 := utils.Field(word, 19, 15)
	rs2 := utils.Field(word, 24, 20)

	switch layout {
	case LayoutR:
		return Fields{Rd: rd, Rs1: rs1, Rs2: rs2}
	case LayoutI:
		return Fields{Rd: rd, Rs1: rs1, Imm: immI(word)}
	case LayoutS:
		return Fields{Rs1: rs1, Rs2: rs2, Imm: immS(word)}
	case LayoutB:
		return Fields{Rs1: rs1, Rs2: rs2, Imm: immB(word)}
	case LayoutU:
		return Fields{Rd: rd, Imm: immU(word)}
	case LayoutJ:
		return Fields{Rd: rd, Imm: immJ(word)}
	default:
		return Fields{}
	}
}
