package riscv

import (
	"github.com/Manu343726/rvdb/pkg/utils"
)

// Major opcodes (bits [6:0])
const (
	OpLoad   uint32 = 0b0000011
	OpImm    uint32 = 0b0010011
	OpAuipc  uint32 = 0b0010111
	OpStore  uint32 = 0b0100011
	OpReg    uint32 = 0b0110011
	OpLui    uint32 = 0b0110111
	OpBranch uint32 = 0b1100011
	OpJalr   uint32 = 0b1100111
	OpJal    uint32 = 0b1101111
	OpSystem uint32 = 0b1110011
)

func encodeBase(opcode uint32, funct3 uint32, f Fields) uint32 {
	var word uint32
	view := utils.CreateBitView(&word)
	view.Write(opcode, 0, 7)
	view.Write(f.Rd, 7, 5)
	view.Write(funct3, 12, 3)
	view.Write(f.Rs1, 15, 5)
	view.Write(f.Rs2, 20, 5)
	return word
}

// EncodeR builds an R layout word
func EncodeR(opcode, funct3, funct7 uint32, f Fields) uint32 {
	word := encodeBase(opcode, funct3, f)
	utils.CreateBitView(&word).Write(funct7, 25, 7)
	return word
}

// EncodeI builds an I layout word. Only the low 12 bits of the immediate are kept.
func EncodeI(opcode, funct3 uint32, f Fields) uint32 {
	f.Rs2 = 0
	word := encodeBase(opcode, funct3, f)
	utils.CreateBitView(&word).Write(f.Imm, 20, 12)
	return word
}

// EncodeS builds an S layout word
func EncodeS(opcode, funct3 uint32, f Fields) uint32 {
	f.Rd = 0
	word := encodeBase(opcode, funct3, f)
	view := utils.CreateBitView(&word)
	view.Write(utils.Field(f.Imm, 4, 0), 7, 5)
	view.Write(utils.Field(f.Imm, 11, 5), 25, 7)
	return word
}

// EncodeB builds a B layout word. Bit 0 of the offset is dropped.
func EncodeB(opcode, funct3 uint32, f Fields) uint32 {
	f.Rd = 0
	word := encodeBase(opcode, funct3, f)
	view := utils.CreateBitView(&word)
	view.Write(utils.Bit(f.Imm, 11), 7, 1)
	view.Write(utils.Field(f.Imm, 4, 1), 8, 4)
	view.Write(utils.Field(f.Imm, 10, 5), 25, 6)
	view.Write(utils.Bit(f.Imm, 12), 31, 1)
	return word
}

// EncodeU builds a U layout word from the upper 20 bits of the immediate
func EncodeU(opcode uint32, f Fields) uint32 {
	word := encodeBase(opcode, 0, Fields{Rd: f.Rd})
	utils.CreateBitView(&word).Write(utils.Field(f.Imm, 31, 12), 12, 20)
	return word
}

// EncodeJ builds a J layout word. Bit 0 of the offset is dropped.
func EncodeJ(opcode uint32, f Fields) uint32 {
	word := encodeBase(opcode, 0, Fields{Rd: f.Rd})
	view := utils.CreateBitView(&word)
	view.Write(utils.Field(f.Imm, 19, 12), 12, 8)
	view.Write(utils.Bit(f.Imm, 11), 20, 1)
	view.Write(utils.Field(f.Imm, 10, 1), 21, 10)
	view.Write(utils.Bit(f.Imm, 20), 31, 1)
	return word
}

// Assembler helpers for the instructions the built-in image and the tests need.

func Lui(rd uint32, imm uint32) uint32 {
	return EncodeU(OpLui, Fields{Rd: rd, Imm: imm})
}

func Auipc(rd uint32, imm uint32) uint32 {
	return EncodeU(OpAuipc, Fields{Rd: rd, Imm: imm})
}

func Addi(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpImm, 0b000, Fields{Rd: rd, Rs1: rs1, Imm: uint32(imm)})
}

func Jal(rd uint32, offset int32) uint32 {
	return EncodeJ(OpJal, Fields{Rd: rd, Imm: uint32(offset)})
}

func Jalr(rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpJalr, 0b000, Fields{Rd: rd, Rs1: rs1, Imm: uint32(imm)})
}

func Branch(funct3, rs1, rs2 uint32, offset int32) uint32 {
	return EncodeB(OpBranch, funct3, Fields{Rs1: rs1, Rs2: rs2, Imm: uint32(offset)})
}

func Load(funct3, rd, rs1 uint32, imm int32) uint32 {
	return EncodeI(OpLoad, funct3, Fields{Rd: rd, Rs1: rs1, Imm: uint32(imm)})
}

func Store(funct3, rs1, rs2 uint32, imm int32) uint32 {
	return EncodeS(OpStore, funct3, Fields{Rs1: rs1, Rs2: rs2, Imm: uint32(imm)})
}

func Reg(funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return EncodeR(OpReg, funct3, funct7, Fields{Rd: rd, Rs1: rs1, Rs2: rs2})
}

func Csrrw(rd, csr, rs1 uint32) uint32 {
	return EncodeI(OpSystem, 0b001, Fields{Rd: rd, Rs1: rs1, Imm: csr})
}

func Csrrs(rd, csr, rs1 uint32) uint32 {
	return EncodeI(OpSystem, 0b010, Fields{Rd: rd, Rs1: rs1, Imm: csr})
}

func Ecall() uint32 {
	return 0x00000073
}

func Ebreak() uint32 {
	return 0x00100073
}

func Mret() uint32 {
	return 0x30200073
}
