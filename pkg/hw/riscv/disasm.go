package riscv

import (
	"fmt"
	"strings"

	"github.com/Manu343726/rvdb/pkg/utils"
)

func formatHex(value uint32) string {
	return utils.FormatUintHex(uint64(value), 8)
}

func regName(idx uint32) string {
	return RegisterNames[idx&(NumRegisters-1)]
}

// Disassemble formats a decoded instruction in assembler syntax, using ABI
// register names. Branch and jump targets are printed as absolute addresses.
func Disassemble(d Decode) string {
	if d.Instruction.Name == "" {
		return fmt.Sprintf(".word 0x%08x", d.Word)
	}

	name := d.Instruction.Name
	f := d.Fields

	switch d.Instruction.Layout {
	case LayoutR:
		return fmt.Sprintf("%v %v, %v, %v", name, regName(f.Rd), regName(f.Rs1), regName(f.Rs2))
	case LayoutI:
		switch {
		case Opcode(d.Word) == OpLoad, name == "jalr":
			return fmt.Sprintf("%v %v, %v(%v)", name, regName(f.Rd), int32(f.Imm), regName(f.Rs1))
		case Opcode(d.Word) == OpSystem:
			csr, ok := CSRName(d.Word >> 20)
			if !ok {
				csr = fmt.Sprintf("0x%03x", d.Word>>20)
			}
			return fmt.Sprintf("%v %v, %v, %v", name, regName(f.Rd), csr, regName(f.Rs1))
		case strings.HasPrefix(name, "sl") && name != "slti" && name != "sltiu", strings.HasPrefix(name, "sr"):
			return fmt.Sprintf("%v %v, %v, %v", name, regName(f.Rd), regName(f.Rs1), f.Imm&0x1f)
		default:
			return fmt.Sprintf("%v %v, %v, %v", name, regName(f.Rd), regName(f.Rs1), int32(f.Imm))
		}
	case LayoutS:
		return fmt.Sprintf("%v %v, %v(%v)", name, regName(f.Rs2), int32(f.Imm), regName(f.Rs1))
	case LayoutB:
		return fmt.Sprintf("%v %v, %v, %v", name, regName(f.Rs1), regName(f.Rs2), formatHex(d.PC+f.Imm))
	case LayoutU:
		return fmt.Sprintf("%v %v, 0x%x", name, regName(f.Rd), f.Imm>>12)
	case LayoutJ:
		return fmt.Sprintf("%v %v, %v", name, regName(f.Rd), formatHex(d.PC+f.Imm))
	default:
		return name
	}
}
