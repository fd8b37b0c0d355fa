package riscv

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Installs a handler at base+24, raises ecall 11 and halts with the cause
// the handler read back from mcause.
func trapProgram() []uint32 {
	return []uint32{
		Auipc(regT0, 0),
		Addi(regT0, regT0, 24),
		Csrrw(RegZero, CSRMtvec, regT0),
		Addi(RegA7, RegZero, 11),
		Ecall(),
		Ebreak(),
		// handler
		Csrrs(RegA0, CSRMcause, RegZero),
		Mret(),
	}
}

func TestMachine_EcallMretRoundTrip(t *testing.T) {
	m := newTestMachine(t, trapProgram()...)

	require.NoError(t, m.Exec(5))
	assert.Equal(t, DefaultMemoryBase+24, m.State().PC)
	assert.Equal(t, DefaultMemoryBase+20, m.State().CSR.Mepc)
	assert.Equal(t, uint32(11), m.State().CSR.Mcause)

	require.NoError(t, m.Exec(Unlimited))
	assert.Equal(t, StatusEnd, m.Status())
	assert.Equal(t, Halt{PC: DefaultMemoryBase + 20, Code: 11}, m.HaltInfo())
	assert.Equal(t, 1, m.ExitCode())
	assert.Equal(t, uint64(8), m.Steps())
}

func TestMachine_CustomTrapHandler(t *testing.T) {
	var seen []Trap
	handler := TrapHandlerFunc(func(state *State, trap Trap) uint32 {
		seen = append(seen, trap)
		return trap.SNPC
	})

	ram := NewRAM(DefaultMemoryBase, 0x100)
	m := NewMachine(ram, WithTrapHandler(handler), WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, m.LoadImage(wordsToBytes(Addi(RegA7, RegZero, 3), Ecall(), Ebreak())))

	require.NoError(t, m.Exec(Unlimited))
	require.Len(t, seen, 1)
	assert.Equal(t, Trap{Cause: 3, PC: DefaultMemoryBase + 4, SNPC: DefaultMemoryBase + 8}, seen[0])
	assert.Equal(t, StatusEnd, m.Status())
	assert.Equal(t, 0, m.ExitCode())
}

func TestMachine_DefaultImage(t *testing.T) {
	ram := NewRAM(DefaultMemoryBase, 0x1000)
	m := NewMachine(ram, WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, m.LoadImage(nil))

	require.NoError(t, m.Exec(Unlimited))
	assert.Equal(t, StatusEnd, m.Status())
	assert.Equal(t, DefaultMemoryBase+12, m.HaltInfo().PC)
	assert.Equal(t, 0, m.ExitCode())

	scratch, err := ram.Read(DefaultMemoryBase+16, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbe00), scratch)

	assert.ErrorIs(t, m.Exec(1), ErrNotRunnable)
}

func TestMachine_LoadImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	require.NoError(t, os.WriteFile(path, wordsToBytes(Addi(RegA0, RegZero, 0), Ebreak()), 0o644))

	m := NewMachine(NewRAM(DefaultMemoryBase, 0x100), WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, m.LoadImageFile(path))
	require.NoError(t, m.Exec(Unlimited))
	assert.Equal(t, 0, m.ExitCode())

	assert.Error(t, m.LoadImageFile(filepath.Join(t.TempDir(), "missing.bin")))
}

func TestMachine_ImageTooLarge(t *testing.T) {
	m := NewMachine(NewRAM(DefaultMemoryBase, 8), WithLogger(slog.New(slog.DiscardHandler)))
	assert.ErrorIs(t, m.LoadImage(make([]byte, 16)), ErrOutOfBounds)
}

func TestMachine_Quit(t *testing.T) {
	m := newTestMachine(t, Addi(RegA0, RegZero, 1))
	m.Quit()

	assert.Equal(t, StatusQuit, m.Status())
	assert.False(t, m.Runnable())
	assert.Equal(t, 0, m.ExitCode())
}

func TestMachine_Trace(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	m := NewMachine(NewRAM(DefaultMemoryBase, 0x100), WithLogger(logger), WithTrace(true))
	require.NoError(t, m.LoadImage(nil))
	require.NoError(t, m.Exec(Unlimited))

	assert.Contains(t, out.String(), "itrace")
	assert.Contains(t, out.String(), "lbu a0, 16(t0)")
	assert.Contains(t, out.String(), "hit good trap")
}

func TestDisassemble(t *testing.T) {
	tests := []struct {
		word uint32
		want string
	}{
		{Auipc(regT0, 0), "auipc t0, 0x0"},
		{Store(0b000, regT0, RegZero, 16), "sb zero, 16(t0)"},
		{Load(0b100, RegA0, regT0, 16), "lbu a0, 16(t0)"},
		{Ebreak(), "ebreak"},
		{Addi(RegSP, RegSP, -16), "addi sp, sp, -16"},
		{Csrrw(RegZero, CSRMtvec, regT0), "csrrw zero, mtvec, t0"},
		{Jal(RegRA, 16), "jal ra, 0x80000010"},
		{Branch(0b001, RegA0, RegZero, -4), "bne a0, zero, 0x7ffffffc"},
		{Reg(0b000, 0b0100000, RegA0, regA1, regA2), "sub a0, a1, a2"},
		{EncodeI(OpImm, 0b001, Fields{Rd: RegA0, Rs1: RegA0, Imm: 3}), "slli a0, a0, 3"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			ram := NewRAM(DefaultMemoryBase, 4)
			require.NoError(t, ram.Write(DefaultMemoryBase, 4, tt.word))

			decode, err := NewEngine(DefaultInstructions()).Fetch(DefaultMemoryBase, ram)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Disassemble(*decode))
		})
	}

	assert.Equal(t, ".word 0x00000000", Disassemble(Decode{}))
}

func wordsToBytes(words ...uint32) []byte {
	var buf bytes.Buffer
	for _, word := range words {
		buf.Write([]byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)})
	}
	return buf.Bytes()
}
