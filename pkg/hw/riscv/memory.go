package riscv

import (
	"encoding/binary"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// Memory is the physical memory bus the engine loads from and stores to.
// Width is the access size in bytes (1, 2 or 4); narrower reads are zero extended.
type Memory interface {
	Read(address uint32, width int) (uint32, error)
	Write(address uint32, width int, value uint32) error
}

// DefaultMemoryBase is the physical address RAM is mapped at
const DefaultMemoryBase uint32 = 0x80000000

// DefaultMemorySize is the default amount of RAM (128MB)
const DefaultMemorySize uint32 = 0x8000000

// RAM is a flat little-endian physical memory mapped at a base address
type RAM struct {
	base   uint32
	buffer []byte
}

// NewRAM creates size bytes of zeroed memory mapped at base
func NewRAM(base uint32, size uint32) *RAM {
	return &RAM{
		base:   base,
		buffer: make([]byte, size),
	}
}

// Base returns the first mapped address
func (m *RAM) Base() uint32 {
	return m.base
}

// Size returns the amount of mapped bytes
func (m *RAM) Size() uint32 {
	return uint32(len(m.buffer))
}

// Contains reports whether [address, address+width) is mapped
func (m *RAM) Contains(address uint32, width int) bool {
	if address < m.base {
		return false
	}
	offset := uint64(address - m.base)
	return offset+uint64(width) <= uint64(len(m.buffer))
}

func (m *RAM) slice(address uint32, width int) ([]byte, error) {
	switch width {
	case 1, 2, 4:
	default:
		return nil, utils.MakeError(ErrBadWidth, "%v bytes", width)
	}
	if !m.Contains(address, width) {
		return nil, utils.MakeError(ErrOutOfBounds, "address 0x%08x (width %v) is outside [0x%08x, 0x%08x)", address, width, m.base, uint64(m.base)+uint64(len(m.buffer)))
	}
	offset := address - m.base
	return m.buffer[offset : offset+uint32(width)], nil
}

func (m *RAM) Read(address uint32, width int) (uint32, error) {
	bytes, err := m.slice(address, width)
	if err != nil {
		return 0, err
	}

	switch width {
	case 1:
		return uint32(bytes[0]), nil
	case 2:
		return uint32(binary.LittleEndian.Uint16(bytes)), nil
	default:
		return binary.LittleEndian.Uint32(bytes), nil
	}
}

func (m *RAM) Write(address uint32, width int, value uint32) error {
	bytes, err := m.slice(address, width)
	if err != nil {
		return err
	}

	switch width {
	case 1:
		bytes[0] = byte(value)
	case 2:
		binary.LittleEndian.PutUint16(bytes, uint16(value))
	default:
		binary.LittleEndian.PutUint32(bytes, value)
	}
	return nil
}

// Load copies an image into memory starting at address
func (m *RAM) Load(image []byte, address uint32) error {
	if len(image) == 0 {
		return nil
	}
	if !m.Contains(address, 1) || !m.Contains(address+uint32(len(image))-1, 1) {
		return utils.MakeError(ErrOutOfBounds, "image of %v bytes does not fit at 0x%08x", len(image), address)
	}
	copy(m.buffer[address-m.base:], image)
	return nil
}
