package riscv

import (
	"github.com/Manu343726/rvdb/pkg/utils"
)

// CSR addresses of the control and status registers the emulator models
const (
	CSRMstatus uint32 = 0x300
	CSRMtvec   uint32 = 0x305
	CSRMepc    uint32 = 0x341
	CSRMcause  uint32 = 0x342
)

type csrDescriptor struct {
	name string
	ptr  func(*CSRs) *uint32
}

var csrTable = map[uint32]csrDescriptor{
	CSRMstatus: {"mstatus", func(c *CSRs) *uint32 { return &c.Mstatus }},
	CSRMtvec:   {"mtvec", func(c *CSRs) *uint32 { return &c.Mtvec }},
	CSRMepc:    {"mepc", func(c *CSRs) *uint32 { return &c.Mepc }},
	CSRMcause:  {"mcause", func(c *CSRs) *uint32 { return &c.Mcause }},
}

// CSRName returns the name of a modelled CSR address
func CSRName(addr uint32) (string, bool) {
	desc, ok := csrTable[addr]
	return desc.name, ok
}

// csr resolves a CSR address to its storage. Unmapped addresses are an error,
// they never alias a general purpose register.
func (s *State) csr(addr uint32) (*uint32, error) {
	desc, ok := csrTable[addr]
	if !ok {
		return nil, utils.MakeError(ErrUnsupportedCSR, "address 0x%03x", addr)
	}
	return desc.ptr(&s.CSR), nil
}

// ReadModifyWriteCSR implements csrrw (set=false) and csrrs (set=true): the
// old CSR value is returned, the new one is either src or old|src.
func (s *State) ReadModifyWriteCSR(addr uint32, src uint32, set bool) (uint32, error) {
	ptr, err := s.csr(addr)
	if err != nil {
		return 0, err
	}

	old := *ptr
	if set {
		*ptr = old | src
	} else {
		*ptr = src
	}
	return old, nil
}
