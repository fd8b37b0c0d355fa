package riscv

import (
	"errors"
	"fmt"
)

var (
	ErrDecode         = errors.New("decode error")
	ErrUnsupportedCSR = errors.New("unsupported CSR")
	ErrOutOfBounds    = errors.New("physical memory access out of bounds")
	ErrBadWidth       = errors.New("bad memory access width")
	ErrNotRunnable    = errors.New("machine is not runnable")
)

// DecodeError reports a word that matched no instruction pattern
type DecodeError struct {
	PC   uint32
	Word uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: invalid instruction 0x%08x at pc 0x%08x", ErrDecode, e.Word, e.PC)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}
