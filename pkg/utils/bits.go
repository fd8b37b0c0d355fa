package utils

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

const BitsPerByte = 8

// Returns the size in bits of n bytes
func Bits(bytes int) int {
	return bytes * BitsPerByte
}

// Returns the size in bits of values of a type
func SizeofBits[T any]() int {
	var val T
	return Bits(int(unsafe.Sizeof(val)))
}

// Returns an all ones bitmask of n bits of the given unsigned integer type
func AllOnes[T constraints.Unsigned](bits int) T {
	if bits >= SizeofBits[T]() {
		return ^T(0)
	}
	return (T(1) << bits) - T(1)
}

// Extracts the inclusive bit range [hi:lo] of a value, right aligned
func Field[T constraints.Unsigned](value T, hi int, lo int) T {
	return (value >> lo) & AllOnes[T](hi-lo+1)
}

// Extracts a single bit
func Bit[T constraints.Unsigned](value T, bit int) T {
	return Field(value, bit, bit)
}

// Sign extends the low width bits of value to the full size of T
func SignExtend[T constraints.Unsigned](value T, width int) T {
	shift := SizeofBits[T]() - width
	if shift <= 0 {
		return value
	}
	mask := AllOnes[T](width)
	value &= mask
	if value>>(width-1)&1 != 0 {
		value |= ^mask
	}
	return value
}

// Implements a read/write view over an unsigned interger, allowing manipullating individual bits easily
type BitView[T constraints.Unsigned] struct {
	Bits *T
}

// Returns the viewed unsigned int value
func (v BitView[T]) Value() T {
	return *v.Bits
}

// Extracts a range of bits given a first bit and a width
func (v BitView[T]) Read(bit int, width int) T {
	return (v.Value() >> bit) & AllOnes[T](width)
}

// Copies a value into a range of bits, given the start and width of the range.
// All most significant bits of the value not fitting into the destination range are ignored.
func (v BitView[T]) Write(value T, bit int, width int) {
	mask := AllOnes[T](width)
	*v.Bits = (*v.Bits &^ (mask << bit)) | ((value & mask) << bit)
}

// Creates a bit view out of an unsigned int
func CreateBitView[T constraints.Unsigned](value *T) BitView[T] {
	return BitView[T]{
		Bits: value,
	}
}
