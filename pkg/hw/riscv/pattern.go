package riscv

import (
	"fmt"
)

// Pattern is a 32 bit instruction pattern. Bits set in Mask are fixed and
// must equal the corresponding bits of Match.
type Pattern struct {
	Mask  uint32
	Match uint32
}

// ParsePattern parses a pattern string made of '0', '1' and '?' characters,
// most significant bit first. Spaces are ignored so the fields of the layout
// can be separated for readability.
func ParsePattern(str string) (Pattern, error) {
	var p Pattern
	bits := 0

	for i, c := range str {
		switch c {
		case ' ':
			continue
		case '0', '1', '?':
		default:
			return Pattern{}, fmt.Errorf("invalid character '%c' at %v in pattern \"%v\"", c, i, str)
		}

		p.Mask <<= 1
		p.Match <<= 1
		if c != '?' {
			p.Mask |= 1
		}
		if c == '1' {
			p.Match |= 1
		}
		bits++
	}

	if bits != 32 {
		return Pattern{}, fmt.Errorf("pattern \"%v\" has %v bits, expected 32", str, bits)
	}

	return p, nil
}

// MustParsePattern is like ParsePattern but panics on malformed patterns.
// Used to build the static instruction table.
func MustParsePattern(str string) Pattern {
	p, err := ParsePattern(str)
	if err != nil {
		panic(err)
	}
	return p
}

// Matches reports whether word matches the pattern
func (p Pattern) Matches(word uint32) bool {
	return word&p.Mask == p.Match
}
