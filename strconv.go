// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"errors"
	"fmt"
	"strings"

	"lukechampine.com/uint128"
)

const (
	maxHexDigits = 32
	errBadDigit  = "invalid hex digit"
)

var (
	errEmpty   = errors.New("empty input")
	errTooLong = errors.New("too many digits")
)

type posError struct {
	pos int
	err string
}

func newPosError(err string, pos int) *posError {
	return &posError{err: err, pos: pos}
}

func (pe posError) Error() string {
	return pe.err + fmt.Sprintf(" at pos %d", pe.pos)
}

func addPosErrorOffset(err error, offset int) error {
	var pe *posError
	if !errors.As(err, &pe) { // try to locate error position.
		return err
	}
	pe.pos += offset
	return pe
}

// ParseBits parses a hex bit pattern, like "0x3c00" or "7fff_c000_0000_0000_0000".
// The "0x" prefix and '_' separators are optional.
func ParseBits(s string) (Bits, error) {
	s, offset := prepareString(s)
	if len(s) == 0 {
		return uint128.Zero, errEmpty
	}
	b, err := parseHex(s)
	if err != nil {
		// add what we've trimmed before and add +1 to the offset to start indices from 1.
		return uint128.Zero, fmt.Errorf("parsing failed: %w", addPosErrorOffset(err, offset+1))
	}
	return b, nil
}

// MustParseBits is like ParseBits, but panics on errors.
func MustParseBits(s string) Bits {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseBits parses a hex pattern and checks that it fits the format.
func (d *Descriptor) ParseBits(s string) (Bits, error) {
	b, err := ParseBits(s)
	if err != nil {
		return b, err
	}
	if !b.And(d.mask).Equals(b) {
		return uint128.Zero, fmt.Errorf("pattern %s does not fit %d bits", s, d.f.TotalBits)
	}
	return b, nil
}

// prepareString removes spaces and the hex prefix.
func prepareString(s string) (prepared string, offset int) {
	trimmed := strings.TrimLeft(s, " \t")
	offset = len(s) - len(trimmed)
	s = strings.TrimRight(trimmed, " \t")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		offset += 2
	}
	return s, offset
}

func parseHex(s string) (Bits, error) {
	var result Bits
	var digits int
	for i := 0; i < len(s); i++ {
		c := s[i]
		var v uint64
		switch {
		case c == '_':
			continue
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = uint64(c-'A') + 10
		default:
			return uint128.Zero, newPosError(errBadDigit, i)
		}
		if digits++; digits > maxHexDigits {
			return uint128.Zero, errTooLong
		}
		result = result.Lsh(4).Or64(v)
	}
	if digits == 0 {
		return uint128.Zero, errEmpty
	}
	return result, nil
}

// FormatBits returns b as "0x" followed by exactly 'width' lowercase hex digits, or
// more if b does not fit. Harness reports and fpcheck print patterns in this form.
func FormatBits(b Bits, width int) string {
	if b.Hi == 0 && width <= 16 {
		return fmt.Sprintf("0x%0*x", width, b.Lo)
	}
	return fmt.Sprintf("0x%0*x%016x", max(width-16, 0), b.Hi, b.Lo)
}

// FormatBits returns b as a hex string of the format's width.
func (d *Descriptor) FormatBits(b Bits) string {
	return FormatBits(b, d.HexDigits())
}
