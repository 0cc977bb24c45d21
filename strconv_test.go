// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"
)

func TestParseBits(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		s   string
		b   Bits
		err string
	}{
		{"0x3c00", bits64(0x3c00), ""},
		{"3C00", bits64(0x3c00), ""},
		{"  0X7fff_ffff  ", bits64(0x7fffffff), ""},
		{"0x7fff_c000_0000_0000_0000", x80(0x7fff, 0xc000000000000000), ""},
		{"0xffffffffffffffffffffffffffffffff", uint128.Max, ""},
		{"0x1_0000_0000_0000_0000_0000_0000_0000_0000", uint128.Zero, "parsing failed: too many digits"},
		{"", uint128.Zero, "empty input"},
		{"0x", uint128.Zero, "empty input"},
		{"0x__", uint128.Zero, "parsing failed: empty input"},
		{"0x3g00", uint128.Zero, "parsing failed: invalid hex digit at pos 4"},
		{" 0x3c0z", uint128.Zero, "parsing failed: invalid hex digit at pos 7"},
		{"-1", uint128.Zero, "parsing failed: invalid hex digit at pos 1"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			b, err := ParseBits(test.s)
			if len(test.err) > 0 {
				a.EqualError(err, test.err)
				return
			}
			a.NoError(err)
			a.Equal(test.b, b)
		})
	}
	a.Panics(func() {
		MustParseBits("xyz")
	})
}

func TestDescriptorParseBits(t *testing.T) {
	a := assert.New(t)
	b, err := Binary16.ParseBits("0xfc00")
	a.NoError(err)
	a.Equal(bits64(0xfc00), b)
	_, err = Binary16.ParseBits("0x1fc00")
	a.EqualError(err, "pattern 0x1fc00 does not fit 16 bits")
	_, err = Binary16.ParseBits("0xzz")
	a.Error(err)
}

func TestFormatBits(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		b     Bits
		width int
		s     string
	}{
		{bits64(0x3c00), 4, "0x3c00"},
		{bits64(0x1), 4, "0x0001"},
		{bits64(0x80), 2, "0x80"},
		{bits64(0x404000000), 9, "0x404000000"},
		{bits64(0xfffffffffffffff), 15, "0xfffffffffffffff"},
		{bits64(0x3ff0000000000000), 16, "0x3ff0000000000000"},
		{x80(0x3fff, 1<<63), 20, "0x3fff8000000000000000"},
		{x80(0, 1), 20, "0x00000000000000000001"},
		{uint128.New(0, 1<<63), 32, "0x80000000000000000000000000000000"},
		{x80(0x1, 0), 4, "0x10000000000000000"},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			a.Equal(test.s, FormatBits(test.b, test.width))
			parsed, err := ParseBits(test.s)
			a.NoError(err)
			a.Equal(test.b, parsed)
		})
	}
	a.Equal("0x3fff8000000000000000", ExtFloat80.FormatBits(x80(0x3fff, 1<<63)))
	a.Equal("0x0", FormatBits(uint128.Zero, 0))
}
