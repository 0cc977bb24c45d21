// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package binfmt implements a generic model of binary floating-point formats.
//
// A format is described by its bit geometry (Format) and its encoding rules
// (Encoding). A validated pair of them, a Descriptor, decodes any bit pattern
// into its exact value, and rounds any exact value back into a bit pattern,
// using round-to-nearest, ties-to-even.
//
//   79  78            64 63                                                           0
//   __|________________|_______________________________________________________________
//   s  eeeeeeeeeeeeeee  jmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmmm
//
// The same code handles IEEE 754 formats, formats with an explicit leading
// significand bit (like the x87 80-bit format above), two's and ones' complement
// formats, and formats without infinities or NaNs.
package binfmt

import (
	"fmt"
	"math"
)

// SignEncoding defines how negative values are represented.
type SignEncoding int

const (
	// SignMagnitude stores a sign bit next to the magnitude fields.
	SignMagnitude SignEncoding = iota
	// TwosComplement stores negative values as the two's complement negation of the whole word.
	TwosComplement
	// OnesComplement stores negative values with inverted exponent and mantissa fields.
	OnesComplement
)

// NegativeZero defines whether a distinct negative zero exists.
type NegativeZero int

const (
	NegativeZeroExists NegativeZero = iota
	NegativeZeroAbsent
)

// NaNEncoding defines how not-a-number values are represented.
type NaNEncoding int

const (
	// NaNReservedExponent is IEEE 754: all-ones exponent, non-zero mantissa.
	NaNReservedExponent NaNEncoding = iota
	// NaNTrapValue is the most negative integer: only the top bit set.
	NaNTrapValue
	// NaNNegativeZeroPattern reuses the negative zero pattern: sign set, exponent and mantissa zero.
	NaNNegativeZeroPattern
	// NaNNone means the format has no NaN.
	NaNNone
)

// InfEncoding defines how infinities are represented.
type InfEncoding int

const (
	// InfReservedExponent is IEEE 754: all-ones exponent, zero mantissa.
	InfReservedExponent InfEncoding = iota
	// InfIntegerExtremes uses the largest positive integer and its negation.
	InfIntegerExtremes
	// InfNone means the format has no infinities.
	InfNone
)

// SubnormalMode defines how subnormal values are treated by arithmetic.
// Decoding and rounding always follow the format formulas, the mode is applied
// by arithmetic backends.
type SubnormalMode int

const (
	// SubnormalFull is gradual underflow.
	SubnormalFull SubnormalMode = iota
	// SubnormalFlushInput treats subnormal operands as zeros.
	SubnormalFlushInput
	// SubnormalFlushOutput turns subnormal results into zeros.
	SubnormalFlushOutput
	// SubnormalFlushBoth flushes operands and results.
	SubnormalFlushBoth
	// SubnormalNone means the format has no subnormals, results are flushed.
	SubnormalNone
)

// AutoBias makes the exponent bias derived from the exponent width:
// 2^(E-1) for two's complement formats, 2^(E-1)-1 otherwise.
const AutoBias = math.MinInt32

const (
	maxStorageBits = 128
	maxExpBits     = 30
)

// Format describes the bit geometry of a format.
// It says nothing about the meaning of the fields, that's what Encoding does.
type Format struct {
	SignBits   int
	SignOffset int
	ExpBits    int
	ExpOffset  int
	MantBits   int
	MantOffset int
	TotalBits  int
}

// Layout returns the standard [S][E][M] geometry with the sign in the highest bit.
func Layout(expBits, mantBits int) Format {
	return Format{
		SignBits:   1,
		SignOffset: expBits + mantBits,
		ExpBits:    expBits,
		ExpOffset:  mantBits,
		MantBits:   mantBits,
		MantOffset: 0,
		TotalBits:  1 + expBits + mantBits,
	}
}

// PaddingBits returns the number of bits not used by any field.
func (f Format) PaddingBits() int {
	return f.TotalBits - f.SignBits - f.ExpBits - f.MantBits
}

// Validate checks that all fields fit the storage word.
func (f Format) Validate() error {
	switch {
	case f.SignBits < 0 || f.SignBits > 1:
		return fmt.Errorf("sign field is %d bits, must be 0 or 1", f.SignBits)
	case f.ExpBits < 1:
		return fmt.Errorf("exponent field must be at least 1 bit")
	case f.ExpBits > maxExpBits:
		return fmt.Errorf("exponent field is %d bits, max is %d", f.ExpBits, maxExpBits)
	case f.MantBits < 1:
		return fmt.Errorf("mantissa field must be at least 1 bit")
	case f.TotalBits > maxStorageBits:
		return fmt.Errorf("total width is %d bits, max is %d", f.TotalBits, maxStorageBits)
	case f.TotalBits < f.SignBits+f.ExpBits+f.MantBits:
		return fmt.Errorf("total width %d does not accommodate all fields", f.TotalBits)
	case f.SignOffset < 0 || f.ExpOffset < 0 || f.MantOffset < 0:
		return fmt.Errorf("field offsets must be non-negative")
	case f.SignBits > 0 && f.SignOffset+f.SignBits > f.TotalBits:
		return fmt.Errorf("sign field does not fit in %d bits", f.TotalBits)
	case f.ExpOffset+f.ExpBits > f.TotalBits:
		return fmt.Errorf("exponent field does not fit in %d bits", f.TotalBits)
	case f.MantOffset+f.MantBits > f.TotalBits:
		return fmt.Errorf("mantissa field does not fit in %d bits", f.TotalBits)
	}
	if overlaps(f.ExpOffset, f.ExpBits, f.MantOffset, f.MantBits) ||
		overlaps(f.SignOffset, f.SignBits, f.ExpOffset, f.ExpBits) ||
		overlaps(f.SignOffset, f.SignBits, f.MantOffset, f.MantBits) {
		return fmt.Errorf("fields overlap")
	}
	return nil
}

func overlaps(off1, w1, off2, w2 int) bool {
	if w1 == 0 || w2 == 0 {
		return false
	}
	return off1 < off2+w2 && off2 < off1+w1
}

// Encoding describes the meaning of the fields.
type Encoding struct {
	Sign         SignEncoding
	ImplicitBit  bool
	Bias         int
	NegativeZero NegativeZero
	NaN          NaNEncoding
	Inf          InfEncoding
	Subnormals   SubnormalMode
}

var (
	// IEEE754 is the IEEE 754 binary interchange encoding.
	IEEE754 = Encoding{
		Sign:         SignMagnitude,
		ImplicitBit:  true,
		Bias:         AutoBias,
		NegativeZero: NegativeZeroExists,
		NaN:          NaNReservedExponent,
		Inf:          InfReservedExponent,
		Subnormals:   SubnormalFull,
	}
	// X87Extended is IEEE 754 with an explicit leading significand bit.
	X87Extended = Encoding{
		Sign:         SignMagnitude,
		ImplicitBit:  false,
		Bias:         AutoBias,
		NegativeZero: NegativeZeroExists,
		NaN:          NaNReservedExponent,
		Inf:          InfReservedExponent,
		Subnormals:   SubnormalFull,
	}
	// RbjTwosComplement is a two's complement float with a trap value NaN
	// and integer extreme infinities.
	RbjTwosComplement = Encoding{
		Sign:         TwosComplement,
		ImplicitBit:  true,
		Bias:         AutoBias,
		NegativeZero: NegativeZeroAbsent,
		NaN:          NaNTrapValue,
		Inf:          InfIntegerExtremes,
		Subnormals:   SubnormalFull,
	}
	// PDP10 is the two's complement encoding of the PDP-10.
	PDP10 = Encoding{
		Sign:         TwosComplement,
		ImplicitBit:  false,
		Bias:         128,
		NegativeZero: NegativeZeroAbsent,
		NaN:          NaNNone,
		Inf:          InfNone,
		Subnormals:   SubnormalNone,
	}
	// CDC6600 is the ones' complement encoding of the CDC 6600.
	CDC6600 = Encoding{
		Sign:         OnesComplement,
		ImplicitBit:  false,
		Bias:         1024,
		NegativeZero: NegativeZeroExists,
		NaN:          NaNNone,
		Inf:          InfNone,
		Subnormals:   SubnormalNone,
	}
	// E4M3FNUZ is the 8-bit ML encoding with the NaN in place of the negative zero.
	E4M3FNUZ = Encoding{
		Sign:         SignMagnitude,
		ImplicitBit:  true,
		Bias:         8,
		NegativeZero: NegativeZeroAbsent,
		NaN:          NaNNegativeZeroPattern,
		Inf:          InfNone,
		Subnormals:   SubnormalFull,
	}
	// Relaxed has no NaNs, no infinities, and no subnormals.
	Relaxed = Encoding{
		Sign:         SignMagnitude,
		ImplicitBit:  true,
		Bias:         AutoBias,
		NegativeZero: NegativeZeroAbsent,
		NaN:          NaNNone,
		Inf:          InfNone,
		Subnormals:   SubnormalFlushBoth,
	}
	// GPUStyle is IEEE 754 with subnormals flushed on input and output.
	GPUStyle = Encoding{
		Sign:         SignMagnitude,
		ImplicitBit:  true,
		Bias:         AutoBias,
		NegativeZero: NegativeZeroExists,
		NaN:          NaNReservedExponent,
		Inf:          InfReservedExponent,
		Subnormals:   SubnormalFlushBoth,
	}
)

// Validate checks the consistency of the encoding rules.
func (e Encoding) Validate() error {
	if e.Sign == TwosComplement {
		if e.NegativeZero != NegativeZeroAbsent {
			return fmt.Errorf("two's complement has no negative zero")
		}
		if e.NaN != NaNTrapValue && e.NaN != NaNNone {
			return fmt.Errorf("two's complement NaN must be a trap value or none")
		}
		if e.Inf != InfIntegerExtremes && e.Inf != InfNone {
			return fmt.Errorf("two's complement infinities must be integer extremes or none")
		}
	}
	if e.Sign == OnesComplement && e.NegativeZero != NegativeZeroExists {
		return fmt.Errorf("ones' complement always has a negative zero")
	}
	if e.NaN == NaNNegativeZeroPattern && e.NegativeZero != NegativeZeroAbsent {
		return fmt.Errorf("negative zero pattern NaN requires no negative zero")
	}
	if e.Inf == InfIntegerExtremes && e.Sign != TwosComplement {
		return fmt.Errorf("integer extreme infinities require two's complement")
	}
	if e.Inf == InfReservedExponent && e.NaN != NaNReservedExponent {
		return fmt.Errorf("reserved exponent infinities require reserved exponent NaN")
	}
	return nil
}

func (s SignEncoding) String() string {
	switch s {
	case SignMagnitude:
		return "sign-magnitude"
	case TwosComplement:
		return "twos-complement"
	case OnesComplement:
		return "ones-complement"
	default:
		return fmt.Sprintf("SignEncoding(%d)", int(s))
	}
}

func (n NaNEncoding) String() string {
	switch n {
	case NaNReservedExponent:
		return "reserved-exponent"
	case NaNTrapValue:
		return "trap-value"
	case NaNNegativeZeroPattern:
		return "negative-zero-pattern"
	case NaNNone:
		return "none"
	default:
		return fmt.Sprintf("NaNEncoding(%d)", int(n))
	}
}

func (i InfEncoding) String() string {
	switch i {
	case InfReservedExponent:
		return "reserved-exponent"
	case InfIntegerExtremes:
		return "integer-extremes"
	case InfNone:
		return "none"
	default:
		return fmt.Sprintf("InfEncoding(%d)", int(i))
	}
}

func (m SubnormalMode) String() string {
	switch m {
	case SubnormalFull:
		return "full"
	case SubnormalFlushInput:
		return "flush-input"
	case SubnormalFlushOutput:
		return "flush-output"
	case SubnormalFlushBoth:
		return "flush-both"
	case SubnormalNone:
		return "none"
	default:
		return fmt.Sprintf("SubnormalMode(%d)", int(m))
	}
}
