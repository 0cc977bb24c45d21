// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"fmt"

	"lukechampine.com/uint128"

	"github.com/avdva/binfmt/internal/bitfield"
)

// Bits is a bit pattern of any format up to 128 bits wide.
type Bits = uint128.Uint128

// ValidationError is returned by New for inconsistent formats.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid format %q: %s", e.Name, e.Reason)
}

// Class is the category of a bit pattern.
type Class uint8

const (
	ClassZero Class = iota
	ClassSubnormal
	ClassNormal
	ClassInf
	ClassNaN
)

func (c Class) String() string {
	switch c {
	case ClassZero:
		return "zero"
	case ClassSubnormal:
		return "subnormal"
	case ClassNormal:
		return "normal"
	case ClassInf:
		return "inf"
	case ClassNaN:
		return "nan"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Descriptor is a validated format with its encoding rules.
// It is immutable and safe for concurrent use.
type Descriptor struct {
	name string
	f    Format
	enc  Encoding

	bias        int
	precision   int // significand bits after the leading one.
	maxExp      uint64
	maxFinite   uint64
	mask        Bits
	signMask    Bits
	fieldsMask  Bits // exponent and mantissa fields.
	fracMask    Bits // mantissa field without the explicit leading bit.
	leadingBit  Bits // explicit leading bit, or zero.
	maxInt      Bits // largest positive integer of the word.
	minusMaxInt Bits
}

// New validates the format and its encoding and returns a descriptor.
// Errors are of *ValidationError type.
func New(name string, f Format, enc Encoding) (*Descriptor, error) {
	if err := f.Validate(); err != nil {
		return nil, &ValidationError{Name: name, Reason: err.Error()}
	}
	if err := enc.Validate(); err != nil {
		return nil, &ValidationError{Name: name, Reason: err.Error()}
	}
	if err := validatePair(f, enc); err != nil {
		return nil, &ValidationError{Name: name, Reason: err.Error()}
	}
	d := &Descriptor{
		name:   name,
		f:      f,
		enc:    enc,
		bias:   enc.Bias,
		maxExp: 1<<uint(f.ExpBits) - 1,
		mask:   bitfield.Mask(f.TotalBits),
	}
	if d.bias == AutoBias {
		d.bias = 1<<uint(f.ExpBits-1) - 1
		if enc.Sign == TwosComplement {
			d.bias++
		}
	}
	d.maxFinite = d.maxExp
	if enc.NaN == NaNReservedExponent || enc.Inf == InfReservedExponent {
		d.maxFinite--
	}
	d.precision = f.MantBits
	d.fracMask = bitfield.Mask(f.MantBits)
	if !enc.ImplicitBit {
		d.precision--
		d.fracMask = bitfield.Mask(f.MantBits - 1)
		d.leadingBit = bitfield.Bit(f.MantBits - 1)
	}
	if f.SignBits > 0 {
		d.signMask = bitfield.Bit(f.SignOffset)
	}
	d.fieldsMask = bitfield.Pack(bitfield.Pack(uint128.Zero, bitfield.Mask(f.ExpBits), f.ExpOffset),
		bitfield.Mask(f.MantBits), f.MantOffset)
	d.maxInt = bitfield.Mask(f.TotalBits - 1)
	d.minusMaxInt = bitfield.Neg(d.maxInt, f.TotalBits)
	return d, nil
}

// MustNew is like New, but panics on errors.
func MustNew(name string, f Format, enc Encoding) *Descriptor {
	d, err := New(name, f, enc)
	if err != nil {
		panic(err)
	}
	return d
}

// validatePair checks the encoding against the geometry.
func validatePair(f Format, enc Encoding) error {
	if f.SignBits == 0 {
		switch {
		case enc.Sign != SignMagnitude:
			return fmt.Errorf("%v requires a sign bit", enc.Sign)
		case enc.NegativeZero == NegativeZeroExists:
			return fmt.Errorf("negative zero requires a sign bit")
		case enc.NaN == NaNTrapValue || enc.NaN == NaNNegativeZeroPattern:
			return fmt.Errorf("%v NaN requires a sign bit", enc.NaN)
		case enc.Inf == InfIntegerExtremes:
			return fmt.Errorf("%v infinities require a sign bit", enc.Inf)
		}
	}
	if enc.Sign == TwosComplement && f.SignOffset != f.TotalBits-1 {
		return fmt.Errorf("two's complement requires the sign in the highest bit")
	}
	if !enc.ImplicitBit && enc.NaN == NaNReservedExponent && f.MantBits < 2 {
		return fmt.Errorf("explicit leading bit NaN requires at least 2 mantissa bits")
	}
	if (enc.NaN == NaNReservedExponent || enc.Inf == InfReservedExponent) && f.ExpBits < 2 {
		return fmt.Errorf("reserved exponent requires at least 2 exponent bits")
	}
	return nil
}

// Name returns the name of the format.
func (d *Descriptor) Name() string {
	return d.name
}

// Format returns the geometry.
func (d *Descriptor) Format() Format {
	return d.f
}

// Encoding returns the encoding rules with the bias as it was specified.
func (d *Descriptor) Encoding() Encoding {
	return d.enc
}

// Bias returns the resolved exponent bias.
func (d *Descriptor) Bias() int {
	return d.bias
}

// Precision returns the number of significant bits of normal values.
func (d *Descriptor) Precision() int {
	return d.precision + 1
}

// MaxExponent returns the all-ones biased exponent.
func (d *Descriptor) MaxExponent() uint64 {
	return d.maxExp
}

// MaxFiniteExponent returns the largest biased exponent of finite values.
func (d *Descriptor) MaxFiniteExponent() uint64 {
	return d.maxFinite
}

// TotalBits returns the width of bit patterns.
func (d *Descriptor) TotalBits() int {
	return d.f.TotalBits
}

// HexDigits returns the number of hex digits of a bit pattern.
func (d *Descriptor) HexDigits() int {
	return (d.f.TotalBits + 3) / 4
}

// Mask returns a word with the low TotalBits() bits set.
func (d *Descriptor) Mask() Bits {
	return d.mask
}

// SignMask returns a word with only the sign bit set, or a zero word.
func (d *Descriptor) SignMask() Bits {
	return d.signMask
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(e%d m%d, %v, bias %d)", d.name, d.f.ExpBits, d.f.MantBits, d.enc.Sign, d.bias)
}

// Fields returns the sign and the magnitude fields of b.
// For negative values of complement encodings, the fields are taken
// from the complemented word.
func (d *Descriptor) Fields(b Bits) (neg bool, exp uint64, mant Bits) {
	b = b.And(d.mask)
	w := b
	if !d.signMask.IsZero() && !b.And(d.signMask).IsZero() {
		neg = true
		switch d.enc.Sign {
		case TwosComplement:
			w = bitfield.Neg(b, d.f.TotalBits)
		case OnesComplement:
			w = b.Xor(d.fieldsMask)
		}
	}
	return neg, bitfield.Extract64(w, d.f.ExpOffset, d.f.ExpBits), bitfield.Extract(w, d.f.MantOffset, d.f.MantBits)
}

// compose builds a bit pattern from the sign and magnitude fields.
func (d *Descriptor) compose(neg bool, exp uint64, mant Bits) Bits {
	w := bitfield.Pack(bitfield.Pack64(uint128.Zero, exp, d.f.ExpOffset), mant, d.f.MantOffset)
	if !neg {
		return w
	}
	switch d.enc.Sign {
	case TwosComplement:
		return bitfield.Neg(w, d.f.TotalBits)
	case OnesComplement:
		return w.Xor(d.fieldsMask).Or(d.signMask)
	default:
		return w.Or(d.signMask)
	}
}

// Compose builds a bit pattern from the sign and magnitude fields, as Fields returns them.
// Field values are truncated to their widths.
func (d *Descriptor) Compose(neg bool, exp uint64, mant Bits) Bits {
	exp &= d.maxExp
	mant = mant.And(bitfield.Mask(d.f.MantBits))
	if neg && d.signMask.IsZero() {
		neg = false
	}
	return d.compose(neg, exp, mant)
}

// Negate returns the pattern of -Decode(b).
// Reserved exponent NaNs change their sign bit, other NaNs are returned as is.
// Zeros of formats without a negative zero negate to +0.
func (d *Descriptor) Negate(b Bits) Bits {
	b = b.And(d.mask)
	switch d.Classify(b) {
	case ClassNaN:
		if d.enc.NaN != NaNReservedExponent {
			return b
		}
	case ClassZero:
		if d.enc.NegativeZero == NegativeZeroAbsent {
			return uint128.Zero
		}
	}
	if d.signMask.IsZero() {
		return b
	}
	switch d.enc.Sign {
	case TwosComplement:
		return bitfield.Neg(b, d.f.TotalBits)
	case OnesComplement:
		return b.Xor(d.fieldsMask.Or(d.signMask))
	default:
		return b.Xor(d.signMask)
	}
}

// Abs returns the pattern of |Decode(b)|. NaNs are returned as is.
func (d *Descriptor) Abs(b Bits) Bits {
	b = b.And(d.mask)
	if d.signMask.IsZero() || b.And(d.signMask).IsZero() || d.Classify(b) == ClassNaN {
		return b
	}
	if d.enc.Sign == SignMagnitude {
		return b.Xor(d.signMask)
	}
	return d.Negate(b)
}

// Classify returns the class of b, the way Decode sees it.
func (d *Descriptor) Classify(b Bits) Class {
	cls, _, _, _ := d.unpack(b)
	return cls
}

// IsCanonical returns true if b is the pattern Round produces for its own value.
func (d *Descriptor) IsCanonical(b Bits) bool {
	return d.Round(d.Decode(b)).Equals(b)
}
