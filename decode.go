// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt/internal/bitfield"
)

// Decode returns the exact value of b. Bits above TotalBits() are ignored.
//
// Patterns with an explicit leading bit are decoded by the same formula
// regardless of whether the leading bit agrees with the exponent, so unnormals
// and pseudo-denormals have the value of their canonical counterparts.
// A reserved exponent with a zero fraction is an infinity whatever the leading bit is,
// other reserved exponent patterns are NaNs.
func (d *Descriptor) Decode(b Bits) Value {
	cls, neg, exp, mant := d.unpack(b)
	switch cls {
	case ClassNaN:
		return NaN()
	case ClassInf:
		return Inf(neg)
	case ClassZero:
		return d.zeroValue(neg)
	}
	e := int(exp)
	if e == 0 {
		e = 1
	} else if d.enc.ImplicitBit {
		mant = mant.Or(bitfield.Bit(d.f.MantBits))
	}
	return Finite(neg, mant.Big(), e-d.bias-d.precision)
}

func (d *Descriptor) zeroValue(neg bool) Value {
	return Zero(neg && d.enc.NegativeZero == NegativeZeroExists)
}

// unpack classifies b and returns its sign and magnitude fields.
func (d *Descriptor) unpack(b Bits) (cls Class, neg bool, exp uint64, mant Bits) {
	b = b.And(d.mask)
	enc := d.enc
	if enc.NaN == NaNTrapValue && b.Equals(bitfield.Bit(d.f.TotalBits-1)) {
		return ClassNaN, false, 0, uint128.Zero
	}
	if enc.Inf == InfIntegerExtremes {
		if b.Equals(d.maxInt) {
			return ClassInf, false, 0, uint128.Zero
		}
		if b.Equals(d.minusMaxInt) {
			return ClassInf, true, 0, uint128.Zero
		}
	}
	neg, exp, mant = d.Fields(b)
	if enc.NaN == NaNNegativeZeroPattern && neg && exp == 0 && mant.IsZero() {
		return ClassNaN, false, 0, uint128.Zero
	}
	if exp == d.maxExp {
		if enc.Inf == InfReservedExponent && mant.And(d.fracMask).IsZero() {
			return ClassInf, neg, exp, mant
		}
		if enc.NaN == NaNReservedExponent {
			return ClassNaN, neg, exp, mant
		}
	}
	if mant.IsZero() && (exp == 0 || !enc.ImplicitBit) {
		return ClassZero, neg, exp, mant
	}
	if enc.ImplicitBit {
		if exp == 0 {
			return ClassSubnormal, neg, exp, mant
		}
		return ClassNormal, neg, exp, mant
	}
	// explicit leading bit: compare the position of the highest set bit
	// against the smallest normal.
	e := int(exp)
	if e == 0 {
		e = 1
	}
	top := bitfield.Width - 1 - mant.LeadingZeros()
	if e+top-d.precision < 1 {
		return ClassSubnormal, neg, exp, mant
	}
	return ClassNormal, neg, exp, mant
}
