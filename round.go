// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"errors"
	"math/big"

	"lukechampine.com/uint128"

	"github.com/avdva/binfmt/internal/bitfield"
	"github.com/avdva/binfmt/internal/mathutil"
)

var (
	// ErrNoNaN is returned when a NaN is rounded into a format without NaNs.
	ErrNoNaN = errors.New("format has no NaN encoding")
	// ErrNoInf is returned when an infinity is rounded into a format without infinities.
	ErrNoInf = errors.New("format has no infinity encoding")
	// ErrOverflow is returned when a finite value is too large for a format without infinities.
	ErrOverflow = errors.New("value overflows a format without infinities")
	// ErrNoSign is returned when a negative value is rounded into a format without a sign.
	ErrNoSign = errors.New("format has no sign")
)

// Round returns the pattern of v rounded to nearest, ties to even.
// Values the format cannot represent (see RoundChecked) are returned as all-zero
// patterns, so Round is lossy for them.
func (d *Descriptor) Round(v Value) Bits {
	b, _ := d.RoundChecked(v)
	return b
}

// RoundChecked is like Round, but returns an error for a value the format
// cannot represent. The returned pattern is all zeros in that case.
//
// NaNs are rounded to the canonical NaN, infinities and overflowing values
// to the infinity of the same sign. Values below half of the smallest subnormal
// are rounded to a signed zero.
func (d *Descriptor) RoundChecked(v Value) (Bits, error) {
	switch v.kind {
	case KindNaN:
		return d.nanBits()
	case KindInf:
		return d.infBits(v.neg)
	case KindZero:
		return d.zeroBits(v.neg), nil
	}
	if v.neg && d.signMask.IsZero() {
		return uint128.Zero, ErrNoSign
	}
	exp, mant, ok := d.roundMagnitude(v)
	if !ok {
		return d.overflow(v.neg)
	}
	if exp == 0 && mant.IsZero() {
		return d.zeroBits(v.neg), nil
	}
	if d.enc.Inf == InfIntegerExtremes && d.compose(false, exp, mant).Equals(d.maxInt) {
		return d.overflow(v.neg)
	}
	return d.compose(v.neg, exp, mant), nil
}

// roundMagnitude returns the biased exponent and the mantissa field of |v|.
// ok is false on overflow.
func (d *Descriptor) roundMagnitude(v Value) (exp uint64, mant Bits, ok bool) {
	p := d.precision
	e := v.ILogb()
	if e >= 1-d.bias {
		// normal: keep p bits after the leading one.
		n := roundScaled(v.sig, p+1-v.sig.BitLen())
		if n.BitLen() > p+1 {
			n.Rsh(n, 1)
			e++
		}
		if e+d.bias > int(d.maxFinite) {
			return 0, uint128.Zero, false
		}
		return uint64(e + d.bias), uint128.FromBig(n).And(bitfield.Mask(d.f.MantBits)), true
	}
	// subnormal: the scale is fixed by the smallest normal exponent.
	n := roundScaled(v.sig, v.exp+d.bias-1+p)
	switch {
	case n.Sign() == 0:
		return 0, uint128.Zero, true
	case n.BitLen() > p:
		// rounded up to the smallest normal.
		return 1, uint128.FromBig(n).And(bitfield.Mask(d.f.MantBits)), true
	default:
		return 0, uint128.FromBig(n), true
	}
}

// roundScaled returns sig * 2^shift rounded to an integer, ties to even.
func roundScaled(sig *big.Int, shift int) *big.Int {
	if shift >= 0 {
		return new(big.Int).Lsh(sig, uint(shift))
	}
	if -shift > sig.BitLen() {
		return new(big.Int)
	}
	return mathutil.RoundShiftEven(sig, uint(-shift))
}

func (d *Descriptor) overflow(neg bool) (Bits, error) {
	if d.enc.Inf == InfNone {
		return uint128.Zero, ErrOverflow
	}
	return d.infBits(neg)
}

func (d *Descriptor) zeroBits(neg bool) Bits {
	if neg && d.enc.NegativeZero == NegativeZeroExists {
		return d.compose(true, 0, uint128.Zero)
	}
	return uint128.Zero
}

// nanBits returns the canonical quiet NaN.
func (d *Descriptor) nanBits() (Bits, error) {
	switch d.enc.NaN {
	case NaNReservedExponent:
		return d.compose(false, d.maxExp, d.leadingBit.Or(bitfield.Bit(d.precision-1))), nil
	case NaNTrapValue:
		return bitfield.Bit(d.f.TotalBits - 1), nil
	case NaNNegativeZeroPattern:
		return d.signMask, nil
	default:
		return uint128.Zero, ErrNoNaN
	}
}

func (d *Descriptor) infBits(neg bool) (Bits, error) {
	if neg && d.signMask.IsZero() && d.enc.Inf != InfNone {
		return uint128.Zero, ErrNoSign
	}
	switch d.enc.Inf {
	case InfReservedExponent:
		return d.compose(neg, d.maxExp, d.leadingBit), nil
	case InfIntegerExtremes:
		if neg {
			return d.minusMaxInt, nil
		}
		return d.maxInt, nil
	default:
		return uint128.Zero, ErrNoInf
	}
}

// FlushesInput returns true if arithmetic treats subnormal operands as zeros.
func (d *Descriptor) FlushesInput() bool {
	m := d.enc.Subnormals
	return m == SubnormalFlushInput || m == SubnormalFlushBoth
}

// FlushesOutput returns true if arithmetic replaces subnormal results with zeros.
func (d *Descriptor) FlushesOutput() bool {
	m := d.enc.Subnormals
	return m == SubnormalFlushOutput || m == SubnormalFlushBoth || m == SubnormalNone
}

// FlushInput returns a zero of the same sign for a subnormal b if the format flushes operands.
func (d *Descriptor) FlushInput(b Bits) Bits {
	if !d.FlushesInput() {
		return b
	}
	return d.flush(b)
}

// FlushOutput returns a zero of the same sign for a subnormal b if the format flushes results.
func (d *Descriptor) FlushOutput(b Bits) Bits {
	if !d.FlushesOutput() {
		return b
	}
	return d.flush(b)
}

func (d *Descriptor) flush(b Bits) Bits {
	cls, neg, _, _ := d.unpack(b)
	if cls != ClassSubnormal {
		return b
	}
	return d.zeroBits(neg)
}
