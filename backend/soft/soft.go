// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package soft implements an integer-only IEEE 754 arithmetic emulator
// for implicit leading bit formats of up to 64 bits.
//
// Significands are kept in uint64 words with the leading bit at position 62
// and a sticky bit at position 0. Subtraction needs two guard bits below the
// rounding position after normalization, so a format may have at most 59 mantissa bits.
// Results are rounded to nearest, ties to even. NaN results are the canonical quiet NaN.
package soft

import (
	"fmt"
	"math/bits"

	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
	"github.com/avdva/binfmt/internal/mathutil"
)

const (
	maxTotalBits = 64
	maxMantBits  = 59
	// topBit is the position of the leading significand bit of unpacked values.
	topBit = 62
)

type class int

const (
	classZero class = iota
	classFinite
	classInf
	classNaN
)

// unpacked is a decoded operand. A finite value is (-1)^neg * sig * 2^(exp-62),
// with sig in [2^62, 2^63).
type unpacked struct {
	cls class
	neg bool
	exp int
	sig uint64
}

// Adapter emulates arithmetic of one format.
type Adapter struct {
	d         *binfmt.Descriptor
	mantBits  int
	precision int
	bias      int
	maxExp    uint64
	signMask  uint64
	fracMask  uint64
	nan       uint64
}

// New returns an emulator for d, or an error if d is not supported.
func New(d *binfmt.Descriptor) (*Adapter, error) {
	if err := Check(d); err != nil {
		return nil, err
	}
	f := d.Format()
	return &Adapter{
		d:         d,
		mantBits:  f.MantBits,
		precision: f.MantBits + 1,
		bias:      d.Bias(),
		maxExp:    d.MaxExponent(),
		signMask:  d.SignMask().Lo,
		fracMask:  1<<uint(f.MantBits) - 1,
		nan:       d.Round(binfmt.NaN()).Lo,
	}, nil
}

// Check returns an error if the emulator cannot serve d.
func Check(d *binfmt.Descriptor) error {
	f, enc := d.Format(), d.Encoding()
	switch {
	case f.TotalBits > maxTotalBits:
		return fmt.Errorf("%s: total width %d is over %d bits", d.Name(), f.TotalBits, maxTotalBits)
	case f.MantBits > maxMantBits:
		return fmt.Errorf("%s: mantissa width %d is over %d bits", d.Name(), f.MantBits, maxMantBits)
	case f.SignBits != 1 || enc.Sign != binfmt.SignMagnitude:
		return fmt.Errorf("%s: sign-magnitude encoding with a sign bit required", d.Name())
	case !enc.ImplicitBit:
		return fmt.Errorf("%s: implicit leading bit required", d.Name())
	case enc.NegativeZero != binfmt.NegativeZeroExists || enc.NaN != binfmt.NaNReservedExponent ||
		enc.Inf != binfmt.InfReservedExponent || enc.Subnormals != binfmt.SubnormalFull:
		return fmt.Errorf("%s: IEEE 754 special values and subnormals required", d.Name())
	}
	return nil
}

// Name returns "soft".
func (a *Adapter) Name() string {
	return "soft"
}

// Supports returns true for all operations except MulAdd.
func (a *Adapter) Supports(op backend.Op) bool {
	return op.Valid() && op != backend.MulAdd
}

// Dispatch performs op and reports the IEEE exception flags it raised.
func (a *Adapter) Dispatch(op backend.Op, operands ...binfmt.Bits) backend.Outcome {
	if !a.Supports(op) || backend.Validate(op, operands) != nil {
		return backend.Outcome{}
	}
	x := a.unpack(operands[0].Lo)
	var y unpacked
	if len(operands) > 1 {
		y = a.unpack(operands[1].Lo)
	}
	var r uint64
	var st backend.Status
	switch op {
	case backend.Add:
		r, st = a.add(x, y)
	case backend.Sub:
		y.neg = !y.neg
		r, st = a.add(x, y)
	case backend.Mul:
		r, st = a.mul(x, y)
	case backend.Div:
		r, st = a.div(x, y)
	case backend.Rem:
		r, st = a.rem(x, y)
	case backend.Sqrt:
		r, st = a.sqrt(x)
	case backend.Neg:
		r = (operands[0].Lo ^ a.signMask) & a.d.Mask().Lo
	case backend.Abs:
		r = operands[0].Lo &^ a.signMask & a.d.Mask().Lo
	case backend.Eq, backend.Lt, backend.Le:
		return a.compare(op, x, y)
	}
	return backend.Outcome{Bits: uint128.From64(r), Status: st}
}

func (a *Adapter) unpack(b uint64) unpacked {
	neg, e, m := a.d.Fields(uint128.From64(b))
	mant := m.Lo
	switch {
	case e == a.maxExp && mant != 0:
		return unpacked{cls: classNaN}
	case e == a.maxExp:
		return unpacked{cls: classInf, neg: neg}
	case e == 0 && mant == 0:
		return unpacked{cls: classZero, neg: neg}
	case e == 0:
		lz := bits.LeadingZeros64(mant)
		return unpacked{cls: classFinite, neg: neg, exp: 64 - a.bias - a.mantBits - lz, sig: mant << uint(lz-1)}
	default:
		return unpacked{cls: classFinite, neg: neg, exp: int(e) - a.bias, sig: (mant | 1<<uint(a.mantBits)) << uint(topBit-a.mantBits)}
	}
}

func (a *Adapter) pack(neg bool, exp uint64, mant uint64) uint64 {
	return a.d.Compose(neg, exp, uint128.From64(mant)).Lo
}

func (a *Adapter) zero(neg bool) uint64 {
	return a.pack(neg, 0, 0)
}

func (a *Adapter) inf(neg bool) uint64 {
	return a.pack(neg, a.maxExp, 0)
}

// roundPack rounds (-1)^neg * sig * 2^(exp-62) to the format.
// sig must be normalized: bit 62 is the highest set bit, bit 0 is sticky.
func (a *Adapter) roundPack(neg bool, exp int, sig uint64) (uint64, backend.Status) {
	var st backend.Status
	be := exp + a.bias
	if be < 1 {
		sig = mathutil.ShiftRightJam(sig, uint(1-be))
		be = 1
	}
	shift := uint(topBit + 1 - a.precision)
	keep := sig >> shift
	rem := sig & (1<<shift - 1)
	half := uint64(1) << (shift - 1)
	if rem != 0 {
		st |= backend.FlagInexact
		if exp+a.bias < 1 {
			st |= backend.FlagUnderflow
		}
	}
	if rem > half || (rem == half && keep&1 == 1) {
		keep++
	}
	if keep == 1<<uint(a.precision) {
		keep >>= 1
		be++
	}
	if keep < 1<<uint(a.mantBits) {
		// subnormal or zero.
		return a.pack(neg, 0, keep), st
	}
	if uint64(be) >= a.maxExp {
		return a.inf(neg), st | backend.FlagOverflow | backend.FlagInexact
	}
	return a.pack(neg, uint64(be), keep&a.fracMask), st
}

// normalize shifts a non-zero sig so that its highest bit is at position 62.
func normalize(exp int, sig uint64) (int, uint64) {
	lz := bits.LeadingZeros64(sig) - 1
	if lz >= 0 {
		return exp - lz, sig << uint(lz)
	}
	return exp + 1, mathutil.ShiftRightJam(sig, 1)
}

func (a *Adapter) add(x, y unpacked) (uint64, backend.Status) {
	switch {
	case x.cls == classNaN || y.cls == classNaN:
		return a.nan, 0
	case x.cls == classInf && y.cls == classInf:
		if x.neg != y.neg {
			return a.nan, backend.FlagInvalid
		}
		return a.inf(x.neg), 0
	case x.cls == classInf:
		return a.inf(x.neg), 0
	case y.cls == classInf:
		return a.inf(y.neg), 0
	case x.cls == classZero && y.cls == classZero:
		return a.zero(x.neg && y.neg), 0
	case x.cls == classZero:
		return a.roundPack(y.neg, y.exp, y.sig)
	case y.cls == classZero:
		return a.roundPack(x.neg, x.exp, x.sig)
	}
	if x.exp < y.exp || (x.exp == y.exp && x.sig < y.sig) {
		x, y = y, x
	}
	ysig := mathutil.ShiftRightJam(y.sig, uint(x.exp-y.exp))
	if x.neg == y.neg {
		exp, sig := normalize(x.exp, x.sig+ysig)
		return a.roundPack(x.neg, exp, sig)
	}
	diff := x.sig - ysig
	if diff == 0 {
		return a.zero(false), 0
	}
	exp, sig := normalize(x.exp, diff)
	return a.roundPack(x.neg, exp, sig)
}

func (a *Adapter) mul(x, y unpacked) (uint64, backend.Status) {
	neg := x.neg != y.neg
	switch {
	case x.cls == classNaN || y.cls == classNaN:
		return a.nan, 0
	case x.cls == classInf || y.cls == classInf:
		if x.cls == classZero || y.cls == classZero {
			return a.nan, backend.FlagInvalid
		}
		return a.inf(neg), 0
	case x.cls == classZero || y.cls == classZero:
		return a.zero(neg), 0
	}
	hi, lo := bits.Mul64(x.sig, y.sig)
	// the product has its highest bit at 124 or 125.
	exp := x.exp + y.exp
	shift := uint(topBit)
	if hi>>61 != 0 {
		shift++
		exp++
	}
	sig := hi<<(64-shift) | lo>>shift
	if lo<<(64-shift) != 0 {
		sig |= 1
	}
	return a.roundPack(neg, exp, sig)
}

func (a *Adapter) div(x, y unpacked) (uint64, backend.Status) {
	neg := x.neg != y.neg
	switch {
	case x.cls == classNaN || y.cls == classNaN:
		return a.nan, 0
	case x.cls == classInf:
		if y.cls == classInf {
			return a.nan, backend.FlagInvalid
		}
		return a.inf(neg), 0
	case y.cls == classInf:
		return a.zero(neg), 0
	case y.cls == classZero:
		if x.cls == classZero {
			return a.nan, backend.FlagInvalid
		}
		return a.inf(neg), backend.FlagDivByZero
	case x.cls == classZero:
		return a.zero(neg), 0
	}
	// x.sig * 2^63 / y.sig is in (2^62, 2^64).
	q, r := bits.Div64(x.sig>>1, x.sig<<63, y.sig)
	exp := x.exp - y.exp - 1
	if q>>63 != 0 {
		q = mathutil.ShiftRightJam(q, 1)
		exp++
	}
	if r != 0 {
		q |= 1
	}
	return a.roundPack(neg, exp, q)
}

func (a *Adapter) sqrt(x unpacked) (uint64, backend.Status) {
	switch {
	case x.cls == classNaN:
		return a.nan, 0
	case x.cls == classZero:
		return a.zero(x.neg), 0
	case x.neg:
		return a.nan, backend.FlagInvalid
	case x.cls == classInf:
		return a.inf(false), 0
	}
	// x.sig * 2^k is in [2^124, 2^126) with an even exponent left.
	k := 62
	if (x.exp-k)%2 != 0 {
		k = 63
	}
	root, exact := mathutil.Sqrt128(uint128.From64(x.sig).Lsh(uint(k)))
	if !exact {
		root |= 1
	}
	return a.roundPack(false, topBit+(x.exp-topBit-k)/2, root)
}

// rem computes the IEEE remainder. The result is exact.
func (a *Adapter) rem(x, y unpacked) (uint64, backend.Status) {
	switch {
	case x.cls == classNaN || y.cls == classNaN:
		return a.nan, 0
	case x.cls == classInf || y.cls == classZero:
		return a.nan, backend.FlagInvalid
	case y.cls == classInf || x.cls == classZero:
		return a.roundPack0(x)
	}
	d := x.exp - y.exp
	if d < -1 {
		// |x| < |y|/2.
		return a.roundPack0(x)
	}
	var r, m uint64
	var odd bool
	var exp int
	if d == -1 {
		// in units of x: the quotient is zero.
		r, m, exp = x.sig, y.sig<<1, x.exp
	} else {
		// x.sig * 2^d mod 2*y.sig gives both the remainder and the quotient parity.
		m2 := y.sig << 1
		r = x.sig % m2
		for left := d; left > 0; {
			s := min(left, 63)
			r = bits.Rem64(r>>(64-uint(s)), r<<uint(s), m2)
			left -= s
		}
		m, exp = y.sig, y.exp
		if r >= m {
			r -= m
			odd = true
		}
	}
	neg := x.neg
	if r<<1 > m || (r<<1 == m && odd) {
		r = m - r
		neg = !neg
	}
	if r == 0 {
		return a.zero(x.neg), 0
	}
	exp, r = normalize(exp, r)
	return a.roundPack(neg, exp, r)
}

// roundPack0 returns x packed back.
func (a *Adapter) roundPack0(x unpacked) (uint64, backend.Status) {
	if x.cls == classZero {
		return a.zero(x.neg), 0
	}
	return a.roundPack(x.neg, x.exp, x.sig)
}

func (a *Adapter) compare(op backend.Op, x, y unpacked) backend.Outcome {
	if x.cls == classNaN || y.cls == classNaN {
		return backend.Outcome{}
	}
	c := cmp(x, y)
	switch op {
	case backend.Eq:
		return backend.Bool(c == 0)
	case backend.Lt:
		return backend.Bool(c < 0)
	default:
		return backend.Bool(c <= 0)
	}
}

// cmp compares two ordered operands.
func cmp(x, y unpacked) int {
	sx, sy := sign(x), sign(y)
	if sx != sy {
		return mathutil.Int64Sign(int64(sx - sy))
	}
	if sx == 0 {
		return 0
	}
	c := cmpMagnitude(x, y)
	if sx < 0 {
		return -c
	}
	return c
}

func sign(x unpacked) int {
	switch {
	case x.cls == classZero:
		return 0
	case x.neg:
		return -1
	default:
		return 1
	}
}

func cmpMagnitude(x, y unpacked) int {
	switch {
	case x.cls == classInf && y.cls == classInf:
		return 0
	case x.cls == classInf:
		return 1
	case y.cls == classInf:
		return -1
	case x.exp != y.exp:
		return mathutil.Int64Sign(int64(x.exp - y.exp))
	case x.sig > y.sig:
		return 1
	case x.sig < y.sig:
		return -1
	}
	return 0
}
