// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"math/big"

	"github.com/avdva/binfmt/internal/mathutil"
)

// Arithmetic on values follows IEEE 754 special value rules:
// invalid operations give NaN, an exact zero sum of operands of different
// signs is +0, and NaN operands give NaN.
// Add, Sub, Mul, Rem and MulAdd are exact. Quo and Sqrt round to odd
// at 'prec' bits, so that a later rounding to fewer than prec-1 bits is correct.

// Add returns v + other.
func (v Value) Add(other Value) Value {
	switch {
	case v.kind == KindNaN || other.kind == KindNaN:
		return NaN()
	case v.kind == KindInf && other.kind == KindInf:
		if v.neg != other.neg {
			return NaN()
		}
		return v
	case v.kind == KindInf:
		return v
	case other.kind == KindInf:
		return other
	case v.kind == KindZero && other.kind == KindZero:
		return Zero(v.neg && other.neg)
	case v.kind == KindZero:
		return other
	case other.kind == KindZero:
		return v
	}
	m1, m2, e := toEqualExp(v, other)
	sum := m1.Add(m1, m2)
	if sum.Sign() == 0 {
		return Zero(false)
	}
	neg := sum.Sign() < 0
	return Finite(neg, sum.Abs(sum), e)
}

// Sub returns v - other.
func (v Value) Sub(other Value) Value {
	return v.Add(other.Neg())
}

// Mul returns v * other.
func (v Value) Mul(other Value) Value {
	neg := v.neg != other.neg
	switch {
	case v.kind == KindNaN || other.kind == KindNaN:
		return NaN()
	case v.kind == KindInf || other.kind == KindInf:
		if v.kind == KindZero || other.kind == KindZero {
			return NaN()
		}
		return Inf(neg)
	case v.kind == KindZero || other.kind == KindZero:
		return Zero(neg)
	}
	return Finite(neg, new(big.Int).Mul(v.sig, other.sig), v.exp+other.exp)
}

// Quo returns v / other, rounded to odd at 'prec' significant bits.
func (v Value) Quo(other Value, prec uint) Value {
	neg := v.neg != other.neg
	switch {
	case v.kind == KindNaN || other.kind == KindNaN:
		return NaN()
	case v.kind == KindInf:
		if other.kind == KindInf {
			return NaN()
		}
		return Inf(neg)
	case other.kind == KindInf:
		return Zero(neg)
	case other.kind == KindZero:
		if v.kind == KindZero {
			return NaN()
		}
		return Inf(neg)
	case v.kind == KindZero:
		return Zero(neg)
	}
	// the quotient of the significands needs at least prec+1 bits.
	shift := int(prec) + 1 + other.sig.BitLen() - v.sig.BitLen()
	if shift < 0 {
		shift = 0
	}
	num := new(big.Int).Lsh(v.sig, uint(shift))
	q, rem := new(big.Int).QuoRem(num, other.sig, new(big.Int))
	if rem.Sign() != 0 {
		q.SetBit(q, 0, 1)
	}
	return roundOdd(neg, q, v.exp-other.exp-shift, prec)
}

// Sqrt returns the square root of v, rounded to odd at 'prec' significant bits.
// The square root of -0 is -0, of a negative value is NaN.
func (v Value) Sqrt(prec uint) Value {
	switch {
	case v.kind == KindNaN:
		return NaN()
	case v.kind == KindZero:
		return v
	case v.neg:
		return NaN()
	case v.kind == KindInf:
		return v
	}
	// make the exponent even and the radicand long enough for prec+1 root bits.
	shift := 2*(int(prec)+1) - v.sig.BitLen()
	if shift < 0 {
		shift = 0
	}
	if (v.exp-shift)%2 != 0 {
		shift++
	}
	n := new(big.Int).Lsh(v.sig, uint(shift))
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) != 0 {
		root.SetBit(root, 0, 1)
	}
	return roundOdd(false, root, (v.exp-shift)/2, prec)
}

// Rem returns the IEEE 754 remainder v - n*other, where n is the integer
// nearest to v/other, ties to even. A zero result has the sign of v.
func (v Value) Rem(other Value) Value {
	switch {
	case v.kind == KindNaN || other.kind == KindNaN:
		return NaN()
	case v.kind == KindInf || other.kind == KindZero:
		return NaN()
	case other.kind == KindInf || v.kind == KindZero:
		return v
	}
	x, y, e := toEqualExp(v.Abs(), other.Abs())
	n, r := new(big.Int).QuoRem(x, y, new(big.Int))
	// compare 2r against y to find the nearest integer.
	c := new(big.Int).Lsh(r, 1).Cmp(y)
	neg := v.neg
	if c > 0 || (c == 0 && n.Bit(0) == 1) {
		r.Sub(y, r)
		neg = !neg
	}
	if r.Sign() == 0 {
		return Zero(v.neg)
	}
	return Finite(neg, r, e)
}

// MulAdd returns v * b + c with a single rounding, that is, exactly.
func (v Value) MulAdd(b, c Value) Value {
	return v.Mul(b).Add(c)
}

// toEqualExp returns the signed significands of a and b scaled to the same exponent.
// Both values must be finite and non-zero.
func toEqualExp(a, b Value) (m1, m2 *big.Int, e int) {
	e = min(a.exp, b.exp)
	m1 = new(big.Int).Lsh(a.sig, uint(a.exp-e))
	m2 = new(big.Int).Lsh(b.sig, uint(b.exp-e))
	if a.neg {
		m1.Neg(m1)
	}
	if b.neg {
		m2.Neg(m2)
	}
	return m1, m2, e
}

// roundOdd returns (-1)^neg * sig * 2^exp with sig rounded to odd at prec bits.
func roundOdd(neg bool, sig *big.Int, exp int, prec uint) Value {
	if extra := sig.BitLen() - int(prec); extra > 0 {
		sig = mathutil.RoundShiftOdd(sig, uint(extra))
		exp += extra
	}
	return Finite(neg, sig, exp)
}
