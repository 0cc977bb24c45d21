// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import "math/big"

// Signbit returns true for negative values, including -0 and -Inf.
func (v Value) Signbit() bool {
	return v.neg
}

// Neg returns -v. The negation of a NaN is the NaN itself.
func (v Value) Neg() Value {
	if v.kind != KindNaN {
		v.neg = !v.neg
	}
	return v
}

// Abs returns |v|.
func (v Value) Abs() Value {
	v.neg = false
	return v
}

// WithSign returns v with the sign set to 'neg'.
func (v Value) WithSign(neg bool) Value {
	if v.kind != KindNaN {
		v.neg = neg
	}
	return v
}

// Sign returns -1 if v < 0, 0 if v is a zero or a NaN, 1 if v > 0.
func (v Value) Sign() int {
	if v.kind == KindZero || v.kind == KindNaN {
		return 0
	}
	if v.neg {
		return -1
	}
	return 1
}

// Equal returns a == b, like IEEE 754 comparison does: zeros are equal
// regardless of their signs, and a NaN is not equal to anything.
func (v Value) Equal(other Value) bool {
	c, ok := Compare(v, other)
	return ok && c == 0
}

// Compare compares two values.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
// The second return value is false if a or b is a NaN, the values are unordered then.
func Compare(a, b Value) (int, bool) {
	if a.kind == KindNaN || b.kind == KindNaN {
		return 0, false
	}
	s1, s2 := a.Sign(), b.Sign()
	if s1 > s2 {
		return 1, true
	} else if s1 < s2 {
		return -1, true
	}
	if s1 == 0 {
		return 0, true
	}
	return cmpMagnitude(a, b) * s1, true
}

// cmpMagnitude compares |a| and |b| for non-zero, non-NaN values.
func cmpMagnitude(a, b Value) int {
	switch {
	case a.kind == KindInf && b.kind == KindInf:
		return 0
	case a.kind == KindInf:
		return 1
	case b.kind == KindInf:
		return -1
	}
	e1, e2 := a.ILogb(), b.ILogb()
	if e1 != e2 {
		if e1 > e2 {
			return 1
		}
		return -1
	}
	// same leading bit position: align the lowest bits.
	x, y := a.sig, b.sig
	if d := a.exp - b.exp; d > 0 {
		x = new(big.Int).Lsh(x, uint(d))
	} else if d < 0 {
		y = new(big.Int).Lsh(y, uint(-d))
	}
	return x.Cmp(y)
}
