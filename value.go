// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avdva/binfmt/internal/mathutil"
)

// WorkingPrecision is the number of significant bits used for inexact
// conversions and operations. Results are rounded to odd at this precision,
// which is enough for a later correct round-to-nearest into any format
// up to 128 bits.
const WorkingPrecision = 320

// decimal output is used for values with exponents in this range,
// larger or smaller values are printed in hex.
const maxDecimalStringExp = 64

// Kind is the class of an exact value.
type Kind uint8

const (
	KindZero Kind = iota
	KindFinite
	KindInf
	KindNaN
)

func (k Kind) String() string {
	switch k {
	case KindZero:
		return "zero"
	case KindFinite:
		return "finite"
	case KindInf:
		return "inf"
	case KindNaN:
		return "nan"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is an exact binary number, or a special value.
// A finite value is (-1)^neg * sig * 2^exp, where sig is a positive odd integer.
//
//   Kind        neg    sig     exp
//   _________________________________
//   KindZero    sign   nil     0
//   KindFinite  sign   odd     any
//   KindInf     sign   nil     0
//   KindNaN     false  nil     0
//
// Values are immutable, the zero Value is +0.
type Value struct {
	kind Kind
	neg  bool
	sig  *big.Int
	exp  int
}

// Zero returns a signed zero.
func Zero(neg bool) Value {
	return Value{kind: KindZero, neg: neg}
}

// Inf returns a signed infinity.
func Inf(neg bool) Value {
	return Value{kind: KindInf, neg: neg}
}

// NaN returns a not-a-number value.
func NaN() Value {
	return Value{kind: KindNaN}
}

// Finite returns (-1)^neg * sig * 2^exp. sig must be non-negative, a zero sig yields a signed zero.
func Finite(neg bool, sig *big.Int, exp int) Value {
	if sig.Sign() < 0 {
		panic("binfmt: negative significand")
	}
	if sig.Sign() == 0 {
		return Zero(neg)
	}
	s := new(big.Int).Set(sig)
	tz := s.TrailingZeroBits()
	s.Rsh(s, tz)
	return Value{kind: KindFinite, neg: neg, sig: s, exp: exp + int(tz)}
}

// FromInt64 returns an exact value for v.
func FromInt64(v int64) Value {
	if v == 0 {
		return Zero(false)
	}
	neg := v < 0
	sig := new(big.Int).SetInt64(v)
	return Finite(neg, sig.Abs(sig), 0)
}

// FromFloat64 returns an exact value for f. The sign of zero is kept.
func FromFloat64(f float64) Value {
	switch {
	case math.IsNaN(f):
		return NaN()
	case math.IsInf(f, 0):
		return Inf(f < 0)
	case f == 0:
		return Zero(math.Signbit(f))
	}
	b := math.Float64bits(f)
	e := int(b>>52) & 0x7ff
	m := b & (1<<52 - 1)
	if e == 0 {
		e = 1
	} else {
		m |= 1 << 52
	}
	return Finite(math.Signbit(f), new(big.Int).SetUint64(m), e-1075)
}

// FromRat converts r into a value. Dyadic rationals are converted exactly,
// other values are rounded to odd at 'prec' significant bits.
func FromRat(r *big.Rat, prec uint) Value {
	if r.Sign() == 0 {
		return Zero(false)
	}
	neg := r.Sign() < 0
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	if den.TrailingZeroBits() == uint(den.BitLen()-1) {
		return Finite(neg, num, -(den.BitLen() - 1))
	}
	// scale so that the quotient has at least prec+1 bits.
	shift := int(prec) + 1 + den.BitLen() - num.BitLen()
	if shift > 0 {
		num.Lsh(num, uint(shift))
	} else {
		den = new(big.Int).Lsh(den, uint(-shift))
	}
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if rem.Sign() != 0 {
		q.SetBit(q, 0, 1)
	}
	exp := -shift
	if extra := q.BitLen() - int(prec); extra > 0 {
		q = mathutil.RoundShiftOdd(q, uint(extra))
		exp += extra
	}
	return Finite(neg, q, exp)
}

// ParseValue parses a decimal number, like "-1.25", "3e-7", or one of
// "nan", "inf", "+inf", "-inf". Values that are not dyadic rationals are rounded
// to odd at WorkingPrecision bits.
func ParseValue(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "+nan", "-nan":
		return NaN(), nil
	case "inf", "+inf", "infinity", "+infinity":
		return Inf(false), nil
	case "-inf", "-infinity":
		return Inf(true), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{}, fmt.Errorf("parsing failed: %w", err)
	}
	if d.IsZero() {
		return Zero(strings.HasPrefix(s, "-")), nil
	}
	return FromRat(d.Rat(), WorkingPrecision), nil
}

// MustParseValue is like ParseValue, but panics on errors.
func MustParseValue(s string) Value {
	v, err := ParseValue(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the class of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsZero returns true for both signed zeros.
func (v Value) IsZero() bool {
	return v.kind == KindZero
}

// IsFinite returns true for zeros and finite non-zero values.
func (v Value) IsFinite() bool {
	return v.kind == KindZero || v.kind == KindFinite
}

// IsInf reports whether v is an infinity, according to sign.
// If sign > 0, IsInf reports whether v is +Inf.
// If sign < 0, IsInf reports whether v is -Inf.
// If sign == 0, IsInf reports whether v is either infinity.
func (v Value) IsInf(sign int) bool {
	return v.kind == KindInf && (sign == 0 || (sign > 0) != v.neg)
}

// IsNaN returns true for not-a-number values.
func (v Value) IsNaN() bool {
	return v.kind == KindNaN
}

// Significand returns a copy of the odd significand of a finite value, or nil.
func (v Value) Significand() *big.Int {
	if v.kind != KindFinite {
		return nil
	}
	return new(big.Int).Set(v.sig)
}

// Exponent returns the power of two of the lowest significand bit of a finite value.
func (v Value) Exponent() int {
	return v.exp
}

// ILogb returns the exponent E of a finite non-zero value, such that |v| is in [2^E, 2^(E+1)).
// It returns 0 for other values.
func (v Value) ILogb() int {
	if v.kind != KindFinite {
		return 0
	}
	return v.exp + v.sig.BitLen() - 1
}

// Ldexp returns v * 2^k.
func (v Value) Ldexp(k int) Value {
	if v.kind != KindFinite {
		return v
	}
	v.exp += k
	return v
}

// Float64 returns v rounded to the nearest float64, ties to even.
func (v Value) Float64() float64 {
	return math.Float64frombits(Binary64.Round(v).Lo)
}

// Identical returns true if both values have the same kind, sign, and magnitude.
// Unlike Equal, it distinguishes zeros of different signs.
func (v Value) Identical(other Value) bool {
	if v.kind != other.kind || v.neg != other.neg {
		return false
	}
	if v.kind != KindFinite {
		return true
	}
	return v.exp == other.exp && v.sig.Cmp(other.sig) == 0
}

// Rat returns the exact rational value of a finite value, or nil for infinities and NaNs.
func (v Value) Rat() *big.Rat {
	switch v.kind {
	case KindZero:
		return new(big.Rat)
	case KindFinite:
	default:
		return nil
	}
	r := new(big.Rat)
	if v.exp >= 0 {
		r.SetInt(new(big.Int).Lsh(v.sig, uint(v.exp)))
	} else {
		r.SetFrac(v.sig, new(big.Int).Lsh(big.NewInt(1), uint(-v.exp)))
	}
	if v.neg {
		r.Neg(r)
	}
	return r
}

// Decimal returns the exact decimal representation of a finite value.
// The second return value is false for infinities and NaNs.
// Negative zero is returned as zero.
func (v Value) Decimal() (decimal.Decimal, bool) {
	switch v.kind {
	case KindZero:
		return decimal.Zero, true
	case KindFinite:
	default:
		return decimal.Decimal{}, false
	}
	var d decimal.Decimal
	if v.exp >= 0 {
		d = decimal.NewFromBigInt(new(big.Int).Lsh(v.sig, uint(v.exp)), 0)
	} else {
		// sig * 2^-n = sig * 5^n * 10^-n
		five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-v.exp)), nil)
		d = decimal.NewFromBigInt(five.Mul(five, v.sig), int32(v.exp))
	}
	if v.neg {
		d = d.Neg()
	}
	return d, true
}

// String returns the exact decimal representation of a value if it is short enough,
// and a hex representation like "0x3p-1074" otherwise.
func (v Value) String() string {
	var builder strings.Builder
	switch v.kind {
	case KindNaN:
		return "NaN"
	case KindInf:
		if v.neg {
			return "-Inf"
		}
		return "+Inf"
	}
	if v.neg {
		builder.WriteRune('-')
	}
	switch {
	case v.kind == KindZero:
		builder.WriteRune('0')
	case mathutil.AbsInt(v.exp) <= maxDecimalStringExp:
		d, _ := v.Abs().Decimal()
		builder.WriteString(d.String())
	default:
		fmt.Fprintf(&builder, "0x%sp%d", v.sig.Text(16), v.exp)
	}
	return builder.String()
}
