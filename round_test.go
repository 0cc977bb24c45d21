// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt/internal/bitfield"
)

var unsigned15 = MustNew("unsigned15", Format{ExpBits: 5, ExpOffset: 10, MantBits: 10, TotalBits: 15}, Encoding{
	Sign:         SignMagnitude,
	ImplicitBit:  true,
	Bias:         AutoBias,
	NegativeZero: NegativeZeroAbsent,
	NaN:          NaNReservedExponent,
	Inf:          InfReservedExponent,
})

func TestRoundBinary16(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		v Value
		b uint64
	}{
		{MustParseValue("1"), 0x3c00},
		{MustParseValue("3"), 0x4200},
		{MustParseValue("-2"), 0xc000},
		{MustParseValue("0.1"), 0x2e66},
		{MustParseValue("5.5"), 0x4580},
		{MustParseValue("2049"), 0x6800},
		{MustParseValue("2051"), 0x6802},
		{MustParseValue("65504"), 0x7bff},
		{MustParseValue("65519"), 0x7bff},
		{MustParseValue("65520"), 0x7c00},
		{MustParseValue("-65520"), 0xfc00},
		{MustParseValue("1e10"), 0x7c00},
		{MustParseValue("0.00001"), 0x00a8},
		{MustParseValue("0.0000001"), 0x0002},
		{MustParseValue("-0"), 0x8000},
		{MustParseValue("inf"), 0x7c00},
		{MustParseValue("-inf"), 0xfc00},
		{MustParseValue("nan"), 0x7e00},
		{finite(false, 1, -25), 0x0000},
		{finite(true, 1, -25), 0x8000},
		{finite(false, 1<<15+1, -40), 0x0001},
		{finite(false, 3, -26), 0x0001},
		{finite(false, 1, -1000), 0x0000},
		{finite(false, 2047, -25), 0x0400},
		{finite(false, 4095, -26), 0x0400},
		{finite(false, 2047, 1000), 0x7c00},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			b, err := Binary16.RoundChecked(test.v)
			a.NoError(err)
			a.Equal(bits64(test.b), b, "%s: expected 0x%04x, got %s", test.v, test.b, Binary16.FormatBits(b))
		})
	}
}

func TestRoundChecked(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		d   *Descriptor
		v   Value
		b   uint64
		err error
	}{
		{FP8E4M3FNUZ, NaN(), 0x80, nil},
		{FP8E4M3FNUZ, Inf(false), 0, ErrNoInf},
		{FP8E4M3FNUZ, Zero(true), 0, nil},
		{FP8E4M3FNUZ, FromInt64(-240), 0xff, nil},
		{FP8E4M3FNUZ, FromInt64(247), 0x7f, nil},
		{FP8E4M3FNUZ, FromInt64(248), 0, ErrOverflow},
		{FP8E4M3FNUZ, FromInt64(-1000), 0, ErrOverflow},
		{Relaxed16, NaN(), 0, ErrNoNaN},
		{Relaxed16, Inf(true), 0, ErrNoInf},
		{Relaxed16, FromInt64(131039), 0x7fff, nil},
		{Relaxed16, FromInt64(131040), 0, ErrOverflow},
		{Relaxed16, Zero(true), 0, nil},
		{unsigned15, FromInt64(-1), 0, ErrNoSign},
		{unsigned15, Inf(true), 0, ErrNoSign},
		{unsigned15, Inf(false), 0x7c00, nil},
		{unsigned15, Zero(true), 0, nil},
		{unsigned15, FromInt64(1), 0x3c00, nil},
		{Rbj32, NaN(), 0x80000000, nil},
		{Rbj32, Inf(false), 0x7fffffff, nil},
		{Rbj32, Inf(true), 0x80000001, nil},
		{Rbj32, Zero(true), 0, nil},
		{Rbj32, FromInt64(-1), 0xc0000000, nil},
		{Rbj32, finite(false, 1<<25-3, 103), 0x7ffffffe, nil},
		{Rbj32, finite(false, 1<<24-1, 104), 0x7fffffff, nil},
		{Rbj32, finite(true, 1<<24-1, 104), 0x80000001, nil},
		{Rbj32, finite(false, 1, 1000), 0x7fffffff, nil},
		{PDP10Float, FromInt64(-1), 0xbfc000000, nil},
		{PDP10Float, finite(false, 1, 1000), 0, ErrOverflow},
		{PDP10Float, NaN(), 0, ErrNoNaN},
		{CDC6600Float, Zero(true), 0xfffffffffffffff, nil},
		{CDC6600Float, Inf(false), 0, ErrNoInf},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			b, err := test.d.RoundChecked(test.v)
			a.True(errors.Is(err, test.err), "expected %v, got %v", test.err, err)
			a.Equal(bits64(test.b), b)
			a.Equal(b, test.d.Round(test.v))
		})
	}
}

// TestRoundTripExhaustive checks Round(Decode(b)) == b for every pattern of small formats.
func TestRoundTripExhaustive(t *testing.T) {
	for _, d := range []*Descriptor{Binary16, BFloat16, FP8E5M2, FP8E4M3, FP8E4M3FNUZ, Relaxed16, unsigned15} {
		t.Run(d.Name(), func(t *testing.T) {
			var failed int
			var first string
			for i := uint64(0); i < 1<<uint(d.TotalBits()); i++ {
				b := bits64(i)
				v := d.Decode(b)
				r := d.Round(v)
				var ok bool
				switch {
				case v.IsNaN():
					ok = d.Decode(r).IsNaN()
				case v.IsZero() && d.Encoding().NegativeZero == NegativeZeroAbsent:
					ok = d.Decode(r).Identical(v)
				default:
					ok = r.Equals(b)
				}
				if !ok {
					if failed == 0 {
						first = fmt.Sprintf("%s -> %s -> %s", d.FormatBits(b), v, d.FormatBits(r))
					}
					failed++
				}
			}
			assert.Zero(t, failed, "first failure: %s", first)
		})
	}
}

// randomCanonical returns a random pattern with the explicit leading bit
// consistent with the exponent.
func randomCanonical(r *rand.Rand, d *Descriptor) Bits {
	f := d.Format()
	neg := f.SignBits > 0 && r.IntN(2) == 1
	exp := r.Uint64() & d.MaxExponent()
	mant := uint128.New(r.Uint64(), r.Uint64()).And(bitfield.Mask(f.MantBits))
	if r.IntN(8) == 0 {
		exp = 0
	}
	if !d.Encoding().ImplicitBit {
		if exp == 0 {
			mant = mant.And(bitfield.Not(d.leadingBit))
		} else {
			mant = mant.Or(d.leadingBit)
		}
	}
	return d.Compose(neg, exp, mant)
}

func TestRoundTripSampled(t *testing.T) {
	for _, d := range []*Descriptor{Binary32, Binary64, Binary128, ExtFloat80, Rbj32, PDP10Float, CDC6600Float, GPU32} {
		t.Run(d.Name(), func(t *testing.T) {
			r := rand.New(rand.NewPCG(42, uint64(d.TotalBits())))
			var failed int
			var first string
			for i := 0; i < 20000; i++ {
				b := randomCanonical(r, d)
				v := d.Decode(b)
				rb := d.Round(v)
				ok := rb.Equals(b)
				if v.IsNaN() {
					ok = d.Decode(rb).IsNaN()
				}
				if !ok {
					if failed == 0 {
						first = fmt.Sprintf("%s -> %s -> %s", d.FormatBits(b), v, d.FormatBits(rb))
					}
					failed++
				}
			}
			assert.Zero(t, failed, "first failure: %s", first)
		})
	}
}

// TestRoundTiesToEven rounds exact midpoints of adjacent patterns.
func TestRoundTiesToEven(t *testing.T) {
	formats := []*Descriptor{
		Binary16, BFloat16, Binary32, Binary64, Binary128, ExtFloat80,
		FP8E5M2, FP8E4M3, FP8E4M3FNUZ, Rbj32, PDP10Float, CDC6600Float,
	}
	two := big.NewRat(2, 1)
	for _, d := range formats {
		t.Run(d.Name(), func(t *testing.T) {
			a := assert.New(t)
			one := d.Round(FromInt64(1))
			maxFinite := d.compose(false, d.maxFinite, d.maxFiniteMant())
			for _, lo := range []Bits{bits64(1), bits64(2), d.fracMask, one, one.Add64(1), maxFinite.Sub64(1)} {
				hi := lo.Add64(1)
				mid := new(big.Rat).Add(d.Decode(lo).Rat(), d.Decode(hi).Rat())
				mid.Quo(mid, two)
				expected := hi
				if lo.Lo&1 == 0 {
					expected = lo
				}
				expected = d.Round(d.Decode(expected))
				v := FromRat(mid, WorkingPrecision)
				a.Equal(expected, d.Round(v), "%s: midpoint of %s and %s", d.Name(), d.FormatBits(lo), d.FormatBits(hi))
				a.Equal(d.Negate(expected), d.Round(v.Neg()), "%s: negative midpoint of %s", d.Name(), d.FormatBits(lo))
			}
		})
	}
}

func TestRoundOverflowTie(t *testing.T) {
	for _, d := range []*Descriptor{Binary16, Binary32, Binary64, Binary128, ExtFloat80, FP8E5M2} {
		t.Run(d.Name(), func(t *testing.T) {
			a := assert.New(t)
			maxFinite := d.compose(false, d.maxFinite, d.maxFiniteMant())
			top := d.Decode(maxFinite)
			ulp := new(big.Rat).Sub(top.Rat(), d.Decode(maxFinite.Sub64(1)).Rat())
			half := new(big.Rat).Quo(ulp, big.NewRat(2, 1))
			above := FromRat(new(big.Rat).Add(top.Rat(), half), WorkingPrecision)
			a.True(d.Decode(d.Round(above)).IsInf(1))
			a.True(d.Decode(d.Round(above.Neg())).IsInf(-1))
			below := FromRat(new(big.Rat).Add(top.Rat(), new(big.Rat).Quo(half, big.NewRat(2, 1))), WorkingPrecision)
			a.Equal(maxFinite, d.Round(below))
		})
	}
}

func TestSpecialValueClosure(t *testing.T) {
	for _, d := range Catalog() {
		t.Run(d.Name(), func(t *testing.T) {
			a := assert.New(t)
			enc := d.Encoding()
			if enc.NaN != NaNNone {
				b, err := d.RoundChecked(NaN())
				a.NoError(err)
				a.True(d.Decode(b).IsNaN())
				a.Equal(ClassNaN, d.Classify(b))
			}
			if enc.Inf != InfNone {
				a.True(d.Decode(d.Round(Inf(false))).IsInf(1))
				a.True(d.Decode(d.Round(Inf(true))).IsInf(-1))
			}
			z := d.Decode(d.Round(Zero(true)))
			a.True(z.IsZero())
			a.Equal(enc.NegativeZero == NegativeZeroExists, z.Signbit())
		})
	}
}

func TestFlush(t *testing.T) {
	a := assert.New(t)
	a.True(GPU32.FlushesInput())
	a.True(GPU32.FlushesOutput())
	a.Equal(bits64(0), GPU32.FlushInput(bits64(1)))
	a.Equal(bits64(0x80000000), GPU32.FlushInput(bits64(0x807fffff)))
	a.Equal(bits64(0x00800000), GPU32.FlushOutput(bits64(0x00800000)))

	a.False(Binary32.FlushesInput())
	a.False(Binary32.FlushesOutput())
	a.Equal(bits64(1), Binary32.FlushInput(bits64(1)))
	a.Equal(bits64(1), Binary32.FlushOutput(bits64(1)))

	a.Equal(bits64(0), Relaxed16.FlushOutput(bits64(0x8001)))

	sub := PDP10Float.Compose(false, 0, bits64(1))
	a.False(PDP10Float.FlushesInput())
	a.True(PDP10Float.FlushesOutput())
	a.Equal(sub, PDP10Float.FlushInput(sub))
	a.Equal(bits64(0), PDP10Float.FlushOutput(sub))
}

func TestRoundDoesNotMutate(t *testing.T) {
	r := require.New(t)
	v := MustParseValue("0.1")
	sig := v.Significand()
	for _, d := range Catalog() {
		d.Round(v)
	}
	r.Equal(0, sig.Cmp(v.Significand()))
}
