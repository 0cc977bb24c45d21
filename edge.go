// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

import (
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt/internal/bitfield"
)

// edgeSet is an ordered set of patterns.
type edgeSet struct {
	seen  map[Bits]struct{}
	items []Bits
}

func (s *edgeSet) add(b Bits) {
	if s.seen == nil {
		s.seen = make(map[Bits]struct{})
	}
	if _, found := s.seen[b]; found {
		return
	}
	s.seen[b] = struct{}{}
	s.items = append(s.items, b)
}

// EdgeCases returns the boundary patterns of the format: zeros, infinities, NaNs,
// the extremes of subnormal and normal ranges, small powers of two and their neighbours.
// Formats with an explicit leading bit also get non-canonical patterns.
// The result has no duplicates and is the same for every call.
func (d *Descriptor) EdgeCases() []Bits {
	var s edgeSet
	zero := uint128.Zero
	one := uint128.From64(1)
	jbit := d.leadingBit
	allMant := bitfield.Mask(d.f.MantBits)
	signed := func(exp uint64, mant Bits) {
		s.add(d.compose(false, exp, mant))
		if !d.signMask.IsZero() {
			s.add(d.compose(true, exp, mant))
		}
	}
	// finite adds a positive finite pattern if its exponent is in range.
	finite := func(exp int, mant Bits) {
		if exp >= 1 && exp <= int(d.maxFinite) {
			s.add(d.compose(false, uint64(exp), mant))
		}
	}

	s.add(zero)
	if d.enc.NegativeZero == NegativeZeroExists {
		s.add(d.compose(true, 0, zero))
	}
	if b, err := d.infBits(false); err == nil {
		s.add(b)
	}
	if b, err := d.infBits(true); err == nil {
		s.add(b)
	}
	if qnan, err := d.nanBits(); err == nil {
		s.add(qnan)
		s.add(d.Negate(qnan))
	}
	if d.enc.NaN == NaNReservedExponent {
		quiet := bitfield.Bit(d.precision - 1)
		if quiet.Cmp64(1) > 0 {
			// signaling NaNs with the smallest and the largest payload.
			s.add(d.compose(false, d.maxExp, jbit.Or(one)))
			s.add(d.compose(false, d.maxExp, jbit.Or(quiet.Sub64(1))))
		}
		s.add(d.compose(false, d.maxExp, allMant))
	}

	signed(0, one)
	signed(0, d.fracMask)
	signed(1, jbit)
	signed(d.maxFinite, d.maxFiniteMant())

	if d.bias >= 1 && d.bias <= int(d.maxFinite) {
		signed(uint64(d.bias), jbit)
	}
	finite(d.bias+1, jbit)
	finite(d.bias-1, jbit)
	finite(d.bias, jbit.Or(one))
	finite(d.bias-1, allMant)
	finite(1, jbit.Or(one))
	// machine epsilon, 2^-p.
	finite(d.bias-d.precision, jbit)
	finite(int(d.maxFinite), jbit)

	if !d.enc.ImplicitBit {
		d.addNonCanonical(&s)
	}
	return s.items
}

func (d *Descriptor) maxFiniteMant() Bits {
	mant := bitfield.Mask(d.f.MantBits)
	if d.enc.Inf == InfIntegerExtremes && d.compose(false, d.maxFinite, mant).Equals(d.maxInt) {
		mant = mant.Sub64(1)
	}
	return mant
}

// addNonCanonical adds unnormals, pseudo-denormals, pseudo-infinities and pseudo-NaNs.
func (d *Descriptor) addNonCanonical(s *edgeSet) {
	one := uint128.From64(1)
	jbit := d.leadingBit
	frac := d.fracMask
	for _, exp := range []uint64{1, uint64(d.bias), d.maxFinite} {
		if exp < 1 || exp > d.maxFinite {
			continue
		}
		s.add(d.compose(false, exp, uint128.Zero))
		s.add(d.compose(false, exp, frac))
		s.add(d.compose(false, exp, one))
		s.add(d.compose(true, exp, frac))
	}
	s.add(d.compose(false, 0, jbit))
	s.add(d.compose(false, 0, jbit.Or(one)))
	s.add(d.compose(false, 0, jbit.Or(frac)))
	s.add(d.compose(true, 0, jbit.Or(frac)))
	if d.enc.Inf == InfReservedExponent || d.enc.NaN == NaNReservedExponent {
		s.add(d.compose(false, d.maxExp, uint128.Zero))
		s.add(d.compose(true, d.maxExp, uint128.Zero))
		s.add(d.compose(false, d.maxExp, bitfield.Bit(d.precision-1)))
		s.add(d.compose(false, d.maxExp, one))
	}
}
