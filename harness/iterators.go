// Copyright 2020 Aleksandr Demakin. All rights reserved.

package harness

import (
	"iter"
	"math/rand/v2"

	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/internal/bitfield"
)

// Iterator yields operand pairs.
type Iterator = iter.Seq2[binfmt.Bits, binfmt.Bits]

// Targeted yields every ordered pair of values, including pairs of a value with itself.
func Targeted(values []binfmt.Bits) Iterator {
	return func(yield func(binfmt.Bits, binfmt.Bits) bool) {
		for _, a := range values {
			for _, b := range values {
				if !yield(a, b) {
					return
				}
			}
		}
	}
}

// Singles yields each value paired with zero, for unary operations.
func Singles(values []binfmt.Bits) Iterator {
	return func(yield func(binfmt.Bits, binfmt.Bits) bool) {
		for _, a := range values {
			if !yield(a, uint128.Zero) {
				return
			}
		}
	}
}

// Random yields 'count' pairs of uniformly distributed patterns of 'totalBits' bits.
// The sequence depends only on the seed.
func Random(seed uint64, count, totalBits int) Iterator {
	return func(yield func(binfmt.Bits, binfmt.Bits) bool) {
		next := randomBits(seed, totalBits)
		for i := 0; i < count; i++ {
			a := next()
			if !yield(a, next()) {
				return
			}
		}
	}
}

// RandomSingles yields 'count' random patterns paired with zero.
func RandomSingles(seed uint64, count, totalBits int) Iterator {
	return func(yield func(binfmt.Bits, binfmt.Bits) bool) {
		next := randomBits(seed, totalBits)
		for i := 0; i < count; i++ {
			if !yield(next(), uint128.Zero) {
				return
			}
		}
	}
}

// Combined yields the pairs of all iterators in order.
func Combined(its ...Iterator) Iterator {
	return func(yield func(binfmt.Bits, binfmt.Bits) bool) {
		for _, it := range its {
			for a, b := range it {
				if !yield(a, b) {
					return
				}
			}
		}
	}
}

func randomBits(seed uint64, totalBits int) func() binfmt.Bits {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	mask := bitfield.Mask(totalBits)
	return func() binfmt.Bits {
		return uint128.New(r.Uint64(), r.Uint64()).And(mask)
	}
}
