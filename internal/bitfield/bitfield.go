// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package bitfield extracts and packs unsigned fields of a 128-bit word.
// It knows nothing about floating-point semantics.
package bitfield

import (
	"lukechampine.com/uint128"
)

// Width is the storage width in bits.
const Width = 128

// Word is the storage type for all bit patterns.
type Word = uint128.Uint128

// Mask returns a word with the low 'width' bits set.
func Mask(width int) Word {
	switch {
	case width <= 0:
		return uint128.Zero
	case width >= Width:
		return uint128.Max
	default:
		return uint128.Max.Rsh(uint(Width - width))
	}
}

// Extract returns (w >> offset) & (1<<width - 1). It returns 0 for width == 0.
func Extract(w Word, offset, width int) Word {
	if width == 0 {
		return uint128.Zero
	}
	return w.Rsh(uint(offset)).And(Mask(width))
}

// Extract64 is like Extract, but returns the low 64 bits of the field.
// Callers use it for fields known to be narrower than 64 bits.
func Extract64(w Word, offset, width int) uint64 {
	return Extract(w, offset, width).Lo
}

// Pack ORs value << offset into acc.
func Pack(acc, value Word, offset int) Word {
	return acc.Or(value.Lsh(uint(offset)))
}

// Pack64 is Pack for a 64-bit field value.
func Pack64(acc Word, value uint64, offset int) Word {
	return Pack(acc, uint128.From64(value), offset)
}

// Bit returns a word with only bit n set.
func Bit(n int) Word {
	return uint128.From64(1).Lsh(uint(n))
}

// Not returns the bitwise complement of w.
func Not(w Word) Word {
	return w.Xor(uint128.Max)
}

// Neg returns the two's complement negation of w modulo 2^width.
func Neg(w Word, width int) Word {
	return Not(w).AddWrap64(1).And(Mask(width))
}
