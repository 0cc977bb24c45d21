// Copyright 2020 Aleksandr Demakin. All rights reserved.

package mathutil

import (
	"math/big"
	"unsafe"

	"lukechampine.com/uint128"
)

func AbsInt(val int) int {
	mask := val >> (unsafe.Sizeof(int(0))*8 - 1)
	return (val + mask) ^ mask
}

// ShiftRightJam shifts x right by n bits. If any of the shifted out bits is set,
// the lowest bit of the result is set ("sticky" bit).
// Shifts of 64 or more bits return 1 for a non-zero x.
func ShiftRightJam(x uint64, n uint) uint64 {
	switch {
	case n == 0:
		return x
	case n >= 64:
		if x != 0 {
			return 1
		}
		return 0
	}
	r := x >> n
	if x<<(64-n) != 0 {
		r |= 1
	}
	return r
}

// RoundShiftEven returns x / 2^n rounded to the nearest integer, ties to even.
// x must be non-negative.
func RoundShiftEven(x *big.Int, n uint) *big.Int {
	if n == 0 {
		return new(big.Int).Set(x)
	}
	q := new(big.Int).Rsh(x, n)
	// the highest dropped bit decides, lower bits and the parity of q break ties.
	if x.Bit(int(n-1)) == 0 {
		return q
	}
	if q.Bit(0) == 1 || lowBitsNonZero(x, n-1) {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// RoundShiftOdd returns x / 2^n truncated, with the lowest bit set
// if anything non-zero was shifted out (round to odd).
func RoundShiftOdd(x *big.Int, n uint) *big.Int {
	q := new(big.Int).Rsh(x, n)
	if n > 0 && lowBitsNonZero(x, n) {
		q.SetBit(q, 0, 1)
	}
	return q
}

// lowBitsNonZero reports whether any of the n lowest bits of x is set.
func lowBitsNonZero(x *big.Int, n uint) bool {
	tz := x.TrailingZeroBits()
	return x.Sign() != 0 && tz < n
}

// Sqrt128 returns floor(sqrt(n)) and whether the root is exact.
func Sqrt128(n uint128.Uint128) (root uint64, exact bool) {
	if n.IsZero() {
		return 0, true
	}
	// bit is the highest power of four not greater than n.
	shift := uint((127 - n.LeadingZeros()) &^ 1)
	bit := uint128.From64(1).Lsh(shift)
	res := uint128.Zero
	for !bit.IsZero() {
		t := res.Add(bit)
		if n.Cmp(t) >= 0 {
			n = n.Sub(t)
			res = res.Rsh(1).Add(bit)
		} else {
			res = res.Rsh(1)
		}
		bit = bit.Rsh(2)
	}
	return res.Lo, n.IsZero()
}

func Int64Sign(v int64) int {
	if v == 0 {
		return 0
	}
	return [...]int{1, -1}[uint64(v)>>63]
}
