// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package native implements a backend using Go floating point types:
// float64 for binary64, float32 for binary32 and float32 arithmetic
// on float16 values for binary16.
// float32 has more than twice the precision of binary16 plus two bits,
// so rounding a float32 result to binary16 gives the correctly rounded result
// of add, sub, mul, div and sqrt.
package native

import (
	"fmt"
	"math"

	"github.com/x448/float16"
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
)

type width int

const (
	w16 width = 16
	w32 width = 32
	w64 width = 64
)

// Adapter performs operations with the hardware floating point unit.
type Adapter struct {
	d *binfmt.Descriptor
	w width
}

// New returns a native adapter for d, which must be one of
// binfmt.Binary16, binfmt.Binary32 or binfmt.Binary64.
func New(d *binfmt.Descriptor) (*Adapter, error) {
	var w width
	switch d {
	case binfmt.Binary16:
		w = w16
	case binfmt.Binary32:
		w = w32
	case binfmt.Binary64:
		w = w64
	default:
		return nil, fmt.Errorf("%s: no native type", d.Name())
	}
	return &Adapter{d: d, w: w}, nil
}

// Name returns "native".
func (a *Adapter) Name() string {
	return "native"
}

// Supports returns true for all operations, except MulAdd for binary16 and binary32:
// a fused multiply-add in a wider type rounds twice.
func (a *Adapter) Supports(op backend.Op) bool {
	if op == backend.MulAdd {
		return a.w == w64
	}
	return op.Valid()
}

// Dispatch performs op. The status is always zero.
func (a *Adapter) Dispatch(op backend.Op, operands ...binfmt.Bits) backend.Outcome {
	if !a.Supports(op) || backend.Validate(op, operands) != nil {
		return backend.Outcome{}
	}
	switch op {
	case backend.Neg, backend.Abs:
		return backend.Outcome{Bits: signOp(op, operands[0], a.d.SignMask())}
	}
	switch a.w {
	case w64:
		args := make([]float64, len(operands))
		for i, b := range operands {
			args[i] = math.Float64frombits(b.Lo)
		}
		return outcome64(op, args)
	default:
		args := make([]float32, len(operands))
		for i, b := range operands {
			if a.w == w16 {
				args[i] = float16.Frombits(uint16(b.Lo)).Float32()
			} else {
				args[i] = math.Float32frombits(uint32(b.Lo))
			}
		}
		r, isBool, ok := dispatch32(op, args)
		switch {
		case isBool:
			return backend.Bool(ok)
		case a.w == w16:
			return backend.Outcome{Bits: uint128.From64(uint64(float16.Fromfloat32(r).Bits()))}
		default:
			return backend.Outcome{Bits: uint128.From64(uint64(math.Float32bits(r)))}
		}
	}
}

// signOp flips or clears the sign bit. All native formats fit in 64 bits.
func signOp(op backend.Op, b, signMask binfmt.Bits) binfmt.Bits {
	if op == backend.Neg {
		return b.Xor(signMask)
	}
	return uint128.From64(b.Lo &^ signMask.Lo)
}

func outcome64(op backend.Op, args []float64) backend.Outcome {
	var r float64
	switch op {
	case backend.Add:
		r = args[0] + args[1]
	case backend.Sub:
		r = args[0] - args[1]
	case backend.Mul:
		r = args[0] * args[1]
	case backend.Div:
		r = args[0] / args[1]
	case backend.Rem:
		r = math.Remainder(args[0], args[1])
	case backend.Sqrt:
		r = math.Sqrt(args[0])
	case backend.MulAdd:
		r = fma(args[0], args[1], args[2])
	case backend.Eq:
		return backend.Bool(args[0] == args[1])
	case backend.Lt:
		return backend.Bool(args[0] < args[1])
	case backend.Le:
		return backend.Bool(args[0] <= args[1])
	}
	return backend.Outcome{Bits: uint128.From64(math.Float64bits(r))}
}

// dispatch32 returns either an arithmetic result or, for comparisons, isBool and the comparison result.
func dispatch32(op backend.Op, args []float32) (r float32, isBool, ok bool) {
	switch op {
	case backend.Add:
		r = args[0] + args[1]
	case backend.Sub:
		r = args[0] - args[1]
	case backend.Mul:
		r = float32(args[0] * args[1])
	case backend.Div:
		r = args[0] / args[1]
	case backend.Rem:
		// the remainder is exact, so the conversion does not round.
		r = float32(math.Remainder(float64(args[0]), float64(args[1])))
	case backend.Sqrt:
		r = float32(math.Sqrt(float64(args[0])))
	case backend.Eq:
		return 0, true, args[0] == args[1]
	case backend.Lt:
		return 0, true, args[0] < args[1]
	case backend.Le:
		return 0, true, args[0] <= args[1]
	}
	return r, false, false
}

// fma returns x*y+z rounded once.
// Without hardware support, math.FMA evaluates x*y+z directly if z is zero, so a non-zero product
// rounding to zero gets the sign of the sum of zeros instead of its own.
func fma(x, y, z float64) float64 {
	r := math.FMA(x, y, z)
	if r == 0 && z == 0 && x != 0 && y != 0 && !math.IsInf(x, 0) && !math.IsInf(y, 0) && !math.IsNaN(x) && !math.IsNaN(y) {
		return math.Copysign(0, x*y)
	}
	return r
}
