// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package exact implements a backend for every format: operands are decoded
// into exact values, the operation is computed without rounding
// (or with rounding to odd at binfmt.WorkingPrecision bits), and the result is rounded
// back into the format. Subnormal flushing follows the format's encoding.
package exact

import (
	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
	"github.com/avdva/binfmt/internal/logger"
)

// Adapter is the exact math backend for one format.
type Adapter struct {
	d *binfmt.Descriptor
}

// New returns an exact adapter for d.
func New(d *binfmt.Descriptor) *Adapter {
	return &Adapter{d: d}
}

// Name returns "exact".
func (a *Adapter) Name() string {
	return "exact"
}

// Supports returns true for every known operation.
func (a *Adapter) Supports(op backend.Op) bool {
	return op.Valid()
}

// Dispatch performs op. The status of the outcome is always zero.
// Results the format cannot represent, like overflows in formats without infinities,
// are returned as the all-zero pattern, the way Round does.
func (a *Adapter) Dispatch(op backend.Op, operands ...binfmt.Bits) backend.Outcome {
	if err := backend.Validate(op, operands); err != nil {
		return backend.Outcome{}
	}
	d := a.d
	switch op {
	case backend.Neg:
		return backend.Outcome{Bits: d.Negate(operands[0])}
	case backend.Abs:
		return backend.Outcome{Bits: d.Abs(operands[0])}
	}
	args := make([]binfmt.Value, len(operands))
	for i, b := range operands {
		args[i] = d.Decode(d.FlushInput(b))
	}
	var result binfmt.Value
	switch op {
	case backend.Eq:
		return backend.Bool(args[0].Equal(args[1]))
	case backend.Lt:
		c, ok := binfmt.Compare(args[0], args[1])
		return backend.Bool(ok && c < 0)
	case backend.Le:
		c, ok := binfmt.Compare(args[0], args[1])
		return backend.Bool(ok && c <= 0)
	case backend.Add:
		result = args[0].Add(args[1])
	case backend.Sub:
		result = args[0].Sub(args[1])
	case backend.Mul:
		result = args[0].Mul(args[1])
	case backend.Div:
		result = args[0].Quo(args[1], binfmt.WorkingPrecision)
	case backend.Rem:
		result = args[0].Rem(args[1])
	case backend.Sqrt:
		result = args[0].Sqrt(binfmt.WorkingPrecision)
	case backend.MulAdd:
		result = args[0].MulAdd(args[1], args[2])
	}
	b, err := d.RoundChecked(result)
	if err != nil {
		logger.Log.Debug("unrepresentable result", "format", d.Name(), "op", op.String(),
			"value", result.String(), "err", err.Error())
	}
	return backend.Outcome{Bits: d.FlushOutput(b)}
}
