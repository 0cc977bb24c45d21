// Copyright 2020 Aleksandr Demakin. All rights reserved.

package exact

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
)

func b64(v uint64) binfmt.Bits {
	return uint128.From64(v)
}

func TestDispatch(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		d        *binfmt.Descriptor
		op       backend.Op
		operands []uint64
		result   uint64
	}{
		{binfmt.Binary16, backend.Add, []uint64{0x3c00, 0x4000}, 0x4200},
		{binfmt.Binary16, backend.Add, []uint64{0x3c00, 0x1000}, 0x3c00},
		{binfmt.Binary16, backend.Add, []uint64{0x7bff, 0x4c00}, 0x7c00},
		{binfmt.Binary16, backend.Add, []uint64{0x3c00, 0xbc00}, 0x0000},
		{binfmt.Binary16, backend.Sub, []uint64{0x8000, 0x0000}, 0x8000},
		{binfmt.Binary16, backend.Mul, []uint64{0x4000, 0xc200}, 0xc600},
		{binfmt.Binary16, backend.Div, []uint64{0x3c00, 0x0000}, 0x7c00},
		{binfmt.Binary16, backend.Div, []uint64{0x0000, 0x0000}, 0x7e00},
		{binfmt.Binary16, backend.Div, []uint64{0x3c00, 0x4200}, 0x3555},
		{binfmt.Binary16, backend.Rem, []uint64{0x4500, 0x4000}, 0x3c00},
		{binfmt.Binary16, backend.Sqrt, []uint64{0xbc00}, 0x7e00},
		{binfmt.Binary16, backend.Sqrt, []uint64{0x8000}, 0x8000},
		{binfmt.Binary16, backend.Sqrt, []uint64{0x4000}, 0x3da8},
		{binfmt.Binary16, backend.MulAdd, []uint64{0x4000, 0x4200, 0x3c00}, 0x4700},
		{binfmt.Binary16, backend.Eq, []uint64{0x0000, 0x8000}, 1},
		{binfmt.Binary16, backend.Eq, []uint64{0x7e00, 0x7e00}, 0},
		{binfmt.Binary16, backend.Lt, []uint64{0x7e00, 0x3c00}, 0},
		{binfmt.Binary16, backend.Lt, []uint64{0xfc00, 0x3c00}, 1},
		{binfmt.Binary16, backend.Le, []uint64{0x3c00, 0x3c00}, 1},
		{binfmt.Binary16, backend.Neg, []uint64{0x3c00}, 0xbc00},
		{binfmt.Binary16, backend.Neg, []uint64{0x7e00}, 0xfe00},
		{binfmt.Binary16, backend.Abs, []uint64{0xbc00}, 0x3c00},
		{binfmt.Binary32, backend.Mul, []uint64{0x00800000, 0x3f000000}, 0x00400000},
		{binfmt.Binary32, backend.Add, []uint64{0x00000001, 0x00000000}, 0x00000001},
		{binfmt.GPU32, backend.Mul, []uint64{0x00800000, 0x3f000000}, 0x00000000},
		{binfmt.GPU32, backend.Add, []uint64{0x00000001, 0x00000000}, 0x00000000},
		{binfmt.GPU32, backend.Add, []uint64{0x80000001, 0x80000000}, 0x80000000},
		{binfmt.Rbj32, backend.Add, []uint64{0x40000000, 0x40000000}, 0x40800000},
		{binfmt.Rbj32, backend.Sub, []uint64{0xc0000000, 0x40000000}, 0xbf800000},
		{binfmt.Rbj32, backend.Div, []uint64{0x40000000, 0x00000000}, 0x7fffffff},
		{binfmt.Rbj32, backend.Div, []uint64{0x00000000, 0x00000000}, 0x80000000},
		{binfmt.Rbj32, backend.Lt, []uint64{0xc0000000, 0x40000000}, 1},
		{binfmt.Rbj32, backend.Neg, []uint64{0x40000000}, 0xc0000000},
		{binfmt.PDP10Float, backend.Add, []uint64{0x404000000, 0x404000000}, 0x40c000000},
		{binfmt.PDP10Float, backend.Sub, []uint64{0x404000000, 0x404000000}, 0},
		{binfmt.FP8E4M3FNUZ, backend.Add, []uint64{0x7f, 0x7f}, 0x00},
		{binfmt.FP8E4M3FNUZ, backend.Mul, []uint64{0x7f, 0x7f}, 0x00},
		{binfmt.FP8E4M3FNUZ, backend.Div, []uint64{0x40, 0x00}, 0x00},
		{binfmt.FP8E4M3FNUZ, backend.Div, []uint64{0x00, 0x00}, 0x80},
		{binfmt.Relaxed16, backend.Add, []uint64{0x7fff, 0x7fff}, 0},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			ad := New(test.d)
			a.True(ad.Supports(test.op))
			operands := make([]binfmt.Bits, len(test.operands))
			for i, op := range test.operands {
				operands[i] = b64(op)
			}
			out := ad.Dispatch(test.op, operands...)
			a.Equal(b64(test.result), out.Bits, "%s %v %x: got %s", test.d.Name(), test.op, test.operands, test.d.FormatBits(out.Bits))
			a.Zero(out.Status)
		})
	}
}

// TestUnrepresentable checks that results the format cannot hold come back as Round returns them.
func TestUnrepresentable(t *testing.T) {
	a := assert.New(t)
	d := binfmt.FP8E4M3FNUZ
	ad := New(d)
	maxFinite := d.Decode(b64(0x7f))
	tests := []struct {
		op  backend.Op
		v   binfmt.Value
		err error
	}{
		{backend.Add, maxFinite.Add(maxFinite), binfmt.ErrOverflow},
		{backend.Mul, maxFinite.Mul(maxFinite), binfmt.ErrOverflow},
	}
	for _, test := range tests {
		b, err := d.RoundChecked(test.v)
		a.ErrorIs(err, test.err)
		out := ad.Dispatch(test.op, b64(0x7f), b64(0x7f))
		a.Equal(b, out.Bits, test.op.String())
		a.Equal(d.Round(test.v), out.Bits, test.op.String())
	}
	out := ad.Dispatch(backend.Div, b64(0x40), b64(0x00))
	a.Equal(b64(0), out.Bits)
}

func TestUnsupported(t *testing.T) {
	a := assert.New(t)
	ad := New(binfmt.Binary32)
	a.Equal("exact", ad.Name())
	a.False(ad.Supports(backend.Op(100)))
	a.Equal(backend.Outcome{}, ad.Dispatch(backend.Add, b64(1)))
	a.Equal(backend.Outcome{}, ad.Dispatch(backend.Op(100), b64(1), b64(2)))
}
