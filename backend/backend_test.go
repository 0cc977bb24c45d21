// Copyright 2020 Aleksandr Demakin. All rights reserved.

package backend

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
)

func TestOps(t *testing.T) {
	a := assert.New(t)
	ops := Ops()
	a.Len(ops, 12)
	arity := map[int]int{}
	for _, op := range ops {
		arity[op.Arity()]++
		parsed, err := ParseOp(op.String())
		a.NoError(err)
		a.Equal(op, parsed)
	}
	a.Equal(map[int]int{1: 3, 2: 8, 3: 1}, arity)
	a.Equal("mulAdd", MulAdd.String())
	a.Equal("Op(42)", Op(42).String())
	a.True(Lt.IsComparison())
	a.False(Sqrt.IsComparison())
}

func TestParseOps(t *testing.T) {
	a := assert.New(t)
	tests := []struct {
		s   string
		ops []Op
		err bool
	}{
		{"add", []Op{Add}, false},
		{"add, SQRT,muladd", []Op{Add, Sqrt, MulAdd}, false},
		{"", nil, false},
		{"add,pow", nil, true},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			ops, err := ParseOps(test.s)
			if test.err {
				a.Error(err)
				return
			}
			a.NoError(err)
			a.Equal(test.ops, ops)
		})
	}
}

func TestStatusAndOutcome(t *testing.T) {
	a := assert.New(t)
	a.Equal("none", Status(0).String())
	a.Equal("inexact|overflow", (FlagInexact | FlagOverflow).String())
	a.Equal("invalid", FlagInvalid.String())
	a.Equal(uint128.From64(1), Bool(true).Bits)
	a.Equal(Outcome{}, Bool(false))
}

func TestValidate(t *testing.T) {
	a := assert.New(t)
	one := uint128.From64(1)
	a.NoError(Validate(Add, []binfmt.Bits{one, one}))
	a.NoError(Validate(Sqrt, []binfmt.Bits{one}))
	a.NoError(Validate(MulAdd, []binfmt.Bits{one, one, one}))
	a.Error(Validate(MulAdd, []binfmt.Bits{one}))
	a.Error(Validate(Op(-1), nil))
}
