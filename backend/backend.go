// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package backend defines the vocabulary shared by arithmetic backends:
// operations, outcomes with status flags, and the adapter interface.
// It knows nothing about how a backend computes its results.
package backend

import (
	"fmt"
	"strings"

	"lukechampine.com/uint128"

	"github.com/avdva/binfmt"
)

// Op is an operation under test.
type Op int

// Operations grouped by arity: binary arithmetic, binary comparisons,
// unary operations, and the fused multiply-add.
const (
	Add Op = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Lt
	Le
	Sqrt
	Neg
	Abs
	MulAdd
	numOps
)

var opNames = [...]string{
	Add:    "add",
	Sub:    "sub",
	Mul:    "mul",
	Div:    "div",
	Rem:    "rem",
	Eq:     "eq",
	Lt:     "lt",
	Le:     "le",
	Sqrt:   "sqrt",
	Neg:    "neg",
	Abs:    "abs",
	MulAdd: "mulAdd",
}

func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// Arity returns the number of operands of op.
func (op Op) Arity() int {
	switch {
	case op >= Sqrt && op <= Abs:
		return 1
	case op == MulAdd:
		return 3
	default:
		return 2
	}
}

// Valid returns true for known operations.
func (op Op) Valid() bool {
	return op >= 0 && op < numOps
}

// IsComparison returns true for operations returning 0 or 1 instead of a float.
func (op Op) IsComparison() bool {
	return op == Eq || op == Lt || op == Le
}

// Ops returns all operations in the declaration order.
func Ops() []Op {
	result := make([]Op, 0, numOps)
	for op := Add; op < numOps; op++ {
		result = append(result, op)
	}
	return result
}

// ParseOp returns the operation by its name, case-insensitively.
func ParseOp(s string) (Op, error) {
	for op, name := range opNames {
		if strings.EqualFold(name, s) {
			return Op(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", s)
}

// ParseOps parses a comma-separated list of operations.
func ParseOps(s string) ([]Op, error) {
	var result []Op
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); len(name) == 0 {
			continue
		}
		op, err := ParseOp(name)
		if err != nil {
			return nil, err
		}
		result = append(result, op)
	}
	return result, nil
}

// Status is a set of IEEE 754 exception flags.
type Status uint8

// Exception flags. Backends that do not track exceptions report zero.
const (
	FlagInexact Status = 1 << iota
	FlagUnderflow
	FlagOverflow
	FlagDivByZero
	FlagInvalid
)

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for i, name := range []string{"inexact", "underflow", "overflow", "divbyzero", "invalid"} {
		if s&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// Outcome is the result of an operation.
// Comparisons return 0 or 1 in Bits.
type Outcome struct {
	Bits   binfmt.Bits
	Status Status
}

// Bool returns the outcome of a comparison.
func Bool(b bool) Outcome {
	if b {
		return Outcome{Bits: uint128.From64(1)}
	}
	return Outcome{}
}

// Adapter is an arithmetic backend bound to one format.
// Dispatch returns the zero Outcome for operations the adapter does not support,
// callers must check Supports first.
type Adapter interface {
	Name() string
	Supports(op Op) bool
	Dispatch(op Op, operands ...binfmt.Bits) Outcome
}

// Validate checks the number of operands for op.
func Validate(op Op, operands []binfmt.Bits) error {
	if !op.Valid() {
		return fmt.Errorf("unknown operation %v", op)
	}
	if len(operands) != op.Arity() {
		return fmt.Errorf("%v needs %d operands, got %d", op, op.Arity(), len(operands))
	}
	return nil
}
