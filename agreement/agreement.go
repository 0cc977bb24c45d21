// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package agreement checks that arithmetic backends agree with each other
// on edge cases and random operands of a format.
package agreement

import (
	"fmt"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
	"github.com/avdva/binfmt/backend/exact"
	"github.com/avdva/binfmt/backend/native"
	"github.com/avdva/binfmt/backend/soft"
	"github.com/avdva/binfmt/harness"
)

// DefaultRandom is the default number of random operand pairs per operation.
const DefaultRandom = 10000

// Options control a run.
type Options struct {
	// Ops to check. All operations if empty.
	Ops []backend.Op
	// Random is the number of random operands for each operation, in addition to the edge cases.
	Random int
	// Seed of the random operands.
	Seed uint64
}

// Run compares a and b for every operation in opts supported by both of them.
// Binary operations run on all pairs of edge cases and on random pairs,
// unary ones on the edge cases and random values. MulAdd runs once for every edge case addend.
// Test names are "<format>/<a>-vs-<b>/<op>".
func Run(r *harness.Runner, d *binfmt.Descriptor, a, b backend.Adapter, opts Options) {
	ops := opts.Ops
	if len(ops) == 0 {
		ops = backend.Ops()
	}
	prefix := fmt.Sprintf("%s/%s-vs-%s", d.Name(), a.Name(), b.Name())
	log := r.Logger().With("suite", prefix)
	edges := d.EdgeCases()
	width, total := d.HexDigits(), d.TotalBits()
	pairs := harness.Combined(harness.Targeted(edges), harness.Random(opts.Seed, opts.Random, total))
	singles := harness.Combined(harness.Singles(edges), harness.RandomSingles(opts.Seed, opts.Random, total))
	for _, op := range ops {
		if unsupported := unsupportedBy(op, a, b); unsupported != "" {
			log.Warn("operation skipped", "op", op.String(), "adapter", unsupported)
			continue
		}
		name := prefix + "/" + op.String()
		cmp := harness.NaNAware(d)
		if op.IsComparison() {
			cmp = harness.BitExactIgnoreStatus
		}
		switch op.Arity() {
		case 1:
			r.Compare(name, width, singles, impl(a, op), impl(b, op), cmp)
		case 2:
			r.Compare(name, width, pairs, impl(a, op), impl(b, op), cmp)
		default:
			for _, c := range edges {
				addend := fmt.Sprintf("%s/c=%s", name, d.FormatBits(c))
				r.Compare(addend, width, pairs, impl3(a, op, c), impl3(b, op, c), cmp)
			}
		}
	}
}

func unsupportedBy(op backend.Op, adapters ...backend.Adapter) string {
	for _, a := range adapters {
		if !a.Supports(op) {
			return a.Name()
		}
	}
	return ""
}

func impl(a backend.Adapter, op backend.Op) harness.Impl {
	if op.Arity() == 1 {
		return func(x, _ binfmt.Bits) backend.Outcome {
			return a.Dispatch(op, x)
		}
	}
	return func(x, y binfmt.Bits) backend.Outcome {
		return a.Dispatch(op, x, y)
	}
}

func impl3(a backend.Adapter, op backend.Op, c binfmt.Bits) harness.Impl {
	return func(x, y binfmt.Bits) backend.Outcome {
		return a.Dispatch(op, x, y, c)
	}
}

// Suite is a pair of adapters checked against each other on a format.
type Suite struct {
	Format *binfmt.Descriptor
	A, B   backend.Adapter
	Options
}

// Name returns "<format>/<a>-vs-<b>".
func (s Suite) Name() string {
	return fmt.Sprintf("%s/%s-vs-%s", s.Format.Name(), s.A.Name(), s.B.Name())
}

// Run runs the suite.
func (s Suite) Run(r *harness.Runner) {
	Run(r, s.Format, s.A, s.B, s.Options)
}

// Plan returns the standard set of suites: exact, soft and native arithmetic
// against each other for binary16, binary32 and binary64, and exact against soft
// for bfloat16 and fp8-e5m2.
func Plan(random int, seed uint64) ([]Suite, error) {
	opts := Options{Random: random, Seed: seed}
	var suites []Suite
	for _, d := range []*binfmt.Descriptor{binfmt.Binary16, binfmt.Binary32, binfmt.Binary64} {
		ex := exact.New(d)
		sf, err := soft.New(d)
		if err != nil {
			return nil, err
		}
		nt, err := native.New(d)
		if err != nil {
			return nil, err
		}
		suites = append(suites,
			Suite{Format: d, A: ex, B: sf, Options: opts},
			Suite{Format: d, A: ex, B: nt, Options: opts},
			Suite{Format: d, A: sf, B: nt, Options: opts},
		)
	}
	for _, d := range []*binfmt.Descriptor{binfmt.BFloat16, binfmt.FP8E5M2} {
		sf, err := soft.New(d)
		if err != nil {
			return nil, err
		}
		suites = append(suites, Suite{Format: d, A: exact.New(d), B: sf, Options: opts})
	}
	return suites, nil
}
