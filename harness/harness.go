// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package harness runs two implementations of an operation on the same inputs
// and reports where their outputs differ.
// The harness does not know what backs an implementation: both are opaque
// functions from a pair of bit patterns to an outcome.
package harness

import (
	"fmt"
	"io"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
)

// MaxReportedFailures is the maximum number of failures printed and kept in a Result.
const MaxReportedFailures = 10

// Impl computes an outcome for a pair of operands. Unary operations ignore the second one.
type Impl func(a, b binfmt.Bits) backend.Outcome

// Failure is an input pair the implementations disagree on.
type Failure struct {
	A, B       binfmt.Bits
	OutA, OutB backend.Outcome
}

// Result holds the counters of a single comparison run.
type Result struct {
	Name     string
	Total    int
	Passed   int
	Failed   int
	Failures []Failure
}

// Compare runs implA and implB on every pair yielded by it, compares the outcomes with cmp
// and writes a report to w. Bit patterns are printed with hexWidth digits.
// The report is a line
//
//	<name>: <passed>/<total> passed[ (<failed> FAILED)]
//
// followed by a line for each of the first MaxReportedFailures failures.
func Compare(w io.Writer, name string, hexWidth int, it Iterator, implA, implB Impl, cmp Comparator) Result {
	r := Result{Name: name}
	for a, b := range it {
		r.Total++
		outA, outB := implA(a, b), implB(a, b)
		if cmp(outA, outB) {
			r.Passed++
			continue
		}
		r.Failed++
		if len(r.Failures) < MaxReportedFailures {
			r.Failures = append(r.Failures, Failure{A: a, B: b, OutA: outA, OutB: outB})
		}
	}
	writeReport(w, r, hexWidth)
	return r
}

func writeReport(w io.Writer, r Result, hexWidth int) {
	fmt.Fprintf(w, "%s: %d/%d passed", r.Name, r.Passed, r.Total)
	if r.Failed > 0 {
		fmt.Fprintf(w, " (%d FAILED)", r.Failed)
	}
	fmt.Fprintln(w)
	// lowercase, the same as binfmt.FormatBits everywhere else.
	hex := func(b binfmt.Bits) string {
		return binfmt.FormatBits(b, hexWidth)
	}
	for _, f := range r.Failures {
		fmt.Fprintf(w, "  FAIL %s: a=%s b=%s  implA=%s implB=%s\n",
			r.Name, hex(f.A), hex(f.B), hex(f.OutA.Bits), hex(f.OutB.Bits))
	}
}
