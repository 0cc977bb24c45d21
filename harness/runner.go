// Copyright 2020 Aleksandr Demakin. All rights reserved.

package harness

import (
	"fmt"
	"io"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/internal/logger"
)

// Runner runs comparisons writing their reports to the same writer and keeps the results.
// A Runner is not safe for concurrent use.
type Runner struct {
	w       io.Writer
	log     *logger.Logger
	results []Result
}

// NewRunner returns a runner writing reports to w. If log is nil, nothing is logged.
func NewRunner(w io.Writer, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{w: w, log: log}
}

// Compare calls Compare and records the result.
// Each failure is logged at debug level, the summary at info level.
func (r *Runner) Compare(name string, hexWidth int, it Iterator, implA, implB Impl, cmp Comparator) Result {
	res := Compare(r.w, name, hexWidth, it, implA, implB, cmp)
	r.results = append(r.results, res)
	for _, f := range res.Failures {
		r.log.Debug("mismatch",
			"test", name,
			"a", binfmt.FormatBits(f.A, hexWidth),
			"b", binfmt.FormatBits(f.B, hexWidth),
			"implA", binfmt.FormatBits(f.OutA.Bits, hexWidth),
			"implB", binfmt.FormatBits(f.OutB.Bits, hexWidth),
			"statusA", f.OutA.Status.String(),
			"statusB", f.OutB.Status.String())
	}
	r.log.Info("comparison done", "test", name, "total", res.Total, "failed", res.Failed)
	return res
}

// Logger returns the runner's logger.
func (r *Runner) Logger() *logger.Logger {
	return r.log
}

// Results returns the results of all comparisons in the order they were run.
func (r *Runner) Results() []Result {
	return append([]Result(nil), r.results...)
}

// Failed returns the total number of failed checks.
func (r *Runner) Failed() int {
	var failed int
	for _, res := range r.results {
		failed += res.Failed
	}
	return failed
}

// Summary returns the final line of a report.
func (r *Runner) Summary() string {
	var total int
	for _, res := range r.results {
		total += res.Total
	}
	if failed := r.Failed(); failed > 0 {
		return fmt.Sprintf("FAILED: %d total failures", failed)
	}
	return fmt.Sprintf("PASS: %d checks in %d runs", total, len(r.results))
}
