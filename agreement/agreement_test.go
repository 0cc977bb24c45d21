// Copyright 2020 Aleksandr Demakin. All rights reserved.

package agreement

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
	"github.com/avdva/binfmt/backend/exact"
	"github.com/avdva/binfmt/backend/soft"
	"github.com/avdva/binfmt/harness"
	"github.com/avdva/binfmt/internal/logger"
)

func TestPlan(t *testing.T) {
	a := assert.New(t)
	suites, err := Plan(100, 1)
	require.NoError(t, err)
	var names []string
	for _, s := range suites {
		names = append(names, s.Name())
		a.Equal(100, s.Random)
	}
	a.Equal([]string{
		"binary16/exact-vs-soft", "binary16/exact-vs-native", "binary16/soft-vs-native",
		"binary32/exact-vs-soft", "binary32/exact-vs-native", "binary32/soft-vs-native",
		"binary64/exact-vs-soft", "binary64/exact-vs-native", "binary64/soft-vs-native",
		"bfloat16/exact-vs-soft", "fp8-e5m2/exact-vs-soft",
	}, names)
}

func TestPlanAgrees(t *testing.T) {
	if testing.Short() {
		t.Skip("long test")
	}
	suites, err := Plan(DefaultRandom, 1)
	require.NoError(t, err)
	for _, s := range suites {
		t.Run(s.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			r := harness.NewRunner(&buf, nil)
			s.Run(r)
			assert.Zero(t, r.Failed(), buf.String())
			for _, res := range r.Results() {
				if !strings.Contains(res.Name, "/c=") {
					assert.GreaterOrEqual(t, res.Total, DefaultRandom, res.Name)
				}
			}
		})
	}
}

func TestRunReport(t *testing.T) {
	a := assert.New(t)
	var buf, logs bytes.Buffer
	r := harness.NewRunner(&buf, logger.New(&logs, logger.FormatJSON))
	d := binfmt.FP8E5M2
	sf, err := soft.New(d)
	require.NoError(t, err)
	Run(r, d, exact.New(d), sf, Options{Ops: []backend.Op{backend.Add, backend.Sqrt, backend.MulAdd}, Random: 50, Seed: 3})
	results := r.Results()
	require.Len(t, results, 2)
	edges := len(d.EdgeCases())
	a.Equal("fp8-e5m2/exact-vs-soft/add", results[0].Name)
	a.Equal(edges*edges+50, results[0].Total)
	a.Equal("fp8-e5m2/exact-vs-soft/sqrt", results[1].Name)
	a.Equal(edges+50, results[1].Total)
	a.Zero(r.Failed())
	a.True(strings.HasPrefix(buf.String(), "fp8-e5m2/exact-vs-soft/add: "))
	a.Contains(logs.String(), `"level":"warn"`)
	a.Contains(logs.String(), `"op":"mulAdd"`)
	a.Contains(logs.String(), `"adapter":"soft"`)
}

func TestRunMulAdd(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	r := harness.NewRunner(&buf, nil)
	d := binfmt.FP8E5M2
	Run(r, d, exact.New(d), exact.New(d), Options{Ops: []backend.Op{backend.MulAdd}})
	edges := d.EdgeCases()
	results := r.Results()
	a.Len(results, len(edges))
	a.Equal("fp8-e5m2/exact-vs-exact/mulAdd/c="+d.FormatBits(edges[0]), results[0].Name)
	a.Zero(r.Failed())
}

func TestRunDetectsMismatch(t *testing.T) {
	a := assert.New(t)
	var buf bytes.Buffer
	r := harness.NewRunner(&buf, nil)
	d := binfmt.Binary16
	Run(r, d, exact.New(d), brokenAdd{exact.New(d)}, Options{Ops: []backend.Op{backend.Add, backend.Mul}, Random: 1000, Seed: 1})
	results := r.Results()
	require.Len(t, results, 2)
	a.NotZero(results[0].Failed)
	a.Zero(results[1].Failed)
	a.Contains(buf.String(), "  FAIL binary16/exact-vs-broken/add: a=0x")
}

// brokenAdd returns results one ulp off for additions of positive finite values.
type brokenAdd struct {
	backend.Adapter
}

func (a brokenAdd) Name() string {
	return "broken"
}

func (a brokenAdd) Dispatch(op backend.Op, operands ...binfmt.Bits) backend.Outcome {
	out := a.Adapter.Dispatch(op, operands...)
	if op == backend.Add && out.Bits.Lo > 0 && out.Bits.Lo < 0x7c00 {
		out.Bits = out.Bits.Add64(1)
	}
	return out
}
