// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/avdva/binfmt/agreement"
	"github.com/avdva/binfmt/backend"
	"github.com/avdva/binfmt/harness"
	"github.com/avdva/binfmt/internal/logger"
)

// ErrChecksFailed is returned by the run command if any check failed.
var ErrChecksFailed = errors.New("checks failed")

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Random   int
	Seed     uint64
	Formats  []string
	Ops      string
	Parallel int
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check arithmetic backends against each other",
		Long: `Run exact, soft and native arithmetic on edge cases and random operands
and report every disagreement. The exit status is non-zero if any check failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChecks(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Random, "random", agreement.DefaultRandom, "random operands per operation")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&opts.Formats, "format", nil, "formats to check (default all)")
	cmd.Flags().StringVar(&opts.Ops, "op", "", "comma separated operations to check (default all)")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", runtime.GOMAXPROCS(0), "number of suites run at once")

	return cmd
}

func runChecks(cmd *cobra.Command, opts *RunOptions) error {
	suites, err := agreement.Plan(opts.Random, opts.Seed)
	if err != nil {
		return err
	}
	ops, err := backend.ParseOps(opts.Ops)
	if err != nil {
		return fmt.Errorf("invalid --op: %w", err)
	}
	for _, name := range opts.Formats {
		if _, err := lookupFormat(name); err != nil {
			return err
		}
	}
	if len(opts.Formats) > 0 {
		suites = slices.DeleteFunc(suites, func(s agreement.Suite) bool {
			return !slices.Contains(opts.Formats, s.Format.Name())
		})
		if len(suites) == 0 {
			return fmt.Errorf("no suites for formats %v", opts.Formats)
		}
	}
	for i := range suites {
		suites[i].Ops = ops
	}

	// each suite writes into its own buffer, the buffers are printed in plan order.
	buffers := make([]bytes.Buffer, len(suites))
	runners := make([]*harness.Runner, len(suites))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.Parallel, 1))
	for i, s := range suites {
		runners[i] = harness.NewRunner(&buffers[i], logger.Log.With("suite", s.Name()))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.Run(runners[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return report(cmd.OutOrStdout(), suites, buffers, runners)
}

func report(w io.Writer, suites []agreement.Suite, buffers []bytes.Buffer, runners []*harness.Runner) error {
	var failed, total int
	for i, s := range suites {
		fmt.Fprintf(w, "=== %s ===\n", s.Name())
		if _, err := buffers[i].WriteTo(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
		failed += runners[i].Failed()
		for _, res := range runners[i].Results() {
			total += res.Total
		}
	}
	if failed > 0 {
		fmt.Fprintf(w, "FAILED: %d total failures\n", failed)
		return ErrChecksFailed
	}
	fmt.Fprintf(w, "PASS: %d checks in %d suites\n", total, len(suites))
	return nil
}
