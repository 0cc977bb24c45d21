// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Package cli implements the fpcheck commands.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel  string
	LogFormat string // "console" | "json"
}

// ValidLogFormats defines the allowed log formats.
var ValidLogFormats = []string{logger.FormatConsole, logger.FormatJSON}

// NewRootCommand creates the root command of fpcheck.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fpcheck",
		Short: "Binary floating-point format checker",
		Long: `Decode and encode bit patterns of binary floating-point formats,
and check arithmetic backends against each other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidLogFormats, opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidLogFormats)
			}
			logger.Setup(opts.LogLevel, opts.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error|off)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", logger.FormatConsole, "log format (console|json)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewDecodeCommand())
	cmd.AddCommand(NewEncodeCommand())
	cmd.AddCommand(NewEdgesCommand())
	cmd.AddCommand(NewFormatsCommand())

	return cmd
}

func lookupFormat(name string) (*binfmt.Descriptor, error) {
	d, found := binfmt.Lookup(name)
	if !found {
		return nil, fmt.Errorf("unknown format %q, see 'fpcheck formats'", name)
	}
	return d, nil
}
