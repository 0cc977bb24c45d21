// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avdva/binfmt"
)

// NewEncodeCommand creates the encode command.
func NewEncodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <format> <number>...",
		Short: "Round decimal numbers to a format",
		Long: `Round decimal numbers to the nearest pattern of a format, ties to even.
Numbers are decimals like "-1.5e-3", or "inf", "-inf", "nan".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupFormat(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, s := range args[1:] {
				v, err := binfmt.ParseValue(s)
				if err != nil {
					return fmt.Errorf("%q: %w", s, err)
				}
				b, err := d.RoundChecked(v)
				if err != nil {
					return fmt.Errorf("%q: %w", s, err)
				}
				fmt.Fprintf(w, "%s = %s (%s)\n", s, d.FormatBits(b), d.Decode(b))
			}
			return nil
		},
	}
	// numbers like "-1.5" and "-inf" are arguments, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
