// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/avdva/binfmt"
)

// NewDecodeCommand creates the decode command.
func NewDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <format> <hex>...",
		Short: "Print the exact values of bit patterns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupFormat(args[0])
			if err != nil {
				return err
			}
			for _, s := range args[1:] {
				b, err := d.ParseBits(s)
				if err != nil {
					return fmt.Errorf("%q: %w", s, err)
				}
				printDecoded(cmd.OutOrStdout(), d, b)
			}
			return nil
		},
	}
	return cmd
}

// printDecoded writes "<hex> = <value> (<class>)", with a note for non-canonical patterns.
func printDecoded(w io.Writer, d *binfmt.Descriptor, b binfmt.Bits) {
	fmt.Fprintf(w, "%s = %s (%s", d.FormatBits(b), d.Decode(b), d.Classify(b))
	if !d.IsCanonical(b) && d.Classify(b) != binfmt.ClassNaN {
		fmt.Fprintf(w, ", canonical %s", d.FormatBits(d.Round(d.Decode(b))))
	}
	fmt.Fprintln(w, ")")
}
