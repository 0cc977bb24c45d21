// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avdva/binfmt"
)

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the predefined formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range binfmt.Catalog() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %3d bits  %v\n", d.Name(), d.TotalBits(), d)
			}
			return nil
		},
	}
	return cmd
}
