// Copyright 2020 Aleksandr Demakin. All rights reserved.

package cli

import (
	"github.com/spf13/cobra"
)

// NewEdgesCommand creates the edges command.
func NewEdgesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edges <format>",
		Short: "Print the edge case patterns of a format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupFormat(args[0])
			if err != nil {
				return err
			}
			for _, b := range d.EdgeCases() {
				printDecoded(cmd.OutOrStdout(), d, b)
			}
			return nil
		},
	}
	return cmd
}
