// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Command fpcheck decodes and encodes floating-point bit patterns
// and checks arithmetic backends against each other.
package main

import (
	"fmt"
	"os"

	"github.com/avdva/binfmt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fpcheck:", err)
		os.Exit(1)
	}
}
