// Copyright 2020 Aleksandr Demakin. All rights reserved.

package harness

import (
	"github.com/avdva/binfmt"
	"github.com/avdva/binfmt/backend"
)

// Comparator reports whether two outcomes match.
type Comparator func(x, y backend.Outcome) bool

// BitExact requires equal bits and equal status flags.
func BitExact(x, y backend.Outcome) bool {
	return x == y
}

// BitExactIgnoreStatus requires equal bits. Use it when one of the implementations does not report flags.
func BitExactIgnoreStatus(x, y backend.Outcome) bool {
	return x.Bits == y.Bits
}

// NaNAware returns a comparator that treats any two NaNs of d as equal, whatever
// their payloads and signs are. Other outcomes must have equal bits.
func NaNAware(d *binfmt.Descriptor) Comparator {
	return func(x, y backend.Outcome) bool {
		if x.Bits == y.Bits {
			return true
		}
		return d.Decode(x.Bits).IsNaN() && d.Decode(y.Bits).IsNaN()
	}
}
