// Copyright 2020 Aleksandr Demakin. All rights reserved.

package binfmt

var (
	Binary16  = MustNew("binary16", Layout(5, 10), IEEE754)
	BFloat16  = MustNew("bfloat16", Layout(8, 7), IEEE754)
	Binary32  = MustNew("binary32", Layout(8, 23), IEEE754)
	Binary64  = MustNew("binary64", Layout(11, 52), IEEE754)
	Binary128 = MustNew("binary128", Layout(15, 112), IEEE754)
	// ExtFloat80 is the x87 80-bit format with an explicit leading bit.
	ExtFloat80 = MustNew("extfloat80", Layout(15, 64), X87Extended)

	FP8E5M2     = MustNew("fp8-e5m2", Layout(5, 2), IEEE754)
	FP8E4M3     = MustNew("fp8-e4m3", Layout(4, 3), IEEE754)
	FP8E4M3FNUZ = MustNew("fp8-e4m3fnuz", Layout(4, 3), E4M3FNUZ)

	// Rbj32 is a 32-bit two's complement float: 0x80000000 is the NaN,
	// 0x7fffffff and 0x80000001 are the infinities.
	Rbj32 = MustNew("rbj32", Layout(8, 23), RbjTwosComplement)
	// PDP10Float is the 36-bit single precision format of the PDP-10.
	PDP10Float = MustNew("pdp10", Layout(8, 27), PDP10)
	// CDC6600Float is the 60-bit format of the CDC 6600.
	CDC6600Float = MustNew("cdc6600", Layout(11, 48), CDC6600)

	Relaxed16 = MustNew("relaxed16", Layout(5, 10), Relaxed)
	GPU32     = MustNew("gpu32", Layout(8, 23), GPUStyle)

	catalog = []*Descriptor{
		Binary16, BFloat16, Binary32, Binary64, Binary128, ExtFloat80,
		FP8E5M2, FP8E4M3, FP8E4M3FNUZ,
		Rbj32, PDP10Float, CDC6600Float,
		Relaxed16, GPU32,
	}
)

// Catalog returns all predefined formats.
func Catalog() []*Descriptor {
	return append([]*Descriptor(nil), catalog...)
}

// Lookup returns a predefined format by its name.
func Lookup(name string) (*Descriptor, bool) {
	for _, d := range catalog {
		if d.name == name {
			return d, true
		}
	}
	return nil, false
}
