// Package testutil provides testing utilities for vecseg.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UniformVectors(100, 128)  // uniform [0, 1)
//	unit := rng.UnitVectors(100, 128)     // L2-normalized
//	idx := rng.Indices(50, 100)           // random ordinals, with repeats
package testutil
