// Package conv provides checked integer conversions.
//
// Segment headers store 32-bit counts while Go slices and file offsets use
// int and int64. Every narrowing or sign change of a value that came from
// disk (or from a caller-sized slice) goes through this package so that an
// oversized value becomes an error instead of a silent wrap.
//
// For conversions that are provably safe (loop indices, bounded counters),
// plain casts are fine.
package conv
