// Package segment implements the binary layout of a vector segment file.
//
// # Overview
//
// A segment stores a fixed number of vectors that all share one dimension.
// The layout is a 16-byte header followed by the raw components, so the
// byte offset of any vector is computed from the header alone.
//
// # File Format
//
//	┌────────────────────────────────────────┐
//	│ Magic "VECT" (4 bytes)                 │
//	│ Version (uint32)                       │
//	│ Count (uint32)                         │
//	│ Dimension (uint32)                     │
//	├────────────────────────────────────────┤
//	│ Vectors (Count × Dimension × float32)  │
//	└────────────────────────────────────────┘
//
// All integers and floats are little-endian. Vectors are stored in
// insertion order without padding, checksums or per-vector framing.
//
// # Errors
//
// Decoding distinguishes a foreign file (ErrInvalidFormat), a newer or
// older revision (ErrUnsupportedVersion) and data that ends early
// (ErrTruncated). Typed errors carry the offending values and match their
// sentinel via errors.Is.
//
// This package performs no file handling and no logging; see the root
// package for path-based reads and writes.
package segment
