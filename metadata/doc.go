// Package metadata stores per-vector tags next to a segment file.
//
// The segment format carries vectors only. Tags live in a sidecar file at
// Path(segmentPath), one Document per vector ordinal:
//
//	+--------+---------+--------+--------+-----------------------------+
//	| "VMET" | version | count  | crc32c | msgpack []map[string]string |
//	| 4 B    | u32 LE  | u32 LE | u32 LE | count entries               |
//	+--------+---------+--------+--------+-----------------------------+
//
// The checksum covers the msgpack payload. Map keys are encoded in sorted
// order, so equal documents always produce identical files.
package metadata
