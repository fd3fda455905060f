// Package hash provides CRC32-Castagnoli checksums for sidecar integrity.
//
// The segment format itself carries no checksum (its 16-byte header is
// fixed); sidecar files written next to a segment do, and use CRC32C
// because Go's hash/crc32 accelerates it with SSE4.2 and the ARM CRC
// extension.
//
//	sum := hash.CRC32C(body)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum := h.Sum32()
package hash
