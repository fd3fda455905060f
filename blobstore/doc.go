// Package blobstore stores whole segment files as named, immutable blobs.
//
// A BlobStore opens blobs for ranged reads and creates new ones. A blob
// written through Create is invisible until Close commits it; Abort throws
// the partial upload away and leaves any previous blob under that name in
// place. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory; reads are served from a read-only mmap
//   - MemoryStore: process memory, for tests and short-lived tools
//   - s3.Store: Amazon S3, ranged GETs and multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// Two wrappers compose with any of them:
//
//   - CachingStore keeps recently read blocks in an LRU cache
//   - ThrottledStore limits read bandwidth and concurrent reads
//
// # Reading
//
// Blob.ReadAt takes a context and follows io.ReaderAt semantics otherwise:
// a read that ends past the blob returns the bytes available and io.EOF.
// ReaderAt and NewSectionReader adapt a Blob for code that expects the
// standard interfaces.
//
// Blobs that live in addressable memory (LocalStore, MemoryStore) also
// implement Mappable, letting readers decode straight from the mapped
// bytes instead of copying them out with ReadAt.
package blobstore
