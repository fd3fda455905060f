// Package vecseg stores fixed-dimension float32 vectors in immutable segment
// files and reads them back whole, by index or by range.
//
// A segment is a 16-byte header followed by the vectors in order, each as
// dimension little-endian float32 values. The format is described in
// package segment.
//
// # Quick Start
//
//	err := vecseg.WriteSegment("embeddings.vec", [][]float32{
//	    {1, 2, 3},
//	    {4, 5, 6},
//	})
//
//	h, _ := vecseg.ReadHeader("embeddings.vec")      // count 2, dimension 3
//	v, _ := vecseg.ReadAt("embeddings.vec", 1)        // [4 5 6]
//	vs, _ := vecseg.ReadRange("embeddings.vec", 0, 2) // both vectors
//
// ReadAt and ReadRange seek straight to the requested vectors, so their cost
// does not depend on the size of the segment.
//
// # Stores and Options
//
// The package-level functions use a default Store. A Store carries options
// only and holds no open files between calls:
//
//	store := vecseg.New(
//	    vecseg.WithSync(true),
//	    vecseg.WithLogger(vecseg.NewJSONLogger(slog.LevelDebug)),
//	    vecseg.WithMetricsCollector(&vecseg.BasicMetricsCollector{}),
//	)
//
// Writes go to a temporary file that is renamed onto the destination, so a
// failed write never leaves a partial segment behind. Every vector is
// checked against the dimension of the first before anything is written.
//
// # Errors
//
// Format and bounds failures are reported with sentinel errors and typed
// errors that carry the offending values:
//
//	_, err := vecseg.ReadAt(path, 10)
//	var oob *vecseg.IndexOutOfBoundsError
//	if errors.As(err, &oob) {
//	    fmt.Println(oob.Index, oob.Count)
//	}
//
// Failures of the underlying storage are returned as *IOError.
//
// # Remote Segments
//
// Segments can live in any blobstore.BlobStore (local, S3, MinIO). A
// BlobReader fetches only the byte ranges it needs:
//
//	r, err := vecseg.OpenSegment(ctx, store, "embeddings.vec")
//	defer r.Close()
//	v, err := r.At(ctx, 42)
//
// # Metadata
//
// WriteRecords stores per-vector tags in a sidecar next to the segment; see
// package metadata. The segment format itself stays metadata-free.
package vecseg
