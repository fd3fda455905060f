// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("segments/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = vecseg.PutSegment(ctx, store, "embeddings.vec", vectors)
//	r, err := vecseg.OpenSegment(ctx, store, "embeddings.vec")
//
// # Features
//
//   - Ranged GETs: reading one vector fetches only its bytes
//   - Streaming multipart uploads, aborted on failure
//   - CRC32C checksums on upload
//   - Concurrent whole-object download
package s3
