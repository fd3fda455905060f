// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open segment file with read, write, seek and sync capabilities
//   - [FileSystem]: the handful of operations a segment store needs (open, remove, rename, stat)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects open, read, write, sync, close and rename failures
//
// # Usage
//
// Production code uses fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".vec", fs.Fault{FailAfterBytes: 16, FailReadAfter: -1})
//	store := vecseg.New(vecseg.WithFileSystem(ffs))
//
// This package intentionally does NOT take a context.Context. Local file
// operations are not interruptible at the syscall level; remote segments go
// through blobstore, which does.
package fs
