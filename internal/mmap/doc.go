// Package mmap provides read-only memory-mapped file access.
//
// Segment files are immutable once written, which makes them a natural fit
// for mapping: point reads by ordinal index become a copy out of the page
// cache with no read syscall.
//
//	m, err := mmap.Open("embeddings.vec")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessRandom)
//	n, err := m.ReadAt(buf, off)
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where Advise is a no-op.
//
// Close is idempotent. Callers must not touch the slice returned by Bytes
// after Close returns.
package mmap
