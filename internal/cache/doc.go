// Package cache provides an LRU cache for fixed-size blocks of remote blobs.
//
// Blocks are keyed by blob path and block index. The cache is bounded by
// the total number of cached bytes; the least recently used blocks are
// evicted first.
package cache
