// Package share implements a sandboxed, read-only view over a directory tree.
//
// The package is organized into:
//   - resolver: maps caller paths to canonical paths inside the root or a snapshot
//   - service: folder listings, file content, metadata and image formats
//   - snapshots: snapshot enumeration and ordering
//   - search: recursive glob search (fastwalk + doublestar)
//   - text: lossy text decoding with optional charset detection
//   - metadata: ordered multi-value metadata map
//
// Guarantees:
//   - No operation reaches a path outside the root, or outside the snapshot it names
//   - Excluded folders are reported as not found, never as forbidden
//   - The listing "too large" flag and read enforcement share one size policy
//
// Example Usage:
//
//	svc, err := share.NewService(cfg, share.WithLogger(logger))
//	listing, err := svc.ListFolder("docs/", nil, "")
package share
