// Package testutil provides utilities for testing dupes components.
//
// Key components:
//   - WriteTree: declarative on-disk fixture builder rooted at t.TempDir()
//   - FaultyFS: a filesystem.FS wrapping the real disk with per-operation
//     failure hooks, used to reproduce unreadable files and failed links
//   - Checksum: predictable digests for test content
//
// All test data is defined inline; each test gets its own temporary tree.
package testutil
