// Package filesystem provides filesystem implementations for dupes.
//
// Every component that touches the disk goes through the FS interface so
// tests can inject failures (an unreadable file, a symlink that cannot be
// created) without depending on platform permission quirks.
package filesystem
