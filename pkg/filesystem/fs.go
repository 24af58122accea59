package filesystem

import (
	"io"
	"io/fs"
)

// FS is the set of filesystem operations used by scanning and remediation
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
}
