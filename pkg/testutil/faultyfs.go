package testutil

import (
	"io"
	"io/fs"

	"github.com/arthur-debert/dupes/pkg/filesystem"
)

// FaultyFS wraps a real filesystem and lets tests fail individual operations.
// A nil hook passes through to the wrapped filesystem; a hook returning a
// non-nil error short-circuits the call.
type FaultyFS struct {
	Base filesystem.FS

	OpenFunc    func(name string) error
	ReadDirFunc func(name string) error
	RemoveFunc  func(name string) error
	SymlinkFunc func(oldname, newname string) error
}

// NewFaultyFS wraps the OS filesystem
func NewFaultyFS() *FaultyFS {
	return &FaultyFS{Base: filesystem.NewOS()}
}

func (f *FaultyFS) Stat(name string) (fs.FileInfo, error) {
	return f.Base.Stat(name)
}

func (f *FaultyFS) Lstat(name string) (fs.FileInfo, error) {
	return f.Base.Lstat(name)
}

func (f *FaultyFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if f.ReadDirFunc != nil {
		if err := f.ReadDirFunc(name); err != nil {
			return nil, err
		}
	}
	return f.Base.ReadDir(name)
}

func (f *FaultyFS) Open(name string) (io.ReadCloser, error) {
	if f.OpenFunc != nil {
		if err := f.OpenFunc(name); err != nil {
			return nil, err
		}
	}
	return f.Base.Open(name)
}

func (f *FaultyFS) Remove(name string) error {
	if f.RemoveFunc != nil {
		if err := f.RemoveFunc(name); err != nil {
			return err
		}
	}
	return f.Base.Remove(name)
}

func (f *FaultyFS) Symlink(oldname, newname string) error {
	if f.SymlinkFunc != nil {
		if err := f.SymlinkFunc(oldname, newname); err != nil {
			return err
		}
	}
	return f.Base.Symlink(oldname, newname)
}

func (f *FaultyFS) Readlink(name string) (string, error) {
	return f.Base.Readlink(name)
}

// FailOn returns a hook that fails with err for the listed paths only
func FailOn(err error, targets ...string) func(name string) error {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	return func(name string) error {
		if _, ok := set[name]; ok {
			return err
		}
		return nil
	}
}
