package filesystem

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fsys := NewOS()
	require.NotNil(t, fsys)

	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "a.txt")
	link := filepath.Join(tmpDir, "b.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0644))

	info, err := fsys.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	f, err := fsys.Open(target)
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, fsys.Symlink(target, link))

	linfo, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.True(t, linfo.Mode()&os.ModeSymlink != 0)

	dest, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, target, dest)

	entries, err := fsys.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, fsys.Remove(link))
	_, err = fsys.Lstat(link)
	assert.True(t, os.IsNotExist(err))
}
