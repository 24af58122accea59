package testutil

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root. Keys are slash-separated relative paths,
// values are file contents. Parent directories are created as needed.
func WriteTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// NewTree creates a fresh temporary directory populated with files
func NewTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)
	return root
}

// Checksum returns the raw SHA256 digest of content
func Checksum(content string) [32]byte {
	return sha256.Sum256([]byte(content))
}

// AssertAbsent fails the test if path exists (without following links)
func AssertAbsent(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	require.Truef(t, os.IsNotExist(err), "expected %s to be absent, got err=%v", path, err)
}

// ReadString reads path, following symlinks
func ReadString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Chdir switches the working directory to dir for the rest of the test
func Chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(prev)
	})
}
