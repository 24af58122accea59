package index

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dupes/pkg/classify"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func options(fsys filesystem.FS, workers int) Options {
	return Options{
		FS:         fsys,
		Classifier: classify.New(fsys, classify.WithExecutable("/nonexistent/dupes")),
		Workers:    workers,
	}
}

func TestBuild_Scenario(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"a.txt":   "hello",
		"b/b.txt": "hello",
		"c.txt":   "world",
	})

	res, err := Build(context.Background(), root, options(filesystem.NewOS(), 4))
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.Equal(t, filepath.Join(root, "a.txt"), g.Canonical)
	assert.Equal(t, []string{filepath.Join(root, "b", "b.txt")}, g.Duplicates)

	assert.Equal(t, 2, res.Stats.Directories)
	assert.Equal(t, 3, res.Stats.Files)
	assert.Equal(t, 3, res.Stats.Hashed)
	assert.Empty(t, res.Problems)
}

func TestBuild_RelativeRootYieldsAbsolutePaths(t *testing.T) {
	dir := testutil.NewTree(t, map[string]string{
		"tree/a.txt":   "hello",
		"tree/b/b.txt": "hello",
	})
	testutil.Chdir(t, dir)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	res, err := Build(context.Background(), "tree", options(filesystem.NewOS(), 2))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "tree"), res.Root)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, filepath.Join(cwd, "tree", "a.txt"), res.Groups[0].Canonical)
	assert.Equal(t, []string{filepath.Join(cwd, "tree", "b", "b.txt")}, res.Groups[0].Duplicates)
	for _, p := range res.Groups[0].Members() {
		assert.True(t, filepath.IsAbs(p), p)
	}
}

func TestBuild_GroupsIffContentEqual(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"1": "alpha", "2": "beta", "3": "alpha", "4": "gamma",
		"5": "beta", "6": "alpha", "7": "", "8": "",
		"9": "Alpha",
	})

	res, err := Build(context.Background(), root, options(filesystem.NewOS(), 3))
	require.NoError(t, err)

	got := map[string][]string{}
	for _, g := range res.Groups {
		assert.GreaterOrEqual(t, len(g.Members()), 2)
		assert.NotContains(t, g.Duplicates, g.Canonical)
		got[filepath.Base(g.Canonical)] = nil
		for _, d := range g.Duplicates {
			got[filepath.Base(g.Canonical)] = append(got[filepath.Base(g.Canonical)], filepath.Base(d))
		}
	}

	assert.Equal(t, map[string][]string{
		"1": {"3", "6"},
		"2": {"5"},
		"7": {"8"},
	}, got)
}

func TestBuild_CanonicalIsEarliestDiscoveredUnderConcurrency(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 200; i++ {
		files[fmt.Sprintf("d%02d/f%03d", i%10, i)] = fmt.Sprintf("content-%d", i%7)
	}
	root := testutil.NewTree(t, files)

	first, err := Build(context.Background(), root, options(filesystem.NewOS(), 1))
	require.NoError(t, err)

	for run := 0; run < 5; run++ {
		again, err := Build(context.Background(), root, options(filesystem.NewOS(), 16))
		require.NoError(t, err)
		assert.Equal(t, first.Groups, again.Groups, "run %d must reproduce sequential result", run)
	}

	require.Len(t, first.Groups, 7)
	// Sorted traversal: d00/f000 holds content-0 and is visited first.
	assert.Equal(t, filepath.Join(root, "d00", "f000"), first.Groups[0].Canonical)
}

func TestBuild_DoesNotFollowDirectoryLinks(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"real/a.txt": "hello",
		"b.txt":      "hello",
	})
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "real", "up")))
	require.NoError(t, os.Symlink(filepath.Join(root, "b.txt"), filepath.Join(root, "link.txt")))

	res, err := Build(context.Background(), root, options(filesystem.NewOS(), 2))
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, filepath.Join(root, "b.txt"), res.Groups[0].Canonical)
	assert.Equal(t, []string{filepath.Join(root, "real", "a.txt")}, res.Groups[0].Duplicates)
	assert.Equal(t, 3, res.Stats.Skipped, "loop, up and link.txt are not regular files")
}

func TestBuild_UnreadableDirectoryIsSkipped(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"a.txt":        "hello",
		"locked/b.txt": "hello",
		"open/c.txt":   "hello",
	})
	locked := filepath.Join(root, "locked")
	fsys := testutil.NewFaultyFS()
	fsys.ReadDirFunc = testutil.FailOn(stderrors.New("permission denied"), locked)

	res, err := Build(context.Background(), root, options(fsys, 2))
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{filepath.Join(root, "open", "c.txt")}, res.Groups[0].Duplicates)

	require.Len(t, res.Problems, 1)
	assert.Equal(t, locked, res.Problems[0].Path)
	assert.True(t, errors.IsErrorCode(res.Problems[0].Err, errors.ErrIOEnumerate))
	assert.Equal(t, 1, res.Stats.Unlisted)
}

func TestBuild_UnreadableFileIsSkipped(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"a.txt": "hello",
		"b.txt": "hello",
		"c.txt": "hello",
	})
	bad := filepath.Join(root, "a.txt")
	fsys := testutil.NewFaultyFS()
	fsys.OpenFunc = testutil.FailOn(stderrors.New("permission denied"), bad)

	res, err := Build(context.Background(), root, options(fsys, 2))
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, filepath.Join(root, "b.txt"), res.Groups[0].Canonical)
	assert.Equal(t, []string{filepath.Join(root, "c.txt")}, res.Groups[0].Duplicates)

	require.Len(t, res.Problems, 1)
	assert.Equal(t, bad, res.Problems[0].Path)
	assert.True(t, errors.IsErrorCode(res.Problems[0].Err, errors.ErrIORead))
	assert.Equal(t, 1, res.Stats.Unreadable)
	assert.Equal(t, 2, res.Stats.Hashed)
}

func TestBuild_ExcludesOwnExecutable(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{
		"tool":      "same bytes",
		"copy-tool": "same bytes",
		"other":     "same bytes",
	})
	fsys := filesystem.NewOS()
	opts := Options{
		FS:         fsys,
		Classifier: classify.New(fsys, classify.WithExecutable(filepath.Join(root, "tool"))),
	}

	res, err := Build(context.Background(), root, opts)
	require.NoError(t, err)

	require.Len(t, res.Groups, 1)
	for _, p := range res.Groups[0].Members() {
		assert.NotEqual(t, filepath.Join(root, "tool"), p)
	}
}

func TestBuild_ReportsProgress(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{"a": "1", "b": "2", "c": "3"})
	var seen []int
	opts := options(filesystem.NewOS(), 2)
	opts.Progress = func(hashed int, _ string) { seen = append(seen, hashed) }

	_, err := Build(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestBuild_Cancelled(t *testing.T) {
	root := testutil.NewTree(t, map[string]string{"a": "1", "b": "1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Build(ctx, root, options(filesystem.NewOS(), 2))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}
