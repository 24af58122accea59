package remediate

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dupes/pkg/classify"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/fingerprint"
	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/arthur-debert/dupes/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root  string
	model *groups.Model
}

func (f fixture) path(rel string) string {
	return filepath.Join(f.root, filepath.FromSlash(rel))
}

// newFixture lays out the canonical scenario plus a second group:
// a.txt/b/b.txt/d.txt share "hello", x.bin/y.bin share "world!", c.txt is unique.
func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{root: testutil.NewTree(t, map[string]string{
		"a.txt":   "hello",
		"b/b.txt": "hello",
		"d.txt":   "hello",
		"c.txt":   "world",
		"x.bin":   "world!",
		"y.bin":   "world!",
	})}
	f.model = groups.New(filesystem.NewOS(), []groups.Group{
		{
			Fingerprint: fingerprint.Fingerprint(testutil.Checksum("hello")),
			Canonical:   f.path("a.txt"),
			Duplicates:  []string{f.path("b/b.txt"), f.path("d.txt")},
		},
		{
			Fingerprint: fingerprint.Fingerprint(testutil.Checksum("world!")),
			Canonical:   f.path("x.bin"),
			Duplicates:  []string{f.path("y.bin")},
		},
	})
	return f
}

func newEngine(fsys filesystem.FS, mutate ...func(*Options)) *Engine {
	opts := Options{
		FS:            fsys,
		Classifier:    classify.New(fsys, classify.WithExecutable("/nonexistent/dupes")),
		VerifyContent: true,
		Parallelism:   4,
	}
	for _, m := range mutate {
		m(&opts)
	}
	return New(opts)
}

func TestApply_Delete(t *testing.T) {
	f := newFixture(t)

	report := newEngine(filesystem.NewOS()).Apply(f.model, All(), Delete)

	testutil.AssertAbsent(t, f.path("b/b.txt"))
	testutil.AssertAbsent(t, f.path("d.txt"))
	testutil.AssertAbsent(t, f.path("y.bin"))
	assert.Equal(t, "hello", testutil.ReadString(t, f.path("a.txt")))
	assert.Equal(t, "world", testutil.ReadString(t, f.path("c.txt")))
	assert.Equal(t, "world!", testutil.ReadString(t, f.path("x.bin")))

	assert.NotEmpty(t, report.BatchID)
	assert.Equal(t, 3, report.Removed)
	assert.Equal(t, 0, report.Linked)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Results, 3)
	for _, res := range report.Results {
		assert.Equal(t, OutcomeSuccess, res.Outcome)
		assert.Equal(t, groups.StatusRemoved, res.Status)
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, f.path("b/b.txt"), report.Results[0].Path)
	assert.Equal(t, f.path("y.bin"), report.Results[2].Path)
}

func TestApply_DeleteAndLink(t *testing.T) {
	f := newFixture(t)

	report := newEngine(filesystem.NewOS()).Apply(f.model, All(), DeleteAndLink)

	assert.Equal(t, 3, report.Removed)
	assert.Equal(t, 3, report.Linked)
	for _, res := range report.Results {
		assert.Equal(t, groups.StatusLinked, res.Status)

		info, err := os.Lstat(res.Path)
		require.NoError(t, err)
		assert.True(t, info.Mode()&os.ModeSymlink != 0, "%s should be a link", res.Path)

		target, err := os.Readlink(res.Path)
		require.NoError(t, err)
		assert.Equal(t, res.Canonical, target)
	}

	assert.Equal(t, "hello", testutil.ReadString(t, f.path("b/b.txt")))
	info, err := os.Lstat(f.path("a.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "canonical must stay a regular file")
}

func TestApply_DeleteAndLinkWithRelativePaths(t *testing.T) {
	dir := testutil.NewTree(t, map[string]string{
		"tree/a.txt":   "hello",
		"tree/b/b.txt": "hello",
	})
	testutil.Chdir(t, dir)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	model := groups.New(filesystem.NewOS(), []groups.Group{{
		Fingerprint: fingerprint.Fingerprint(testutil.Checksum("hello")),
		Canonical:   filepath.Join("tree", "a.txt"),
		Duplicates:  []string{filepath.Join("tree", "b", "b.txt")},
	}})

	report := newEngine(filesystem.NewOS()).Apply(model, All(), DeleteAndLink)

	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeSuccess, report.Results[0].Outcome)
	assert.Equal(t, 1, report.Linked)

	target, err := os.Readlink(filepath.Join(dir, "tree", "b", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "tree", "a.txt"), target)
	assert.Equal(t, "hello", testutil.ReadString(t, filepath.Join(dir, "tree", "b", "b.txt")))
}

func TestApply_ExplicitSelection(t *testing.T) {
	f := newFixture(t)

	report := newEngine(filesystem.NewOS()).Apply(f.model, Members(
		groups.MemberRef{Group: 0, Member: 1},
		groups.MemberRef{Group: 0, Member: 1},
		groups.MemberRef{Group: 7, Member: 0},
	), Delete)

	testutil.AssertAbsent(t, f.path("d.txt"))
	assert.Equal(t, "hello", testutil.ReadString(t, f.path("b/b.txt")))
	assert.Equal(t, "world!", testutil.ReadString(t, f.path("y.bin")))

	require.Len(t, report.Results, 2, "repeated ref is processed once")
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.True(t, errors.IsErrorCode(report.Results[0].Err, errors.ErrInvalidSelection))
	assert.Equal(t, OutcomeSuccess, report.Results[1].Outcome)
	assert.Equal(t, 1, report.Removed)
	assert.Equal(t, 1, report.Failed)
}

func TestApply_RaceInvalidated(t *testing.T) {
	t.Run("canonical vanished", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.path("a.txt")))

		report := newEngine(filesystem.NewOS()).Apply(f.model, All(), Delete)

		assert.Equal(t, "hello", testutil.ReadString(t, f.path("b/b.txt")), "duplicates of a lost canonical are kept")
		assert.Equal(t, "hello", testutil.ReadString(t, f.path("d.txt")))
		testutil.AssertAbsent(t, f.path("y.bin"))
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, 1, report.Removed)
		for _, res := range report.Results[:2] {
			assert.Equal(t, OutcomeSkipped, res.Outcome)
			assert.True(t, errors.IsErrorCode(res.Err, errors.ErrRaceInvalidated))
			assert.Equal(t, groups.StatusDuplicate, res.Status)
		}
	})

	t.Run("member replaced by a link", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.Remove(f.path("y.bin")))
		require.NoError(t, os.Symlink(f.path("x.bin"), f.path("y.bin")))

		report := newEngine(filesystem.NewOS()).Apply(f.model, Members(groups.MemberRef{Group: 1}), DeleteAndLink)

		require.Len(t, report.Results, 1)
		assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)
		assert.Equal(t, "not-regular", errors.GetErrorDetails(report.Results[0].Err)["reason"])
	})

	t.Run("member content changed", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, os.WriteFile(f.path("d.txt"), []byte("edited"), 0644))

		report := newEngine(filesystem.NewOS()).Apply(f.model, All(), Delete)

		assert.Equal(t, "edited", testutil.ReadString(t, f.path("d.txt")))
		assert.Equal(t, 1, report.Skipped)
		assert.Equal(t, 2, report.Removed)
	})

	t.Run("member is the running executable", func(t *testing.T) {
		f := newFixture(t)
		fsys := filesystem.NewOS()
		engine := New(Options{
			FS:         fsys,
			Classifier: classify.New(fsys, classify.WithExecutable(f.path("y.bin"))),
		})

		report := engine.Apply(f.model, All(), Delete)

		assert.Equal(t, "world!", testutil.ReadString(t, f.path("y.bin")))
		require.Len(t, report.Results, 3)
		assert.Equal(t, OutcomeSkipped, report.Results[2].Outcome)
	})
}

func TestApply_LinkFailureLeavesMemberAbsent(t *testing.T) {
	f := newFixture(t)
	fsys := testutil.NewFaultyFS()
	fsys.SymlinkFunc = func(_, newname string) error {
		if newname == f.path("b/b.txt") {
			return stderrors.New("read-only file system")
		}
		return nil
	}

	report := newEngine(fsys).Apply(f.model, All(), DeleteAndLink)

	testutil.AssertAbsent(t, f.path("b/b.txt"))
	target, err := os.Readlink(f.path("d.txt"))
	require.NoError(t, err)
	assert.Equal(t, f.path("a.txt"), target)
	_, err = os.Readlink(f.path("y.bin"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Removed)
	assert.Equal(t, 2, report.Linked)
	assert.Equal(t, 1, report.Failed)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, f.path("b/b.txt"), failures[0].Path)
	assert.Equal(t, groups.StatusRemoved, failures[0].Status)
	assert.True(t, errors.IsErrorCode(failures[0].Err, errors.ErrMutationFailed))
	assert.Contains(t, failures[0].Reason(), "read-only file system")
}

func TestApply_RemoveFailureContinuesBatch(t *testing.T) {
	f := newFixture(t)
	fsys := testutil.NewFaultyFS()
	fsys.RemoveFunc = testutil.FailOn(stderrors.New("busy"), f.path("b/b.txt"))

	report := newEngine(fsys).Apply(f.model, All(), DeleteAndLink)

	assert.Equal(t, "hello", testutil.ReadString(t, f.path("b/b.txt")))
	info, err := os.Lstat(f.path("b/b.txt"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 2, report.Linked)
	assert.Equal(t, groups.StatusDuplicate, report.Failures()[0].Status)
}

func TestApply_DryRunTouchesNothing(t *testing.T) {
	f := newFixture(t)

	report := newEngine(filesystem.NewOS(), func(o *Options) { o.DryRun = true }).
		Apply(f.model, All(), DeleteAndLink)

	for _, rel := range []string{"a.txt", "b/b.txt", "d.txt", "x.bin", "y.bin"} {
		info, err := os.Lstat(f.path(rel))
		require.NoError(t, err)
		assert.True(t, info.Mode().IsRegular(), rel)
	}
	assert.True(t, report.DryRun)
	assert.Equal(t, 3, report.Planned)
	assert.Equal(t, 0, report.Removed)
}

func TestApply_SecondRunFindsNothingToDo(t *testing.T) {
	f := newFixture(t)
	engine := newEngine(filesystem.NewOS())

	first := engine.Apply(f.model, All(), DeleteAndLink)
	require.Equal(t, 3, first.Linked)

	second := engine.Apply(f.model, All(), DeleteAndLink)
	assert.Equal(t, 3, second.Skipped, "linked members are no longer regular files")
	assert.Equal(t, 0, second.Removed)
	assert.Equal(t, "hello", testutil.ReadString(t, f.path("a.txt")))
}

func TestApply_ManyGroupsInParallel(t *testing.T) {
	files := map[string]string{}
	var gs []groups.Group
	root := t.TempDir()
	for i := 0; i < 40; i++ {
		content := fmt.Sprintf("payload-%d", i)
		canonical := fmt.Sprintf("g%02d/canonical", i)
		files[canonical] = content
		g := groups.Group{
			Fingerprint: fingerprint.Fingerprint(testutil.Checksum(content)),
			Canonical:   filepath.Join(root, filepath.FromSlash(canonical)),
		}
		for j := 0; j < 3; j++ {
			rel := fmt.Sprintf("g%02d/copy-%d", i, j)
			files[rel] = content
			g.Duplicates = append(g.Duplicates, filepath.Join(root, filepath.FromSlash(rel)))
		}
		gs = append(gs, g)
	}
	testutil.WriteTree(t, root, files)
	model := groups.New(filesystem.NewOS(), gs)

	var seen int
	engine := newEngine(filesystem.NewOS(), func(o *Options) {
		o.Parallelism = 8
		o.OnResult = func(Result) { seen++ }
	})
	report := engine.Apply(model, All(), DeleteAndLink)

	assert.Equal(t, 120, seen)
	assert.Equal(t, 120, report.Linked)
	assert.Equal(t, 0, report.Failed)
	for i, res := range report.Results {
		assert.Equal(t, groups.MemberRef{Group: i / 3, Member: i % 3}, res.Ref)
	}
}

func TestParseTransform(t *testing.T) {
	for in, want := range map[string]Transform{
		"delete": Delete, "remove": Delete, "link": DeleteAndLink, "SYMLINK": DeleteAndLink,
	} {
		got, err := ParseTransform(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTransform("shred")
	assert.Error(t, err)
}
