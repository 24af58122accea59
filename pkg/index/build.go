// Package index walks a directory tree and groups files by content.
//
// Enumeration is single-threaded and sorted. Hashing fans out over a
// bounded worker pool. A single aggregator drains completed hashes and
// inserts them in discovery order, so the earliest-discovered path of a
// fingerprint is always its canonical no matter which worker finishes first.
package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/arthur-debert/dupes/pkg/classify"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/fingerprint"
	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options control a Build
type Options struct {
	FS         filesystem.FS
	Classifier *classify.Classifier
	// Workers bounds concurrent hashing; <= 0 means GOMAXPROCS.
	Workers int
	// Progress, if set, is called from the aggregator after each hashed file.
	Progress func(hashed int, path string)
}

// Stats summarizes a traversal
type Stats struct {
	Directories int `json:"directories" yaml:"directories"`
	Files       int `json:"files" yaml:"files"`
	Accepted    int `json:"accepted" yaml:"accepted"`
	Skipped     int `json:"skipped" yaml:"skipped"`
	Hashed      int `json:"hashed" yaml:"hashed"`
	Unreadable  int `json:"unreadable" yaml:"unreadable"`
	Unlisted    int `json:"unlisted_directories" yaml:"unlisted_directories"`
}

// Problem is a recovered per-file or per-directory failure
type Problem struct {
	Path string
	Err  error
}

// Result is the outcome of a Build
type Result struct {
	Root     string
	Groups   []groups.Group
	Stats    Stats
	Problems []Problem
}

type job struct {
	seq  int
	path string
}

type outcome struct {
	seq  int
	path string
	fp   fingerprint.Fingerprint
	err  error
}

// Build scans root and returns its duplicate groups. Unreadable files and
// directories are logged, recorded in Result.Problems, and skipped. Paths
// in the result are absolute even when root is relative. The only errors
// returned are context cancellation and a root that cannot be made absolute.
func Build(ctx context.Context, root string, opts Options) (*Result, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "cannot resolve root %s", root).WithPath(root)
	}
	root = abs

	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New(opts.FS)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger := logging.GetLogger("index").With().Str("root", root).Int("workers", workers).Logger()
	done := logging.LogOperationStart(logger, "build")
	defer done()

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan job, workers)
	results := make(chan outcome, workers)

	w := &walker{fs: opts.FS, classifier: opts.Classifier, logger: logger, jobs: jobs}
	g.Go(func() error {
		defer close(jobs)
		return w.walk(ctx, root)
	})

	var hashers errgroup.Group
	for i := 0; i < workers; i++ {
		hashers.Go(func() error {
			for j := range jobs {
				fp, err := fingerprint.Of(opts.FS, j.path)
				select {
				case results <- outcome{seq: j.seq, path: j.path, fp: fp, err: err}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return hashers.Wait()
	})

	res := &Result{Root: root}
	idx := New()
	pending := make(map[int]outcome)
	next := 0
	for out := range results {
		pending[out.seq] = out
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if o.err != nil {
				res.Stats.Unreadable++
				res.Problems = append(res.Problems, Problem{Path: o.path, Err: o.err})
				logger.Warn().Err(o.err).Str("path", o.path).Msg("Skipping unreadable file")
				continue
			}
			role := idx.Insert(o.path, o.fp)
			res.Stats.Hashed++
			logger.Trace().Str("path", o.path).Str("fingerprint", o.fp.Short()).Stringer("role", role).Msg("Indexed file")
			if opts.Progress != nil {
				opts.Progress(res.Stats.Hashed, o.path)
			}
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Groups = idx.Groups()
	res.Stats.Directories = w.stats.Directories
	res.Stats.Files = w.stats.Files
	res.Stats.Accepted = w.stats.Accepted
	res.Stats.Skipped = w.stats.Skipped
	res.Stats.Unlisted = w.stats.Unlisted
	res.Problems = append(w.problems, res.Problems...)

	logger.Info().
		Int("files", res.Stats.Files).
		Int("hashed", res.Stats.Hashed).
		Int("groups", len(res.Groups)).
		Int("problems", len(res.Problems)).
		Msg("Index built")
	return res, nil
}

// walker owns traversal state; only the walking goroutine touches it.
type walker struct {
	fs         filesystem.FS
	classifier *classify.Classifier
	logger     zerolog.Logger
	jobs       chan<- job

	seq      int
	stats    Stats
	problems []Problem
}

func (w *walker) walk(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		wrapped := errors.Wrapf(err, errors.ErrIOEnumerate, "cannot list %s", dir).WithPath(dir)
		w.stats.Unlisted++
		w.problems = append(w.problems, Problem{Path: dir, Err: wrapped})
		w.logger.Warn().Err(err).Str("path", dir).Msg("Skipping unreadable directory")
		return nil
	}
	w.stats.Directories++

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// A link to a directory reports Type() == ModeSymlink, never
		// ModeDir, so linked directories are not descended.
		if entry.Type()&fs.ModeSymlink == 0 && entry.IsDir() {
			if err := w.walk(ctx, path); err != nil {
				return err
			}
			continue
		}

		w.stats.Files++
		if excluded, reason := w.classifier.Excluded(path); excluded {
			w.stats.Skipped++
			w.logger.Debug().Str("path", path).Str("reason", string(reason)).Msg("Skipping file")
			continue
		}
		w.stats.Accepted++

		select {
		case w.jobs <- job{seq: w.seq, path: path}:
			w.seq++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
