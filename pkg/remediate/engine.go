// Package remediate deletes duplicate files, optionally replacing each with
// a symbolic link to its group's canonical copy.
//
// Group membership comes from an earlier scan and is never trusted: every
// (canonical, member) pair is re-classified right before it is touched.
// Work is best-effort; one member failing never stops the batch. Distinct
// groups own disjoint paths, so groups run in parallel while the members
// of one group run in order.
package remediate

import (
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/arthur-debert/dupes/pkg/classify"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/fingerprint"
	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options configure an Engine
type Options struct {
	FS         filesystem.FS
	Classifier *classify.Classifier
	// DryRun validates every pair and reports what would happen without
	// touching the disk.
	DryRun bool
	// VerifyContent re-hashes both sides of a pair before unlinking and
	// skips the member if they no longer match.
	VerifyContent bool
	// Parallelism bounds how many groups are processed at once; <= 0 means GOMAXPROCS.
	Parallelism int
	// OnResult, if set, is called once per member as it completes. Calls
	// are serialized.
	OnResult func(Result)
}

// Engine executes remediation batches
type Engine struct {
	opts   Options
	logger zerolog.Logger
	mu     sync.Mutex
}

// New creates an engine
func New(opts Options) *Engine {
	if opts.FS == nil {
		opts.FS = filesystem.NewOS()
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New(opts.FS)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	return &Engine{opts: opts, logger: logging.GetLogger("remediate")}
}

type work struct {
	group int
	refs  []groups.MemberRef
}

// Apply runs transform over the selected members of model. It always
// returns a report; per-member problems are recorded in it, never returned.
func (e *Engine) Apply(model *groups.Model, sel Selection, transform Transform) *Report {
	report := &Report{
		BatchID:   uuid.NewString(),
		Transform: transform,
		DryRun:    e.opts.DryRun,
	}
	logger := e.logger.With().
		Str("batch", report.BatchID).
		Stringer("transform", transform).
		Bool("dryRun", e.opts.DryRun).
		Logger()
	done := logging.LogOperationStart(logger, "apply")
	defer done()

	batches, invalid := plan(model, sel)
	for _, res := range invalid {
		logger.Warn().Err(res.Err).Msg("Ignoring invalid selection")
		e.emit(res)
	}

	perGroup := make([][]Result, len(batches))
	var g errgroup.Group
	g.SetLimit(e.opts.Parallelism)
	for i, b := range batches {
		i, b := i, b
		g.Go(func() error {
			out := make([]Result, 0, len(b.refs))
			for _, ref := range b.refs {
				canonical, member, _ := model.Resolve(ref)
				res := e.applyOne(logger, ref, canonical, member, transform)
				e.emit(res)
				out = append(out, res)
			}
			perGroup[i] = out
			return nil
		})
	}
	// Per-member failures live in the results; the workers never return one.
	g.Wait()

	report.Results = append(report.Results, invalid...)
	for _, rs := range perGroup {
		report.Results = append(report.Results, rs...)
	}
	for _, res := range report.Results {
		report.tally(res)
	}

	logger.Info().
		Int("removed", report.Removed).
		Int("linked", report.Linked).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Remediation finished")
	return report
}

func (e *Engine) emit(res Result) {
	if e.opts.OnResult == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.OnResult(res)
}

// plan groups the selection by group, drops repeated refs, and splits off
// refs that do not resolve.
func plan(model *groups.Model, sel Selection) ([]work, []Result) {
	refs := sel.refs
	if sel.all {
		refs = model.Refs()
	}

	var invalid []Result
	byGroup := make(map[int][]groups.MemberRef)
	seen := make(map[groups.MemberRef]struct{}, len(refs))
	for _, ref := range refs {
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if _, _, err := model.Resolve(ref); err != nil {
			invalid = append(invalid, Result{Ref: ref, Outcome: OutcomeFailed, Err: err})
			continue
		}
		byGroup[ref.Group] = append(byGroup[ref.Group], ref)
	}

	batches := make([]work, 0, len(byGroup))
	for gi, rs := range byGroup {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Member < rs[j].Member })
		batches = append(batches, work{group: gi, refs: rs})
	}
	sort.Slice(batches, func(i, j int) bool { return batches[i].group < batches[j].group })
	return batches, invalid
}

func (e *Engine) applyOne(logger zerolog.Logger, ref groups.MemberRef, canonical, member string, transform Transform) Result {
	res := Result{Ref: ref, Path: member, Canonical: canonical, Status: groups.StatusDuplicate}
	log := logger.With().Str("path", member).Str("canonical", canonical).Logger()

	if excluded, reason := e.opts.Classifier.PairExcluded(canonical, member); excluded {
		res.Outcome = OutcomeSkipped
		res.Err = errors.Newf(errors.ErrRaceInvalidated, "%s no longer eligible: %s", member, reason).
			WithPath(member).
			WithDetail("reason", string(reason))
		log.Warn().Str("reason", string(reason)).Msg("Skipping member that changed since scan")
		return res
	}

	if e.opts.VerifyContent {
		if err := e.verify(canonical, member); err != nil {
			res.Outcome = OutcomeSkipped
			res.Err = err
			log.Warn().Err(err).Msg("Skipping member whose content changed since scan")
			return res
		}
	}

	if e.opts.DryRun {
		res.Outcome = OutcomePlanned
		log.Info().Msg("Would remediate member")
		return res
	}

	if err := e.opts.FS.Remove(member); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.Wrapf(err, errors.ErrMutationFailed, "cannot remove %s", member).WithPath(member)
		log.Error().Err(err).Msg("Failed to remove duplicate")
		return res
	}
	res.Status = e.advance(res.Status, groups.StatusRemoved)
	log.Info().Msg("Removed duplicate")

	if transform == Delete {
		res.Outcome = OutcomeSuccess
		return res
	}

	// A relative target would resolve against the link's own directory.
	target, err := filepath.Abs(canonical)
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.Wrapf(err, errors.ErrMutationFailed, "removed %s but cannot resolve %s", member, canonical).
			WithPath(member).
			WithDetail("canonical", canonical)
		log.Error().Err(err).Msg("Failed to resolve link target after removal")
		return res
	}

	// The member is gone at this point; a failed link leaves it absent.
	if err := e.opts.FS.Symlink(target, member); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = errors.Wrapf(err, errors.ErrMutationFailed, "removed %s but cannot link it to %s", member, canonical).
			WithPath(member).
			WithDetail("canonical", canonical)
		log.Error().Err(err).Msg("Failed to create link after removal")
		return res
	}
	res.Status = e.advance(res.Status, groups.StatusLinked)
	res.Outcome = OutcomeSuccess
	log.Info().Msg("Linked duplicate to canonical")
	return res
}

func (e *Engine) advance(from, to groups.Status) groups.Status {
	next, err := from.Advance(to)
	if err != nil {
		e.logger.Error().Err(err).Msg("Illegal status transition")
		return from
	}
	return next
}

func (e *Engine) verify(canonical, member string) error {
	want, err := fingerprint.Of(e.opts.FS, canonical)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRaceInvalidated, "cannot re-read %s", canonical).WithPath(member)
	}
	got, err := fingerprint.Of(e.opts.FS, member)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRaceInvalidated, "cannot re-read %s", member).WithPath(member)
	}
	if got != want {
		return errors.Newf(errors.ErrRaceInvalidated, "%s no longer matches %s", member, canonical).
			WithPath(member).
			WithDetail("reason", "content-changed")
	}
	return nil
}
