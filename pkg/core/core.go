// Package core is the entry point from the CLI layer. It wires the
// configuration into the classifier, index, and remediation engine and
// decides where the run goes next.
package core

import (
	"context"
	"time"

	"github.com/arthur-debert/dupes/pkg/classify"
	"github.com/arthur-debert/dupes/pkg/config"
	"github.com/arthur-debert/dupes/pkg/filesystem"
	"github.com/arthur-debert/dupes/pkg/groups"
	"github.com/arthur-debert/dupes/pkg/index"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/remediate"
	"github.com/arthur-debert/dupes/pkg/ui/selection"
)

// Decision tells the CLI where the run goes next
type Decision int

const (
	// Continue means there is something to act on
	Continue Decision = iota
	// Abort means the operator declined; the filesystem was not touched
	Abort
	// Done means there is nothing left to do
	Done
)

func (d Decision) String() string {
	switch d {
	case Continue:
		return "continue"
	case Abort:
		return "abort"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// NewClassifier builds the participation policy from cfg
func NewClassifier(fsys filesystem.FS, cfg *config.Config) *classify.Classifier {
	return classify.New(fsys, classify.WithIgnoreNames(cfg.IgnoreNames...))
}

// ScanOptions configure a scan
type ScanOptions struct {
	Root   string
	Config *config.Config
	FS     filesystem.FS
	// Classifier overrides the one built from Config
	Classifier *classify.Classifier
	Progress   func(hashed int, path string)
}

// ScanResult is a finished scan
type ScanResult struct {
	Root    string
	Index   *index.Result
	Model   *groups.Model
	Elapsed time.Duration
}

// Decision is Done when nothing was found, Continue otherwise
func (r *ScanResult) Decision() Decision {
	if r.Model.Len() == 0 {
		return Done
	}
	return Continue
}

// Scan indexes opts.Root and builds the group model
func Scan(ctx context.Context, opts ScanOptions) (*ScanResult, error) {
	logger := logging.GetLogger("core.scan")
	defer logging.LogOperationStart(logger, "scan")()

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewClassifier(fsys, cfg)
	}

	start := time.Now()
	res, err := index.Build(ctx, opts.Root, index.Options{
		FS:         fsys,
		Classifier: classifier,
		Workers:    cfg.Workers,
		Progress:   opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		Root:    res.Root,
		Index:   res,
		Model:   groups.New(fsys, res.Groups),
		Elapsed: time.Since(start),
	}
	logger.Info().
		Str("root", result.Root).
		Int("groups", result.Model.Len()).
		Int("duplicates", result.Model.DuplicateCount()).
		Dur("elapsed", result.Elapsed).
		Msg("Scan complete")
	return result, nil
}

// Plan is what the operator chose to do
type Plan struct {
	Decision  Decision
	Selection remediate.Selection
	Transform remediate.Transform
}

// Choose asks p for an action, and for the members when the action is
// selective. Choosing nothing in the checklist aborts.
func Choose(p selection.Prompter, model *groups.Model, limit int) (Plan, error) {
	if model.Len() == 0 {
		return Plan{Decision: Done}, nil
	}

	action, err := selection.ChooseAction(p)
	if err != nil {
		return Plan{Decision: Abort}, err
	}
	if action == selection.ActionAbort {
		return Plan{Decision: Abort}, nil
	}

	plan := Plan{Decision: Continue, Selection: remediate.All(), Transform: remediate.Delete}
	if action.Links() {
		plan.Transform = remediate.DeleteAndLink
	}
	if action.Selective() {
		refs, err := selection.ChooseMembers(p, model, limit, action.Links())
		if err != nil {
			return Plan{Decision: Abort}, err
		}
		plan.Selection = remediate.Members(refs...)
		if plan.Selection.IsEmpty() {
			plan.Decision = Abort
		}
	}
	return plan, nil
}

// RemediateOptions configure a remediation batch
type RemediateOptions struct {
	Model      *groups.Model
	Selection  remediate.Selection
	Transform  remediate.Transform
	Config     *config.Config
	FS         filesystem.FS
	Classifier *classify.Classifier
	DryRun     bool
	OnResult   func(remediate.Result)
}

// Remediate applies the transform to the selection. A cancelled context
// returns before anything is touched.
func Remediate(ctx context.Context, opts RemediateOptions) (*remediate.Report, error) {
	logger := logging.GetLogger("core.remediate")
	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("Remediation cancelled before start")
		return nil, err
	}

	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Default(); err != nil {
			return nil, err
		}
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = NewClassifier(fsys, cfg)
	}

	engine := remediate.New(remediate.Options{
		FS:            fsys,
		Classifier:    classifier,
		DryRun:        opts.DryRun,
		VerifyContent: cfg.Verify,
		Parallelism:   cfg.ParallelGroups,
		OnResult:      opts.OnResult,
	})
	return engine.Apply(opts.Model, opts.Selection, opts.Transform), nil
}
