package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/arthur-debert/dupes/pkg/config"
	"github.com/arthur-debert/dupes/pkg/core"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/paths"
	"github.com/arthur-debert/dupes/pkg/remediate"
	"github.com/arthur-debert/dupes/pkg/report"
	"github.com/arthur-debert/dupes/pkg/ui"
	"github.com/arthur-debert/dupes/pkg/ui/progress"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// session is one command run against one root
type session struct {
	e        *env
	root     string
	cfg      *config.Config
	format   ui.Format
	progress *progress.Reporter
}

func newSession(cmd *cobra.Command, e *env, g *globalFlags, args []string) (*session, error) {
	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	root, err := paths.ResolveRoot(arg)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(config.LoadOptions{Root: root, File: g.configFile})
	if err != nil {
		return nil, err
	}
	// Flags are the last layer. Lookups go through the root so a
	// subcommand's own --format does not count.
	persistent := cmd.Root().PersistentFlags()
	if persistent.Changed("workers") {
		cfg.Workers = g.workers
	}
	if persistent.Changed("format") {
		cfg.Format = g.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := ui.ParseFormat(cfg.Format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid output format")
	}
	if format == ui.FormatAuto {
		format = ui.FormatText
		if e.terminal != nil {
			format = ui.DetectFormat(e.terminal)
		}
	}

	logger := logging.GetLogger("cli")
	logger.Debug().
		Str("root", root).
		Strs("config", cfg.Sources).
		Str("format", format.String()).
		Msg("Session ready")

	return &session{e: e, root: root, cfg: cfg, format: format}, nil
}

func (s *session) progressOut() io.Writer {
	if s.format == ui.FormatJSON {
		return nil
	}
	return s.e.stderr
}

func (s *session) renderer() *report.Renderer {
	return report.NewRenderer(s.e.stdout, s.format != ui.FormatTerminal)
}

// scan runs the first two phases of a pipeline of total phases
func (s *session) scan(ctx context.Context, total int) (*core.ScanResult, *report.Document, error) {
	s.progress = progress.New(s.progressOut(), s.format == ui.FormatTerminal, total)

	phase := s.progress.Start(1, fmt.Sprintf(MsgPhaseIndex, s.root))
	res, err := core.Scan(ctx, core.ScanOptions{
		Root:   s.root,
		Config: s.cfg,
		Progress: func(hashed int, _ string) {
			phase.Update(fmt.Sprintf(MsgPhaseIndexUpdate, s.root, hashed))
		},
	})
	if err != nil {
		phase.Fail(err.Error())
		return nil, nil, err
	}
	stats := res.Index.Stats
	phase.Success(fmt.Sprintf(MsgPhaseIndexDone, stats.Hashed, stats.Directories, res.Elapsed.Round(time.Millisecond)))

	doc := report.Build(res.Index, res.Model, nil)

	phase = s.progress.Start(2, MsgPhaseGroups)
	if res.Decision() == core.Done {
		phase.Success(MsgNoDuplicates)
	} else {
		phase.Success(fmt.Sprintf(MsgPhaseGroupsDone, doc.DuplicateCount, doc.GroupCount, humanize.Bytes(uint64(doc.ReclaimableBytes))))
	}
	return res, doc, nil
}

// chose records the operator's choice as its own phase
func (s *session) chose(step int, text string) {
	s.progress.Start(step, MsgPhaseChoose).Success(fmt.Sprintf(MsgPhaseChooseDone, text))
}

func (s *session) apply(ctx context.Context, step int, res *core.ScanResult, plan core.Plan, dryRun bool) (*remediate.Report, error) {
	phase := s.progress.Start(step, fmt.Sprintf(MsgPhaseApply, plan.Transform, s.root))
	rep, err := core.Remediate(ctx, core.RemediateOptions{
		Model:     res.Model,
		Selection: plan.Selection,
		Transform: plan.Transform,
		Config:    s.cfg,
		DryRun:    dryRun,
		OnResult: func(r remediate.Result) {
			phase.Update(fmt.Sprintf(MsgPhaseApply, plan.Transform, r.Path))
		},
	})
	if err != nil {
		phase.Fail(err.Error())
		return nil, err
	}

	summary := fmt.Sprintf(MsgPhaseApplyDone, rep.Removed, rep.Linked, rep.Skipped, rep.Failed)
	switch {
	case dryRun:
		phase.Success(MsgPhaseApplyDry)
	case rep.Failed > 0:
		phase.Fail(summary)
	default:
		phase.Success(summary)
	}
	return rep, nil
}

// showGroups prints the scan result; JSON output waits for the final document
func (s *session) showGroups(doc *report.Document) error {
	if s.format == ui.FormatJSON {
		return nil
	}
	r := s.renderer()
	if err := r.Groups(doc); err != nil {
		return err
	}
	return r.Problems(doc)
}

// showFinal prints the closing document of a run
func (s *session) showFinal(doc *report.Document) error {
	if s.format == ui.FormatJSON {
		return report.WriteJSON(s.e.stdout, doc)
	}
	return s.renderer().Remediation(doc)
}

func (s *session) aborted() error {
	if s.format == ui.FormatJSON {
		return nil
	}
	_, err := fmt.Fprintln(s.e.stdout, MsgAborted)
	return err
}
