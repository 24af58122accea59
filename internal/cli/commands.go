package cli

import (
	"fmt"

	"github.com/arthur-debert/dupes/pkg/config"
	"github.com/arthur-debert/dupes/pkg/core"
	"github.com/arthur-debert/dupes/pkg/errors"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/paths"
	"github.com/arthur-debert/dupes/pkg/remediate"
	"github.com/arthur-debert/dupes/pkg/report"
	"github.com/arthur-debert/dupes/pkg/ui"
	"github.com/arthur-debert/dupes/pkg/ui/selection"
	"github.com/spf13/cobra"
)

// runInteractive is the bare `dupes [root]`: scan, show, ask, apply
func runInteractive(cmd *cobra.Command, e *env, g *globalFlags, args []string) error {
	if !e.interactive {
		return errors.Newf(errors.ErrInvalidInput, MsgErrNeedTerminal, "the interactive menu")
	}
	s, err := newSession(cmd, e, g, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, doc, err := s.scan(ctx, 4)
	if err != nil {
		return err
	}
	if res.Decision() == core.Done {
		return nil
	}
	if err := s.showGroups(doc); err != nil {
		return err
	}

	plan, err := core.Choose(e.prompter, res.Model, s.cfg.SelectLimit)
	if err != nil {
		return err
	}
	if plan.Decision == core.Abort {
		logger := logging.GetLogger("cli")
		logger.Info().Msg("Aborted by user")
		return s.aborted()
	}
	s.chose(3, plan.Transform.String())

	rep, err := s.apply(ctx, 4, res, plan, false)
	if err != nil {
		return err
	}
	return s.showFinal(report.Build(res.Index, res.Model, rep))
}

func newScanCmd(e *env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "scan [root]",
		Short:   MsgScanShort,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, e, g, args)
			if err != nil {
				return err
			}
			_, doc, err := s.scan(cmd.Context(), 2)
			if err != nil {
				return err
			}
			if s.format == ui.FormatJSON {
				return report.WriteJSON(e.stdout, doc)
			}
			return s.showGroups(doc)
		},
	}
}

func newRemoveCmd(e *env, g *globalFlags) *cobra.Command {
	var (
		link   bool
		choose bool
		yes    bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "remove [root]",
		Short:   MsgRemoveShort,
		Long:    MsgRemoveLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case choose && yes:
				return errors.New(errors.ErrInvalidInput, MsgErrSelectAndYes)
			case choose && !e.interactive:
				return errors.New(errors.ErrInvalidInput, MsgErrSelectNoInput)
			case !choose && !yes && !dryRun && !e.interactive:
				return errors.Newf(errors.ErrInvalidInput, MsgErrNeedTerminal, "remove")
			}

			s, err := newSession(cmd, e, g, args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			total := 3
			if choose {
				total = 4
			}
			res, doc, err := s.scan(ctx, total)
			if err != nil {
				return err
			}
			if res.Decision() == core.Done {
				if s.format == ui.FormatJSON {
					return report.WriteJSON(e.stdout, doc)
				}
				return nil
			}
			if err := s.showGroups(doc); err != nil {
				return err
			}

			plan := core.Plan{Decision: core.Continue, Selection: remediate.All(), Transform: remediate.Delete}
			if link {
				plan.Transform = remediate.DeleteAndLink
			}

			step := 3
			switch {
			case choose:
				refs, err := selection.ChooseMembers(e.prompter, res.Model, s.cfg.SelectLimit, link)
				if err != nil {
					return err
				}
				if len(refs) == 0 {
					return s.aborted()
				}
				plan.Selection = remediate.Members(refs...)
				s.chose(3, fmt.Sprintf("%s %d files", plan.Transform, len(refs)))
				step = 4
			case !yes && !dryRun:
				prompt := MsgConfirmRemove
				if link {
					prompt = MsgConfirmLink
				}
				ok, err := e.confirm(fmt.Sprintf(prompt, res.Model.DuplicateCount()))
				if err != nil {
					return err
				}
				if !ok {
					return s.aborted()
				}
			}

			rep, err := s.apply(ctx, step, res, plan, dryRun)
			if err != nil {
				return err
			}
			return s.showFinal(report.Build(res.Index, res.Model, rep))
		},
	}

	cmd.Flags().BoolVarP(&link, "link", "l", false, MsgFlagLink)
	cmd.Flags().BoolVarP(&choose, "select", "s", false, MsgFlagSelect)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, MsgFlagYes)
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)

	return cmd
}

func newReportCmd(e *env, g *globalFlags) *cobra.Command {
	var (
		as     string
		output string
	)

	cmd := &cobra.Command{
		Use:     "report [root]",
		Short:   MsgReportShort,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseExportFormat(as)
			if err != nil {
				return err
			}
			// A bad destination aborts the report before any work is done,
			// without failing the run.
			if output != "" {
				if err := report.ValidateDestination(output); err != nil {
					return reportAborted(e, err)
				}
			}

			s, err := newSession(cmd, e, g, args)
			if err != nil {
				return err
			}
			_, doc, err := s.scan(cmd.Context(), 2)
			if err != nil {
				return err
			}

			if output != "" {
				if err := report.Export(output, doc, format); err != nil {
					return reportAborted(e, err)
				}
				logger := logging.GetLogger("cli")
				logger.Info().Str("path", output).Str("format", string(format)).Msg("Report written")
				return nil
			}
			if format == report.ExportMarkdown && s.format == ui.FormatTerminal {
				return report.NewRenderer(e.stdout, false).Markdown(doc, 100)
			}
			return report.Write(e.stdout, doc, format)
		},
	}

	cmd.Flags().StringVar(&as, "format", string(report.ExportJSON), MsgFlagReportAs)
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)

	return cmd
}

// reportAborted records a destination error for the report action only
func reportAborted(e *env, err error) error {
	logger := logging.GetLogger("cli")
	logger.Error().Err(err).Str("path", errors.GetErrorPath(err)).Msg("Report aborted")
	_, werr := fmt.Fprintf(e.stderr, MsgReportAborted, err)
	return werr
}

func newConfigCmd(e *env, g *globalFlags) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:     "config [root]",
		Short:   MsgConfigShort,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(e.stdout, config.GetDefaultsContent())
				return err
			}

			arg := "."
			if len(args) > 0 {
				arg = args[0]
			}
			root, err := paths.ResolveRoot(arg)
			if err != nil {
				return err
			}
			cfg, err := config.Load(config.LoadOptions{Root: root, File: g.configFile})
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
			}

			if len(cfg.Sources) == 0 {
				_, err = fmt.Fprint(e.stdout, MsgConfigNoSources)
			} else {
				for _, src := range cfg.Sources {
					if _, err = fmt.Fprintf(e.stdout, MsgConfigSources, src); err != nil {
						break
					}
				}
			}
			if err != nil {
				return err
			}
			_, err = e.stdout.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)

	return cmd
}
