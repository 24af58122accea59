package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/dupes/internal/version"
	"github.com/arthur-debert/dupes/pkg/logging"
	"github.com/arthur-debert/dupes/pkg/ui"
	"github.com/arthur-debert/dupes/pkg/ui/selection"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// env is everything a command reads from or writes to outside the
// filesystem being deduplicated
type env struct {
	stdout io.Writer
	stderr io.Writer
	// terminal is stdout as a file, used for format detection. Nil means
	// auto format resolves to text.
	terminal *os.File
	// interactive is true when both stdin and stdout are terminals
	interactive bool
	prompter    selection.Prompter
	confirm     func(prompt string) (bool, error)
}

func defaultEnv() *env {
	term := selection.NewTerminal()
	return &env{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		terminal:    os.Stdout,
		interactive: ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout),
		prompter:    term,
		confirm:     term.Confirm,
	}
}

type globalFlags struct {
	verbosity  int
	configFile string
	workers    int
	format     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnv())
}

func newRootCmd(e *env) *cobra.Command {
	initTemplateFormatting()

	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "dupes [root]",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, e, g, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().IntVar(&g.workers, "workers", 0, MsgFlagWorkers)
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newScanCmd(e, g))
	rootCmd.AddCommand(newRemoveCmd(e, g))
	rootCmd.AddCommand(newReportCmd(e, g))
	rootCmd.AddCommand(newConfigCmd(e, g))
	rootCmd.AddCommand(newVersionCmd(e))
	rootCmd.AddCommand(newCompletionCmd(e))

	return rootCmd
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Args:    cobra.NoArgs,
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(e.stdout, MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(e.stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(e.stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(e.stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(e.stdout)
			}
			return nil
		},
	}
}
