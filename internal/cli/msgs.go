package cli

// Command descriptions
const (
	MsgRootShort = "Find duplicate files and reclaim the space they use"
	MsgRootLong  = `dupes walks a directory tree, groups files with identical content, and
offers to delete every copy but the first one found, optionally leaving a
symbolic link to the kept copy in place of each deleted file.

Run without a subcommand to scan the current directory (or the one given)
and choose what to do from a menu.`
	MsgRootExample = `  dupes                     # Scan the current directory and choose interactively
  dupes ~/Downloads         # Scan another directory
  dupes scan --format json  # List duplicate groups as JSON
  dupes remove --link --yes # Replace every duplicate with a link, no questions`

	MsgScanShort   = "List duplicate groups without changing anything"
	MsgRemoveShort = "Delete duplicates, optionally leaving links to the kept copy"
	MsgRemoveLong  = `remove deletes every duplicate of every group found under the root. The
first file found with a given content is the canonical copy and is never
touched.

Each pair is re-checked right before the duplicate is deleted; pairs that
changed since the scan are skipped and reported.`
	MsgReportShort     = "Export duplicate groups as json, yaml, xml or markdown"
	MsgConfigShort     = "Print the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `To load completions:

Bash:
  $ source <(dupes completion bash)

Zsh:
  $ dupes completion zsh > "${fpath[1]}/_dupes"

Fish:
  $ dupes completion fish | source

PowerShell:
  PS> dupes completion powershell | Out-String | Invoke-Expression`
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Read configuration from this file as well"
	MsgFlagWorkers  = "Number of files hashed concurrently (0 = all CPUs)"
	MsgFlagFormat   = "Output format: auto, term, text or json"
	MsgFlagLink     = "Replace each deleted duplicate with a link to the kept copy"
	MsgFlagSelect   = "Choose which duplicates to act on"
	MsgFlagYes      = "Do not ask for confirmation"
	MsgFlagDryRun   = "Show what would be done without changing anything"
	MsgFlagReportAs = "Report format: json, yaml, xml or markdown"
	MsgFlagOutput   = "Write the report to this file instead of stdout"
	MsgFlagDefaults = "Print the built-in defaults instead of the effective configuration"
)

// Phase and status messages
const (
	MsgPhaseIndex       = "Indexing %s"
	MsgPhaseIndexUpdate = "Indexing %s (%d files hashed)"
	MsgPhaseIndexDone   = "Hashed %d files in %d folders (%s)"
	MsgPhaseGroups      = "Looking for duplicates"
	MsgPhaseGroupsDone  = "Found %d duplicates in %d groups, %s reclaimable"
	MsgPhaseChoose      = "Waiting for a choice"
	MsgPhaseChooseDone  = "Chose: %s"
	MsgPhaseApply       = "Applying %s to %s"
	MsgPhaseApplyDone   = "Removed %d, linked %d, skipped %d, failed %d"
	MsgPhaseApplyDry    = "Dry run: nothing was changed"
	MsgNoDuplicates     = "No duplicates found"
	MsgAborted          = "Aborted, nothing was changed"
	MsgConfirmRemove    = "Delete %d duplicate files?"
	MsgConfirmLink      = "Delete %d duplicate files and link them to their kept copy?"
	MsgReportAborted    = "Report not written: %v\n"
	MsgConfigSources    = "# loaded from: %s\n"
	MsgConfigNoSources  = "# built-in defaults only\n"
	MsgVersionFormat    = "dupes version %s\n  commit: %s\n  built:  %s\n"
	MsgErrNeedTerminal  = "%s needs a terminal; pass --yes to run without asking"
	MsgErrSelectAndYes  = "--select and --yes cannot be combined"
	MsgErrSelectNoInput = "--select needs a terminal"
)

// MsgUsageTemplate is the help layout shared by every command
const MsgUsageTemplate = `{{boldUpper "usage"}}:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "aliases"}}:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "examples"}}:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "commands"}}:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "flags"}}:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "global flags"}}:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`
