package webrig

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort       = "A configurable bundler for web projects"
	MsgBuildShort      = "Build the bundle"
	MsgWatchShort      = "Build and rebuild on changes"
	MsgResolveShort    = "Show the rule that handles each path"
	MsgRulesShort      = "List the configured rules"
	MsgConfigShort     = "Print the effective configuration"
	MsgInitShort       = "Write a starter configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	MsgInitWritten    = "[success]Wrote[/success] [path]%s[/path]\n"
	MsgWatchStarted   = "[header]Watching[/header] [path]%s[/path] for changes, press Ctrl-C to stop\n"
	MsgNoRules        = "No rules configured."
	MsgConfigExists   = "%s already exists, use --force to overwrite"
	MsgNoCommandGiven = "no command specified"

	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file (default webrig.toml in the current directory)"
	MsgFlagDir         = "Run as if started in this directory"
	MsgFlagNoColor     = "Disable coloured output"
	MsgFlagEntry       = "Entry module"
	MsgFlagOutputPath  = "Output directory"
	MsgFlagPublicPath  = "URL prefix of the output directory"
	MsgFlagParallelism = "Files transformed concurrently (default number of CPUs)"
	MsgFlagDevtool     = "Source map style (ignored)"
	MsgFlagContext     = "Directory modules are resolved against"
	MsgFlagFormat      = "Output format: toml or yaml"
	MsgFlagDefaults    = "Print the built-in defaults instead"
	MsgFlagForce       = "Overwrite an existing configuration file"
	MsgFlagManDir      = "Write one page per command into this directory"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/build-long.txt
	msgBuildLongRaw string
	MsgBuildLong    = strings.TrimSpace(msgBuildLongRaw)

	//go:embed msgs/build-example.txt
	msgBuildExampleRaw string
	MsgBuildExample    = strings.TrimRight(msgBuildExampleRaw, "\n")

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/resolve-long.txt
	msgResolveLongRaw string
	MsgResolveLong    = strings.TrimSpace(msgResolveLongRaw)

	//go:embed msgs/init-long.txt
	msgInitLongRaw string
	MsgInitLong    = strings.TrimSpace(msgInitLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
