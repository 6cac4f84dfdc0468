package webrig

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/webrig/internal/version"
	"github.com/arthur-debert/webrig/pkg/cobrax/topics"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/style"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
	dir        string
	noColor    bool
}

// workDir returns the directory the command runs in
func (o *globalOptions) workDir() (string, error) {
	if o.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrConfigLoad, "failed to determine working directory")
		}
		return wd, nil
	}
	abs, err := filepath.Abs(o.dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid directory %s", o.dir)
	}
	return abs, nil
}

// loadConfig reads the layered configuration, applying changed flags of cmd
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := o.workDir()
	if err != nil {
		return nil, err
	}
	return config.Load(config.LoadOptions{
		ConfigFile: o.configFile,
		Dir:        dir,
		Flags:      cmd.Flags(),
	})
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "webrig",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			style.Setup(cmd.OutOrStdout(), opts.noColor)
			logger := logging.GetLogger("cmd")
			logger.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgNoCommandGiven)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.dir, "dir", "C", "", MsgFlagDir)
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, MsgFlagNoColor)

	rootCmd.AddGroup(&cobra.Group{ID: "build", Title: "BUILD:"})
	rootCmd.AddGroup(&cobra.Group{ID: "inspect", Title: "INSPECT:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newResolveCmd(opts))
	rootCmd.AddCommand(newRulesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newInitCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	renderer := topics.NewGlamourRenderer(style.ColorEnabled(os.Stdout))
	if _, err := topics.Initialize(rootCmd, helpTopics(), topics.Options{Renderer: renderer}); err != nil {
		logger := logging.GetLogger("cmd")
		logger.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}
