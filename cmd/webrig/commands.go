package webrig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/webrig/internal/version"
	"github.com/arthur-debert/webrig/pkg/build"
	"github.com/arthur-debert/webrig/pkg/config"
	"github.com/arthur-debert/webrig/pkg/errors"
	"github.com/arthur-debert/webrig/pkg/logging"
	"github.com/arthur-debert/webrig/pkg/rules"
	"github.com/arthur-debert/webrig/pkg/style"
	"github.com/arthur-debert/webrig/pkg/watch"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// addBuildFlags registers the flags that override configuration keys
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().String("entry", "", MsgFlagEntry)
	cmd.Flags().String("output-path", "", MsgFlagOutputPath)
	cmd.Flags().String("public-path", "", MsgFlagPublicPath)
	cmd.Flags().Int("parallelism", 0, MsgFlagParallelism)
	cmd.Flags().String("devtool", "", MsgFlagDevtool)
	cmd.Flags().String("context", "", MsgFlagContext)
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			compiler, err := build.New(cfg)
			if err != nil {
				return err
			}
			result, err := compiler.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.RenderBuild(result))
			return nil
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "build",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			compiler, err := build.New(cfg)
			if err != nil {
				return err
			}

			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			fmt.Fprint(out, style.Render(fmt.Sprintf(MsgWatchStarted, cfg.Context)))
			return watch.Run(cmd.Context(), compiler, watch.Options{
				Root:   cfg.Context,
				Ignore: []string{compiler.OutputDir()},
				OnBuild: func(result *build.Result, err error) {
					if err != nil {
						fmt.Fprintln(errOut, style.RenderError(err))
						return
					}
					fmt.Fprintln(out, style.RenderBuild(result))
				},
			})
		},
	}
	addBuildFlags(cmd)
	return cmd
}

func newResolveCmd(opts *globalOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "resolve <path>...",
		Short:   MsgResolveShort,
		Long:    MsgResolveLong,
		GroupID: "inspect",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := rules.Compile(cfg.Rules)
			if err != nil {
				return err
			}
			dir, err := opts.workDir()
			if err != nil {
				return err
			}

			var unmatched []string
			for _, arg := range args {
				path := arg
				if !filepath.IsAbs(path) {
					path = filepath.Join(dir, path)
				}
				m, ok := table.Resolve(path)
				if !ok {
					unmatched = append(unmatched, arg)
				}
				fmt.Fprintln(cmd.OutOrStdout(), style.RenderMatch(arg, m, ok))
			}

			if strict && len(unmatched) > 0 {
				return errors.Newf(errors.ErrNoMatch, "%d of %d paths match no rule", len(unmatched), len(args)).
					WithDetail("paths", unmatched)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a path matches no rule")
	return cmd
}

func newRulesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rules",
		Short:   MsgRulesShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Rules) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), style.Muted.Render(MsgNoRules))
				return nil
			}
			if _, err := rules.Compile(cfg.Rules); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.RenderRules(cfg.Rules))
			return nil
		},
	}
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var (
		format   string
		defaults bool
	)

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
				return nil
			}
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := config.Marshal(cfg, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", MsgFlagFormat)
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	addBuildFlags(cmd)
	return cmd
}

func newInitCmd(opts *globalOptions) *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		Long:    MsgInitLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			dir, err := opts.workDir()
			if err != nil {
				return err
			}

			path := filepath.Join(dir, "webrig."+string(f))
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.ErrAlreadyExists, MsgConfigExists, path).WithDetail("path", path)
			}

			data, err := config.Marshal(config.Starter(), f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path).WithDetail("path", path)
			}

			logger := logging.GetLogger("cmd.init")
			logger.Info().Str("path", path).Msg("Wrote starter configuration")
			fmt.Fprint(cmd.OutOrStdout(), style.Render(fmt.Sprintf(MsgInitWritten, path)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "toml", MsgFlagFormat)
	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// ManHeader is the header of generated man pages
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "WEBRIG",
		Section: "1",
		Source:  "webrig " + version.Version,
		Manual:  "webrig manual",
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return doc.GenMan(cmd.Root(), ManHeader(), cmd.OutOrStdout())
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", dir)
			}
			return doc.GenManTree(cmd.Root(), ManHeader(), dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagManDir)
	return cmd
}
