package promote

import (
	"fmt"

	"github.com/arthur-debert/promote/internal/version"
	"github.com/arthur-debert/promote/pkg/config"
	"github.com/arthur-debert/promote/pkg/ui"
	"github.com/arthur-debert/promote/pkg/workflow"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func wrapMsg(format string, err error) error {
	return fmt.Errorf(format, err)
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	var (
		label         string
		additional    string
		output        string
		verifyLoaders bool
	)

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}

			log.Info().
				Str("base_dir", s.resolver.BaseDirectory()).
				Str("label", label).
				Bool("dry_run", g.dryRun).
				Msg("Building manifest")

			res, err := workflow.Build(s.resolver, s.cfg, workflow.BuildOptions{
				Label:                label,
				AdditionalProperties: additional,
				Output:               output,
				VerifyLoaders:        verifyLoaders,
				DryRun:               g.dryRun,
			})
			if err != nil {
				return s.fail(err)
			}
			return s.renderer.RenderResult(ui.NewBuildView(res, g.dryRun))
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", MsgFlagLabel)
	cmd.Flags().StringVarP(&additional, "additional-properties", "a", "", MsgFlagAdditional)
	cmd.Flags().StringVarP(&output, "output", "o", "", MsgFlagOutput)
	cmd.Flags().BoolVar(&verifyLoaders, "verify-loaders", false, MsgFlagVerifyLoaders)
	_ = cmd.MarkFlagRequired("label")

	return cmd
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	var opts workflow.VerifyOptions

	cmd := &cobra.Command{
		Use:     "verify",
		Short:   MsgVerifyShort,
		Long:    MsgVerifyLong,
		Example: MsgVerifyExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}

			res, err := workflow.Verify(s.resolver, s.cfg, opts)
			if err != nil {
				return s.fail(err)
			}
			return s.renderer.RenderResult(ui.NewVerifyView(res))
		},
	}

	cmd.Flags().StringVarP(&opts.Manifest, "manifest", "m", "", MsgFlagManifest)
	cmd.Flags().BoolVar(&opts.SkipHashCheck, "skip-hash-check", false, MsgFlagSkipHash)
	cmd.Flags().BoolVar(&opts.SkipVersionCheck, "skip-version-check", false, MsgFlagSkipVersion)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, MsgFlagStrict)

	return cmd
}

func newListCmd(g *globalOptions) *cobra.Command {
	var (
		manifestPath string
		asTree       bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}

			if manifestPath == "" {
				manifestPath = s.cfg.Metadata.Manifest
			}
			p, err := workflow.ParseManifest(s.resolver, s.cfg, manifestPath)
			if err != nil {
				return s.fail(err)
			}
			return s.renderer.RenderResult(ui.NewListView(manifestPath, p.PromotionProperties(), p.Entries(), asTree))
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", MsgFlagManifest)
	cmd.Flags().BoolVarP(&asTree, "tree", "t", false, MsgFlagTree)

	return cmd
}

func newConfigCmd(g *globalOptions) *cobra.Command {
	var initTemplate bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initTemplate {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.GenerateConfigContent())
				return err
			}

			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			content, err := config.Render(s.cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().BoolVar(&initTemplate, "init", false, MsgFlagInit)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		Long:    MsgVersionLong,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, MsgVersionFormat, version.Version)
			if version.Commit != "" {
				_, _ = fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				_, _ = fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
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
				return cmd.Root().GenBashCompletion(out)
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
