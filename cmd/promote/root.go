package promote

import (
	stderrors "errors"
	"os"

	"github.com/arthur-debert/promote/internal/version"
	"github.com/arthur-debert/promote/pkg/config"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/topics"
	"github.com/arthur-debert/promote/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	verbosity int
	baseDir   string
	format    string
	dryRun    bool
}

// session is what a command needs to run against one source tree
type session struct {
	resolver *filesystem.Resolver
	cfg      *config.Config
	format   ui.Format
	renderer ui.Renderer
}

// ReportedError marks an error that was already rendered to the command's
// output, so main only needs to set the exit status.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already rendered
func IsReported(err error) bool {
	var reported *ReportedError
	return stderrors.As(err, &reported)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	initTemplateFormatting()

	rootCmd := &cobra.Command{
		Use:     "promote",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.baseDir, "base-dir", "C", "", MsgFlagBaseDir)
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})

	rootCmd.AddCommand(newBuildCmd(opts))
	rootCmd.AddCommand(newVerifyCmd(opts))
	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	tm, err := topics.New(topics.Options{Renderer: topics.NewMarkdownRenderer()})
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	} else {
		tm.Install(rootCmd)
	}

	return rootCmd
}

// open loads configuration and builds the resolver and renderer for a run
func (g *globalOptions) open(cmd *cobra.Command) (*session, error) {
	format, err := ui.ParseFormat(g.format)
	if err != nil {
		return nil, wrapMsg(MsgErrFormat, err)
	}

	baseDir := g.baseDir
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			return nil, wrapMsg(MsgErrResolver, err)
		}
	}

	cfg, err := config.Load(baseDir)
	if err != nil {
		return nil, wrapMsg(MsgErrLoadConfig, err)
	}

	resolver, err := filesystem.NewOS(baseDir, cfg.Metadata.Dir)
	if err != nil {
		return nil, wrapMsg(MsgErrResolver, err)
	}

	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("base_dir", resolver.BaseDirectory()).
		Str("format", format.String()).
		Msg("Session opened")

	return &session{resolver: resolver, cfg: cfg, format: format, renderer: renderer}, nil
}

// fail renders err in the structured formats, where callers parse stdout
// and expect the error there too
func (s *session) fail(err error) error {
	if !s.format.IsStructured() {
		return err
	}
	if rerr := s.renderer.RenderError(err); rerr != nil {
		log.Error().Err(rerr).Msg("Failed to render error")
		return err
	}
	return &ReportedError{Err: err}
}
