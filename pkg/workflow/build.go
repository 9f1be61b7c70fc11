package workflow

import (
	"bytes"
	"path/filepath"
	"time"

	"github.com/arthur-debert/promote/pkg/builder"
	"github.com/arthur-debert/promote/pkg/config"
	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/promotion"
	"github.com/spf13/afero"
)

// BuildOptions are the inputs of a build run
type BuildOptions struct {
	Label string
	// AdditionalProperties is an optional additional-properties file
	AdditionalProperties string
	// Output overrides metadata.manifest, relative to the base directory
	Output string
	// VerifyLoaders re-reads the written manifest and checks that every
	// user-defined loader file exists
	VerifyLoaders bool
	// DryRun builds the manifest without writing it
	DryRun bool

	ToolVersion string
	Now         func() time.Time
}

// BuildResult describes a finished build
type BuildResult struct {
	ManifestPath string
	Manifest     string
	Result       *builder.Result
	// Unimplicated lists files in the tree that no rule accounted for
	Unimplicated []string
	Loaders      []string
}

// Build builds the manifest for the tree behind resolver and writes it to
// the configured manifest location
func Build(resolver *filesystem.Resolver, cfg *config.Config, opts BuildOptions) (*BuildResult, error) {
	logger := logging.GetLogger("workflow.build")

	b, err := builder.New(resolver, builder.Options{
		Label:           opts.Label,
		ToolVersion:     opts.ToolVersion,
		Now:             opts.Now,
		ConfigPattern:   cfg.Builder.ConfigPattern,
		OverridePattern: cfg.Builder.OverridePattern,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	result, err := b.BuildManifest(opts.AdditionalProperties, &buf)
	if err != nil {
		return nil, err
	}

	out := &BuildResult{
		ManifestPath: firstNonEmpty(opts.Output, cfg.Metadata.Manifest),
		Manifest:     buf.String(),
		Result:       result,
	}

	// Builder inputs and the project settings file account for themselves
	accounted := append(result.AllImplicatedFilePaths(true), config.ProjectConfigFile)
	for _, input := range []string{result.ConfigFile, result.OverrideFile, opts.AdditionalProperties} {
		if input == "" {
			continue
		}
		if !filepath.IsAbs(input) {
			input = resolver.Path(input)
		}
		if rel, err := resolver.RelativePathOf(input); err == nil {
			accounted = append(accounted, rel)
		}
	}

	unimplicated, err := unimplicatedFiles(resolver, accounted)
	if err != nil {
		return nil, err
	}
	out.Unimplicated = unimplicated
	if len(unimplicated) > 0 {
		if cfg.Builder.FailOnUnimplicated {
			return nil, errors.Newf(errors.ErrUnimplicatedFiles,
				"%d file(s) in the base directory are not implicated by the builder rules", len(unimplicated)).
				WithDetail("files", unimplicated)
		}
		logger.Warn().
			Int("count", len(unimplicated)).
			Strs("files", unimplicated).
			Msg("Files not implicated by the builder rules")
	}

	if opts.VerifyLoaders {
		p := promotion.NewParser(promotion.Settings{
			LoaderDir: cfg.Metadata.LoaderDir,
			LoaderExt: cfg.Metadata.LoaderExt,
		})
		if err := p.Parse(bytes.NewReader(buf.Bytes())); err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "built manifest failed to parse")
		}
		for _, name := range p.LoaderNames() {
			loaderPath := p.Loaders()[name]
			if !resolver.IsFile(loaderPath) {
				return nil, errors.Newf(errors.ErrLoaderMissing, "loader file for loader %s cannot be located", name).
					WithDetail("loader", name).
					WithDetail("path", loaderPath)
			}
		}
		out.Loaders = p.LoaderNames()
	}

	if opts.DryRun {
		logger.Info().Msg("Dry run: manifest not written")
		return out, nil
	}

	target := resolver.Path(out.ManifestPath)
	if err := resolver.Fs().MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot create directory for %s", target)
	}
	if err := afero.WriteFile(resolver.Fs(), target, buf.Bytes(), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot write manifest to %s", target).
			WithDetail("path", target)
	}

	logger.Info().
		Str("path", target).
		Int("entries", len(result.Entries)).
		Msg("Manifest written")
	return out, nil
}

// unimplicatedFiles lists the tree's files missing from accounted
func unimplicatedFiles(resolver *filesystem.Resolver, accounted []string) ([]string, error) {
	all, err := resolver.AllFilePaths()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(accounted))
	for _, p := range accounted {
		set[p] = true
	}

	var out []string
	for _, p := range all {
		if !set[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
