package workflow

import (
	"github.com/arthur-debert/promote/pkg/config"
	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/promotion"
)

// VerifyOptions are the inputs of a verify run. Unset flags fall back to the
// verify section of the settings.
type VerifyOptions struct {
	// Manifest overrides metadata.manifest, relative to the base directory
	Manifest         string
	SkipHashCheck    bool
	SkipVersionCheck bool
	Strict           bool
	ToolVersion      string
}

// VerifyResult describes a verified manifest
type VerifyResult struct {
	ManifestPath string
	Promotion    map[string]string
	Entries      []manifest.PromotionEntry
	Report       *promotion.Report
}

// Verify parses the manifest in the tree behind resolver and verifies it
func Verify(resolver *filesystem.Resolver, cfg *config.Config, opts VerifyOptions) (*VerifyResult, error) {
	manifestPath := firstNonEmpty(opts.Manifest, cfg.Metadata.Manifest)
	p, err := ParseManifest(resolver, cfg, manifestPath)
	if err != nil {
		return nil, err
	}

	report, err := p.Verify(resolver, promotion.VerifyOptions{
		SkipHashCheck:    opts.SkipHashCheck || cfg.Verify.SkipHashCheck,
		SkipVersionCheck: opts.SkipVersionCheck || cfg.Verify.SkipVersionCheck,
		Strict:           opts.Strict || cfg.Verify.Strict,
		ToolVersion:      opts.ToolVersion,
		Accounted:        []string{config.ProjectConfigFile},
	})
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		ManifestPath: manifestPath,
		Promotion:    p.PromotionProperties(),
		Entries:      p.Entries(),
		Report:       report,
	}, nil
}

// ParseManifest reads and parses a manifest relative to the base directory
func ParseManifest(resolver *filesystem.Resolver, cfg *config.Config, manifestPath string) (*promotion.Parser, error) {
	full, err := resolver.ResolveFile(manifestPath)
	if err != nil {
		return nil, err
	}
	f, err := resolver.Fs().Open(full)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open manifest %s", full)
	}
	defer func() {
		_ = f.Close()
	}()

	p := promotion.NewParser(promotion.Settings{
		LoaderDir: cfg.Metadata.LoaderDir,
		LoaderExt: cfg.Metadata.LoaderExt,
	})
	if err := p.Parse(f); err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "failed to parse manifest %s", manifestPath).
			WithDetail("path", manifestPath)
	}
	return p, nil
}
