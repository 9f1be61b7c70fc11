package promotion

import (
	"sort"

	"github.com/arthur-debert/promote/internal/version"
	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/internal/hashutil"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/manifest"
)

// VerifyOptions controls which checks Verify performs
type VerifyOptions struct {
	SkipHashCheck    bool
	SkipVersionCheck bool
	// Strict turns files present but not implicated into an error
	Strict bool
	// ToolVersion is the running tool's version. Defaults to the binary's.
	ToolVersion string
	// Accounted lists tree files, relative to the base directory, that are
	// never reported as unimplicated
	Accounted []string
}

// Report summarises a successful verification
type Report struct {
	Entries       int
	Loaders       []string
	HashesChecked int
	// Unimplicated lists files in the tree that no entry references
	Unimplicated []string
}

// Verify checks the parsed manifest against the tree behind resolver. The
// first failing check aborts verification.
func (p *Parser) Verify(resolver *filesystem.Resolver, opts VerifyOptions) (*Report, error) {
	logger := logging.GetLogger("promotion.verify")
	done := logging.LogOperationStart(logger, "verify manifest")
	defer done()

	if p.promotion == nil {
		return nil, errors.New(errors.ErrInvalidInput, "manifest must be parsed before it can be verified")
	}

	if !opts.SkipVersionCheck {
		current := opts.ToolVersion
		if current == "" {
			current = version.ManifestVersion()
		}
		built := p.promotion[manifest.PropToolVersion]
		if !VersionsCompatible(current, built) {
			return nil, errors.Newf(errors.ErrVersionIncompatible,
				"manifest version incompatible. Version %s cannot safely execute a manifest built by version %s", current, built).
				WithDetail("current_version", current).
				WithDetail("manifest_version", built)
		}
	}

	names := p.LoaderNames()
	for _, name := range names {
		loaderPath := p.loaders[name]
		if _, err := resolver.ResolveFile(loaderPath); err != nil {
			return nil, errors.Wrapf(err, errors.ErrLoaderMissing, "loader file for loader %s cannot be located", name).
				WithDetail("loader", name).
				WithDetail("path", loaderPath)
		}
	}

	allFiles, err := resolver.AllFilePaths()
	if err != nil {
		return nil, err
	}
	remaining := make(map[string]bool, len(allFiles))
	for _, f := range allFiles {
		remaining[f] = true
	}
	for _, f := range opts.Accounted {
		delete(remaining, filesystem.NormalizePath(f))
	}

	computeHash := func(path string) (string, error) {
		full, err := resolver.ResolveFile(path)
		if err != nil {
			return "", err
		}
		return hashutil.FileMD5(resolver.Fs(), full)
	}

	report := &Report{Entries: len(p.entries), Loaders: names}
	for _, entry := range p.entries {
		full, err := resolver.ResolveFile(entry.FilePath())
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileMissing, "promotion file %s cannot be located", entry.FilePath()).
				WithDetail("path", entry.FilePath())
		}
		if rel, err := resolver.RelativePathOf(full); err == nil {
			delete(remaining, rel)
		}

		if opts.SkipHashCheck {
			continue
		}
		recorded, ok := entry.Property(manifest.PropFileHash)
		if !ok || recorded == "" {
			return nil, errors.Newf(errors.ErrHashMissing,
				"cannot perform hash check for %s as the %s property is not specified", entry.FilePath(), manifest.PropFileHash).
				WithDetail("path", entry.FilePath())
		}
		actual, err := entry.FileHash(computeHash)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "could not generate hash for file %s", entry.FilePath()).
				WithDetail("path", entry.FilePath())
		}
		if recorded != actual {
			return nil, errors.Newf(errors.ErrHashMismatch,
				"hash verification failed for file %s - expected %s but got %s", entry.FilePath(), recorded, actual).
				WithDetail("path", entry.FilePath()).
				WithDetail("expected", recorded).
				WithDetail("actual", actual)
		}
		report.HashesChecked++
		logger.Debug().Str("path", entry.FilePath()).Msg("Hash check OK")
	}

	for f := range remaining {
		report.Unimplicated = append(report.Unimplicated, f)
	}
	sort.Strings(report.Unimplicated)

	if len(report.Unimplicated) > 0 {
		if opts.Strict {
			return nil, errors.Newf(errors.ErrUnimplicatedFiles,
				"%d file(s) found in base directory but not listed in the manifest file", len(report.Unimplicated)).
				WithDetail("files", report.Unimplicated)
		}
		logger.Warn().
			Int("count", len(report.Unimplicated)).
			Strs("files", report.Unimplicated).
			Msg("Files found in base directory but not listed in the manifest file")
	}

	return report, nil
}
