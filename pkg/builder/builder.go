package builder

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/internal/hashutil"
	"github.com/arthur-debert/promote/pkg/loaders"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/rules"
	"github.com/rs/zerolog"
)

// Builder builds manifests for one base directory. Each BuildManifest call
// works on private state, so a Builder may be reused.
type Builder struct {
	resolver *filesystem.Resolver
	opts     Options
	logger   zerolog.Logger
	last     *Result
}

// New creates a Builder
func New(resolver *filesystem.Resolver, opts Options) (*Builder, error) {
	if opts.Label == "" {
		return nil, errors.New(errors.ErrInvalidInput, "a promotion label is required to build a manifest")
	}
	return &Builder{
		resolver: resolver,
		opts:     opts.withDefaults(),
		logger:   logging.GetLogger("builder"),
	}, nil
}

// BuildManifest builds the manifest and writes it to w. additionalPropsPath
// may be empty; a relative path is resolved against the base directory.
// Nothing is written unless the whole build succeeds.
func (b *Builder) BuildManifest(additionalPropsPath string, w io.Writer) (*Result, error) {
	done := logging.LogOperationStart(b.logger, "build manifest")
	defer done()

	s := newState()

	configFile, err := findConfigFile(b.resolver, b.opts.ConfigPattern)
	if err != nil {
		return nil, err
	}
	b.logger.Debug().Str("file", configFile).Msg("Found builder config file")

	overrideFile, err := findOverrideFile(b.resolver, b.opts.OverridePattern)
	if err != nil {
		return nil, err
	}
	if overrideFile != "" {
		b.logger.Debug().Str("file", overrideFile).Msg("Found manifest override file")
		if err := b.parseOverride(s, overrideFile); err != nil {
			return nil, err
		}
	}

	if additionalPropsPath != "" {
		if err := b.parseAdditionalProperties(s, additionalPropsPath); err != nil {
			return nil, err
		}
	}

	if err := b.readFile(configFile, func(r io.Reader) error {
		parsed, err := rules.ParseConfig(r)
		if err != nil {
			return errors.Wrapf(err, errors.GetErrorCode(err), "failed to parse builder config file %s", configFile)
		}
		s.rules = parsed
		return nil
	}); err != nil {
		return nil, err
	}

	if err := b.expandRules(s); err != nil {
		return nil, err
	}
	if err := validateReferences(s); err != nil {
		return nil, err
	}
	if err := b.compose(s); err != nil {
		return nil, err
	}

	result := b.result(s, configFile, overrideFile)

	var buf bytes.Buffer
	if err := manifest.Write(&buf, manifest.Document{
		Promotion: result.Promotion,
		Entries:   result.Entries,
		Comments:  s.comments,
	}); err != nil {
		return nil, err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to write manifest")
	}

	b.last = result
	b.logger.Info().
		Int("entries", len(result.Entries)).
		Int("ignored", len(result.Ignored)).
		Int("rules", len(s.rules)).
		Msg("Manifest built")

	return result, nil
}

// AllImplicatedFilePaths reports the paths placed by the most recent
// successful build, optionally including ignored ones. It is empty before
// the first build.
func (b *Builder) AllImplicatedFilePaths(includeIgnored bool) []string {
	if b.last == nil {
		return nil
	}
	return b.last.AllImplicatedFilePaths(includeIgnored)
}

func (b *Builder) readFile(path string, fn func(io.Reader) error) error {
	f, err := b.resolver.Fs().Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", path).WithDetail("path", path)
	}
	defer func() {
		_ = f.Close()
	}()
	return fn(f)
}

func (b *Builder) parseOverride(s *state, path string) error {
	var file *manifest.File
	err := b.readFile(path, func(r io.Reader) error {
		var err error
		file, err = manifest.ParseFile(r, manifest.ModeBuilder, nil)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, errors.GetErrorCode(err), "failed to parse manifest override file %s", path)
	}

	s.overridePromotion = file.Promotion
	positions := map[int]string{}

	for _, line := range file.Lines {
		entry := manifest.BuilderEntryFromLine(line)
		if err := manifest.CheckReserved(line.Properties, "manifest override entry for "+line.Path); err != nil {
			return err
		}

		if entry.IsAugmentation() {
			if _, dup := s.augmentations[entry.FilePath()]; dup {
				return errors.Newf(errors.ErrDuplicateAugmentation,
					"file %s has more than one augmentation (~) entry - only 1 is allowed per file", entry.FilePath()).
					WithDetail("path", entry.FilePath())
			}
			s.augmentations[entry.FilePath()] = entry
			continue
		}

		if other, dup := positions[entry.SequencePosition()]; dup {
			return errors.Newf(errors.ErrPositionCollision,
				"manifest override places both %s and %s at position %d", other, entry.FilePath(), entry.SequencePosition()).
				WithDetail("path", entry.FilePath()).
				WithDetail("other_path", other).
				WithDetail("position", entry.SequencePosition())
		}
		positions[entry.SequencePosition()] = entry.FilePath()
		s.overrides = append(s.overrides, entry)

		if !entry.IsForcedDuplicate() {
			s.claimed[entry.FilePath()] = true
		}
	}

	sort.SliceStable(s.overrides, func(i, j int) bool {
		return s.overrides[i].SequencePosition() < s.overrides[j].SequencePosition()
	})

	b.logger.Debug().
		Int("augmentations", len(s.augmentations)).
		Int("positionOverrides", len(s.overrides)).
		Msg("Parsed manifest override file")
	return nil
}

func (b *Builder) parseAdditionalProperties(s *state, path string) error {
	if !filepath.IsAbs(path) {
		path = b.resolver.Path(path)
	}
	b.logger.Debug().Str("file", path).Msg("Reading additional properties file")

	var file *manifest.File
	err := b.readFile(path, func(r io.Reader) error {
		var err error
		file, err = manifest.ParseFile(r, manifest.ModeBuilder, nil)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, errors.GetErrorCode(err), "failed to read additional properties file %s", path)
	}

	for _, line := range file.Lines {
		if !line.Augmentation {
			return errors.Newf(errors.ErrAdditionalProperties,
				"only augmentation (~) entries can be specified in the additional properties file, found: %s", line.Raw).
				WithDetail("line", line.Raw)
		}
		if line.Loader != "" {
			return errors.Newf(errors.ErrAdditionalProperties,
				"error in entry for %s: loader names cannot be specified in the additional properties file", line.Path).
				WithDetail("path", line.Path)
		}
		if err := manifest.CheckReserved(line.Properties, "additional properties for "+line.Path); err != nil {
			return err
		}
		s.additional[line.Path] = manifest.BuilderEntryFromLine(line)
	}
	return nil
}

// expandRules creates the default entries for every rule, in rule order
func (b *Builder) expandRules(s *state) error {
	expander := rules.NewExpander(b.resolver)
	s.candidates = make([][]manifest.BuilderEntry, len(s.rules))

	for i := range s.rules {
		rule := &s.rules[i]
		matches, err := expander.Expand(rule.Pattern)
		if err != nil {
			return err
		}

		for _, m := range matches {
			if m.IsDirectory {
				b.logger.Debug().Str("path", m.Path).Msg("Skip; directory")
				continue
			}
			if !b.resolver.IsFile(m.Path) {
				b.logger.Debug().Str("path", m.Path).Msg("Skip; does not exist")
				continue
			}

			if _, seen := s.pathRule[m.Path]; !seen {
				s.pathRule[m.Path] = rule
			}
			if s.claimed[m.Path] {
				b.logger.Debug().Str("path", m.Path).Str("pattern", rule.Pattern).Msg("Skip; already added")
				continue
			}

			loader := rule.Loader
			if aug, ok := s.augmentations[m.Path]; ok && aug.LoaderName() != "" {
				loader = aug.LoaderName()
			}
			if !loaders.IsUtility(loader) {
				s.claimed[m.Path] = true
			}

			props, err := b.cascade(s, m.Path, rule, nil)
			if err != nil {
				return err
			}
			s.candidates[i] = append(s.candidates[i],
				manifest.NewBuilderEntry(m.Path, loader, props, false, manifest.Unpositioned))
		}

		b.logger.Debug().
			Str("pattern", rule.Pattern).
			Int("files", len(s.candidates[i])).
			Msg("Rule expanded")
	}
	return nil
}

// validateReferences checks that every override and additional-properties
// path was selected by some rule
func validateReferences(s *state) error {
	check := func(path, source string) error {
		if _, ok := s.pathRule[path]; !ok {
			return errors.Newf(errors.ErrUnclaimedPath,
				"file '%s' is implicated in %s but not selected by any rule in the configuration file", path, source).
				WithDetail("path", path)
		}
		return nil
	}

	for _, e := range s.overrides {
		if err := check(e.FilePath(), "a manifest override entry"); err != nil {
			return err
		}
	}
	for _, path := range sortedKeys(s.augmentations) {
		if err := check(path, "a manifest override entry"); err != nil {
			return err
		}
	}
	for _, path := range sortedKeys(s.additional) {
		if err := check(path, "the additional properties file"); err != nil {
			return err
		}
	}
	return nil
}

// compose assigns positions to every rule entry and merges in the position
// overrides
func (b *Builder) compose(s *state) error {
	cursor, previousStart := 0, 0

	for i, rule := range s.rules {
		ruleStart := previousStart + rule.StartOffset
		previousStart = ruleStart
		cursor = ruleStart
		s.comment(ruleStart, fmtRuleComment(rule.Pattern, ruleStart))

		if err := b.drain(s, cursor); err != nil {
			return err
		}
		for _, candidate := range s.candidates[i] {
			cursor += rule.FileOffset
			if err := b.drain(s, cursor); err != nil {
				return err
			}
			if err := s.place(candidate.At(cursor)); err != nil {
				return err
			}
		}
	}

	return b.drain(s, math.MaxInt)
}

// drain places every pending override whose position is at or before limit
func (b *Builder) drain(s *state, limit int) error {
	for len(s.overrides) > 0 && s.overrides[0].SequencePosition() <= limit {
		override := s.overrides[0]
		s.overrides = s.overrides[1:]

		props, err := b.cascade(s, override.FilePath(), s.pathRule[override.FilePath()], &override)
		if err != nil {
			return err
		}
		b.logger.Debug().
			Str("path", override.FilePath()).
			Int("position", override.SequencePosition()).
			Bool("forcedDuplicate", override.IsForcedDuplicate()).
			Msg("Placing position override")
		if err := s.place(override.WithProperties(props)); err != nil {
			return err
		}
	}
	return nil
}

// cascade layers a file's properties, lowest precedence first
func (b *Builder) cascade(s *state, path string, rule *rules.Rule, override *manifest.BuilderEntry) (map[string]string, error) {
	layers := []map[string]string{}
	if rule != nil {
		layers = append(layers, rule.Properties)
	}
	if e, ok := s.additional[path]; ok {
		layers = append(layers, e.Properties())
	}
	if e, ok := s.augmentations[path]; ok {
		layers = append(layers, e.Properties())
	}
	if override != nil {
		layers = append(layers, override.Properties())
	}
	props := manifest.MergeProperties(layers...)

	hash, err := b.hash(s, path)
	if err != nil {
		return nil, err
	}
	props[manifest.PropFileHash] = hash
	props[manifest.PropFileVersion] = b.opts.Versioner(path, hash)
	return props, nil
}

func (b *Builder) hash(s *state, path string) (string, error) {
	if h, ok := s.hashes[path]; ok {
		return h, nil
	}
	full, err := b.resolver.ResolveFile(path)
	if err != nil {
		return "", err
	}
	h, err := hashutil.FileMD5(b.resolver.Fs(), full)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to generate file hash for %s", path).
			WithDetail("path", path)
	}
	s.hashes[path] = h
	return h, nil
}

func (b *Builder) result(s *state, configFile, overrideFile string) *Result {
	promotion := manifest.MergeProperties(s.overridePromotion)
	promotion[manifest.PropPromotionLabel] = b.opts.Label
	promotion[manifest.PropToolVersion] = b.opts.ToolVersion
	promotion[manifest.PropGeneratedDatetime] = b.opts.Now().Format(DatetimeFormat)

	positions := make([]int, 0, len(s.final))
	for pos := range s.final {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	entries := make([]manifest.BuilderEntry, 0, len(positions))
	for _, pos := range positions {
		entries = append(entries, s.final[pos])
	}

	ignored := make([]string, 0, len(s.ignored))
	for path := range s.ignored {
		ignored = append(ignored, path)
	}
	sort.Strings(ignored)

	return &Result{
		Entries:      entries,
		Promotion:    promotion,
		Ignored:      ignored,
		ConfigFile:   configFile,
		OverrideFile: overrideFile,
	}
}

func sortedKeys(m map[string]manifest.BuilderEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
