package promotion

import (
	"io"
	"sort"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/loaders"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/rs/zerolog"
)

// Default location of user-defined loader files, relative to the base
// directory
const (
	DefaultLoaderDir = "ScriptRunner/Loaders"
	DefaultLoaderExt = ".sql"
)

// Settings configures where loader definitions are looked up
type Settings struct {
	LoaderDir string
	LoaderExt string
}

// Parser parses a manifest in promotion mode
type Parser struct {
	settings  Settings
	logger    zerolog.Logger
	entries   []manifest.PromotionEntry
	promotion map[string]string
	loaders   map[string]string
}

// NewParser creates a Parser
func NewParser(settings Settings) *Parser {
	if settings.LoaderDir == "" {
		settings.LoaderDir = DefaultLoaderDir
	}
	if settings.LoaderExt == "" {
		settings.LoaderExt = DefaultLoaderExt
	}
	return &Parser{
		settings: settings,
		logger:   logging.GetLogger("promotion"),
	}
}

// Parse reads the manifest from r. Any earlier result is discarded.
func (p *Parser) Parse(r io.Reader) error {
	p.entries = nil
	p.promotion = nil
	p.loaders = map[string]string{}

	highest := 0
	seen := map[string]bool{}
	occurrences := map[string]int{}
	var entries []manifest.PromotionEntry

	file, err := manifest.ParseFile(r, manifest.ModePromotion, func(line manifest.Line) error {
		if line.Position <= highest {
			return errors.Newf(errors.ErrSequenceOrder,
				"manifest entry for file %d: %s is not in a valid order - an entry for position %d has already been processed",
				line.Position, line.Path, highest).
				WithDetail("path", line.Path).
				WithDetail("position", line.Position)
		}
		highest = line.Position

		if seen[line.Path] && !line.ForcedDuplicate && !loaders.KindOf(line.Loader).MayRepeat() {
			return errors.Newf(errors.ErrDuplicateFile,
				"manifest entry for file %s already implicated and not marked as an explicit duplicate", line.Path).
				WithDetail("path", line.Path).
				WithDetail("position", line.Position)
		}
		if !line.ForcedDuplicate {
			seen[line.Path] = true
		}

		occurrences[line.Path]++
		entries = append(entries, manifest.NewPromotionEntry(line, occurrences[line.Path]))

		if !loaders.KindOf(line.Loader).IsBuiltIn() {
			if _, ok := p.loaders[line.Loader]; !ok {
				p.loaders[line.Loader] = loaders.FilePath(p.settings.LoaderDir, line.Loader, p.settings.LoaderExt)
			}
		}

		p.logger.Debug().
			Int("position", line.Position).
			Str("loader", line.Loader).
			Str("path", line.Path).
			Msg("Parsed manifest entry")
		return nil
	})
	if err != nil {
		return err
	}

	if file.Promotion == nil {
		return errors.New(errors.ErrMissingPromotionProp, "manifest missing mandatory PROMOTION property definitions")
	}
	for _, name := range []string{manifest.PropPromotionLabel, manifest.PropToolVersion} {
		if file.Promotion[name] == "" {
			return errors.Newf(errors.ErrMissingPromotionProp, "promotion properties: %s must be specified", name).
				WithDetail("property", name)
		}
	}

	p.entries = entries
	p.promotion = file.Promotion

	p.logger.Info().
		Int("entries", len(entries)).
		Int("loaders", len(p.loaders)).
		Str("toolVersion", file.Promotion[manifest.PropToolVersion]).
		Msg("Manifest parsed")
	return nil
}

// Entries returns the parsed entries in manifest order
func (p *Parser) Entries() []manifest.PromotionEntry {
	out := make([]manifest.PromotionEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// PromotionProperties returns a copy of the PROMOTION line's properties
func (p *Parser) PromotionProperties() map[string]string {
	return manifest.MergeProperties(p.promotion)
}

// Loaders maps each referenced user-defined loader to the relative path of
// its definition file
func (p *Parser) Loaders() map[string]string {
	out := make(map[string]string, len(p.loaders))
	for k, v := range p.loaders {
		out[k] = v
	}
	return out
}

// LoaderNames returns the user-defined loader names in sorted order
func (p *Parser) LoaderNames() []string {
	names := make([]string, 0, len(p.loaders))
	for name := range p.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
