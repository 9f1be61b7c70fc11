package rules

import (
	"os"
	"sort"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Expander matches patterns against the paths under a base directory. The
// tree is listed once, on first use.
type Expander struct {
	resolver *filesystem.Resolver
	logger   zerolog.Logger
	listing  []Match
	listed   bool
}

// NewExpander creates an expander over the resolver's base directory
func NewExpander(resolver *filesystem.Resolver) *Expander {
	return &Expander{
		resolver: resolver,
		logger:   logging.GetLogger("rules.expander"),
	}
}

// Expand returns every path under the base directory matching pattern, files
// and directories alike, in lexicographic order.
func (e *Expander) Expand(pattern string) ([]Match, error) {
	g, err := CompileGlob(pattern)
	if err != nil {
		return nil, err
	}

	listing, err := e.list()
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, m := range listing {
		if g.Match(m.Path) {
			matches = append(matches, m)
		}
	}

	e.logger.Debug().
		Str("pattern", pattern).
		Int("matches", len(matches)).
		Msg("Expanded pattern")

	return matches, nil
}

func (e *Expander) list() ([]Match, error) {
	if e.listed {
		return e.listing, nil
	}

	base := e.resolver.BaseDirectory()
	var listing []Match
	err := afero.Walk(e.resolver.Fs(), base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == base {
			return nil
		}
		rel, relErr := e.resolver.RelativePathOf(path)
		if relErr != nil {
			return relErr
		}
		listing = append(listing, Match{Path: rel, IsDirectory: info.IsDir()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list files under %s", base)
	}

	sort.Slice(listing, func(i, j int) bool { return listing[i].Path < listing[j].Path })
	e.listing = listing
	e.listed = true
	return listing, nil
}
