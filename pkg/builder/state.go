package builder

import (
	"fmt"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/rules"
)

// state holds everything one BuildManifest call accumulates
type state struct {
	// claimed paths will not get a default entry from a later rule
	claimed map[string]bool
	// pathRule maps each path to the first rule whose pattern selected it
	pathRule map[string]*rules.Rule

	augmentations map[string]manifest.BuilderEntry
	// overrides are pending position overrides in ascending position
	overrides  []manifest.BuilderEntry
	additional map[string]manifest.BuilderEntry

	rules []rules.Rule
	// candidates holds each rule's unpositioned default entries in path order
	candidates [][]manifest.BuilderEntry

	final    map[int]manifest.BuilderEntry
	occupied map[int]string
	comments map[int][]string
	ignored  map[string]bool

	overridePromotion map[string]string
	hashes            map[string]string
}

func newState() *state {
	return &state{
		claimed:       map[string]bool{},
		pathRule:      map[string]*rules.Rule{},
		augmentations: map[string]manifest.BuilderEntry{},
		additional:    map[string]manifest.BuilderEntry{},
		final:         map[int]manifest.BuilderEntry{},
		occupied:      map[int]string{},
		comments:      map[int][]string{},
		ignored:       map[string]bool{},
		hashes:        map[string]string{},
	}
}

// place records entry at its position. Ignored entries keep the position
// reserved but are emitted as a comment only.
func (s *state) place(entry manifest.BuilderEntry) error {
	pos := entry.SequencePosition()
	if other, taken := s.occupied[pos]; taken {
		return errors.Newf(errors.ErrPositionCollision,
			"cannot add %s at position %d - %s is already at this position", entry.FilePath(), pos, other).
			WithDetail("path", entry.FilePath()).
			WithDetail("other_path", other).
			WithDetail("position", pos)
	}
	s.occupied[pos] = entry.FilePath()

	if entry.IsIgnored() {
		s.comment(pos, fmt.Sprintf("# Ignored: %s (position %d)", entry.FilePath(), pos))
		s.ignored[entry.FilePath()] = true
		return nil
	}
	s.final[pos] = entry
	return nil
}

func (s *state) comment(pos int, text string) {
	s.comments[pos] = append(s.comments[pos], text)
}
