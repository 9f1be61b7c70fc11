package manifest

import (
	"sync"

	"github.com/arthur-debert/promote/pkg/loaders"
)

// Entry is the read-only view shared by builder and promotion entries
type Entry interface {
	FilePath() string
	LoaderName() string
	Properties() map[string]string
	Property(name string) (string, bool)
	IsAugmentation() bool
	IsForcedDuplicate() bool
	SequencePosition() int
}

type entry struct {
	path         string
	loader       string
	props        map[string]string
	augmentation bool
	forced       bool
	position     int
}

func newEntry(path, loader string, props map[string]string, augmentation, forced bool, position int) entry {
	return entry{
		path:         path,
		loader:       loader,
		props:        copyProperties(props),
		augmentation: augmentation,
		forced:       forced,
		position:     position,
	}
}

// FilePath returns the normalized relative path
func (e entry) FilePath() string { return e.path }

// LoaderName returns the loader name, empty for augmentations that inherit one
func (e entry) LoaderName() string { return e.loader }

// Properties returns a copy of the property map
func (e entry) Properties() map[string]string { return copyProperties(e.props) }

// Property returns a single property value
func (e entry) Property(name string) (string, bool) {
	v, ok := e.props[name]
	return v, ok
}

// IsAugmentation reports whether the entry came from a ~ line
func (e entry) IsAugmentation() bool { return e.augmentation }

// IsForcedDuplicate reports whether the entry carries the + marker
func (e entry) IsForcedDuplicate() bool { return e.forced }

// SequencePosition returns the position, or Unpositioned
func (e entry) SequencePosition() int { return e.position }

// BuilderEntry is an entry produced while building a manifest. Its position is
// fixed at construction; moving an entry means deriving a new one.
type BuilderEntry struct {
	entry
}

// NewBuilderEntry creates a builder entry
func NewBuilderEntry(path, loader string, props map[string]string, forced bool, position int) BuilderEntry {
	return BuilderEntry{newEntry(path, loader, props, false, forced, position)}
}

// BuilderEntryFromLine converts a parsed line into a builder entry
func BuilderEntryFromLine(l Line) BuilderEntry {
	return BuilderEntry{newEntry(l.Path, l.Loader, l.Properties, l.Augmentation, l.ForcedDuplicate, l.Position)}
}

// IsIgnored reports whether the entry uses the builder-only Ignore loader
func (e BuilderEntry) IsIgnored() bool {
	return loaders.IsIgnore(e.loader)
}

// At returns a copy of the entry placed at position
func (e BuilderEntry) At(position int) BuilderEntry {
	c := e
	c.props = copyProperties(e.props)
	c.position = position
	return c
}

// WithProperties returns a copy of the entry carrying props instead
func (e BuilderEntry) WithProperties(props map[string]string) BuilderEntry {
	c := e
	c.props = copyProperties(props)
	return c
}

// PromotionEntry is an entry read from a manifest for execution
type PromotionEntry struct {
	entry
	fileIndex int
	logID     string
	hash      *hashCache
}

type hashCache struct {
	once sync.Once
	sum  string
	err  error
}

// NewPromotionEntry creates a promotion entry
func NewPromotionEntry(l Line, fileIndex int) PromotionEntry {
	return PromotionEntry{
		entry:     newEntry(l.Path, l.Loader, l.Properties, false, l.ForcedDuplicate, l.Position),
		fileIndex: fileIndex,
		hash:      &hashCache{},
	}
}

// FileIndex is the 1-based occurrence count of this path in the manifest
func (e PromotionEntry) FileIndex() int { return e.fileIndex }

// LogID is the identifier the execution engine logs this entry under
func (e PromotionEntry) LogID() string { return e.logID }

// WithLogID returns a copy of the entry carrying id
func (e PromotionEntry) WithLogID(id string) PromotionEntry {
	c := e
	c.logID = id
	return c
}

// FileHash computes the content hash with compute on first use and caches it
func (e PromotionEntry) FileHash(compute func(path string) (string, error)) (string, error) {
	if e.hash == nil {
		return compute(e.path)
	}
	e.hash.once.Do(func() {
		e.hash.sum, e.hash.err = compute(e.path)
	})
	return e.hash.sum, e.hash.err
}
