package builder

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/promote/pkg/manifest"
)

// Result describes a built manifest
type Result struct {
	// Entries are the emitted entries in position order
	Entries   []manifest.BuilderEntry
	Promotion map[string]string
	// Ignored lists paths matched with the Ignore loader
	Ignored      []string
	ConfigFile   string
	OverrideFile string
}

// AllImplicatedFilePaths returns the distinct paths in the manifest in
// lexicographic order, optionally including ignored paths
func (r *Result) AllImplicatedFilePaths(includeIgnored bool) []string {
	set := map[string]bool{}
	for _, e := range r.Entries {
		set[e.FilePath()] = true
	}
	if includeIgnored {
		for _, p := range r.Ignored {
			set[p] = true
		}
	}

	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func fmtRuleComment(pattern string, start int) string {
	return fmt.Sprintf("\n# Files for: %s (start at %d)\n", pattern, start)
}
