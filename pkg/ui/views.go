package ui

import (
	"sort"

	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/workflow"
)

// EntryView is one manifest entry
type EntryView struct {
	Position        int               `json:"position" yaml:"position"`
	Loader          string            `json:"loader" yaml:"loader"`
	Path            string            `json:"path" yaml:"path"`
	ForcedDuplicate bool              `json:"forced_duplicate,omitempty" yaml:"forced_duplicate,omitempty"`
	FileIndex       int               `json:"file_index,omitempty" yaml:"file_index,omitempty"`
	Properties      map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// BuildView summarises a build
type BuildView struct {
	ManifestPath string            `json:"manifest_path" yaml:"manifest_path"`
	DryRun       bool              `json:"dry_run" yaml:"dry_run"`
	Promotion    map[string]string `json:"promotion" yaml:"promotion"`
	Entries      []EntryView       `json:"entries" yaml:"entries"`
	Ignored      []string          `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Unimplicated []string          `json:"unimplicated,omitempty" yaml:"unimplicated,omitempty"`
	Loaders      []string          `json:"loaders,omitempty" yaml:"loaders,omitempty"`
}

// VerifyView summarises a verification
type VerifyView struct {
	ManifestPath  string            `json:"manifest_path" yaml:"manifest_path"`
	Promotion     map[string]string `json:"promotion" yaml:"promotion"`
	Entries       int               `json:"entries" yaml:"entries"`
	HashesChecked int               `json:"hashes_checked" yaml:"hashes_checked"`
	Loaders       []string          `json:"loaders,omitempty" yaml:"loaders,omitempty"`
	Unimplicated  []string          `json:"unimplicated,omitempty" yaml:"unimplicated,omitempty"`
}

// ListView lists a manifest's entries, optionally as a file tree
type ListView struct {
	ManifestPath string            `json:"manifest_path" yaml:"manifest_path"`
	Promotion    map[string]string `json:"promotion" yaml:"promotion"`
	Entries      []EntryView       `json:"entries" yaml:"entries"`
	AsTree       bool              `json:"-" yaml:"-"`
}

// NewBuildView converts a build result
func NewBuildView(res *workflow.BuildResult, dryRun bool) *BuildView {
	view := &BuildView{
		ManifestPath: res.ManifestPath,
		DryRun:       dryRun,
		Promotion:    res.Result.Promotion,
		Ignored:      res.Result.Ignored,
		Unimplicated: res.Unimplicated,
		Loaders:      res.Loaders,
	}
	for _, e := range res.Result.Entries {
		view.Entries = append(view.Entries, entryView(e, 0))
	}
	return view
}

// NewVerifyView converts a verification result
func NewVerifyView(res *workflow.VerifyResult) *VerifyView {
	return &VerifyView{
		ManifestPath:  res.ManifestPath,
		Promotion:     res.Promotion,
		Entries:       res.Report.Entries,
		HashesChecked: res.Report.HashesChecked,
		Loaders:       res.Report.Loaders,
		Unimplicated:  res.Report.Unimplicated,
	}
}

// NewListView converts parsed promotion entries
func NewListView(manifestPath string, promotion map[string]string, entries []manifest.PromotionEntry, asTree bool) *ListView {
	view := &ListView{ManifestPath: manifestPath, Promotion: promotion, AsTree: asTree}
	for _, e := range entries {
		view.Entries = append(view.Entries, entryView(e, e.FileIndex()))
	}
	return view
}

func entryView(e manifest.Entry, fileIndex int) EntryView {
	return EntryView{
		Position:        e.SequencePosition(),
		Loader:          e.LoaderName(),
		Path:            e.FilePath(),
		ForcedDuplicate: e.IsForcedDuplicate(),
		FileIndex:       fileIndex,
		Properties:      e.Properties(),
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func entryPaths(entries []EntryView) []string {
	seen := map[string]bool{}
	var paths []string
	for _, e := range entries {
		if !seen[e.Path] {
			seen[e.Path] = true
			paths = append(paths, e.Path)
		}
	}
	sort.Strings(paths)
	return paths
}
