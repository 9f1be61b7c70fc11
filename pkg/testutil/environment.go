// pkg/testutil/environment.go
// DEPENDENCIES: afero, filesystem
// PURPOSE: Build isolated in-memory source trees for builder and verifier tests

package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/internal/hashutil"
	"github.com/spf13/afero"
)

// BaseDir is the root of every in-memory tree
const BaseDir = "/promo"

// MetadataDir is the metadata directory name used by test trees
const MetadataDir = "ScriptRunner"

// Tree is an in-memory source tree
type Tree struct {
	Fs      afero.Fs
	BaseDir string

	t *testing.T
}

// NewTree creates a MemMapFs holding files, keyed by forward-slash paths
// relative to BaseDir. Keys ending in "/" create empty directories.
func NewTree(t *testing.T, files map[string]string) *Tree {
	t.Helper()

	tree := &Tree{Fs: afero.NewMemMapFs(), BaseDir: BaseDir, t: t}
	if err := tree.Fs.MkdirAll(BaseDir, 0755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	for rel, content := range files {
		if strings.HasSuffix(rel, "/") {
			tree.Mkdir(rel)
			continue
		}
		tree.WriteFile(rel, content)
	}
	return tree
}

// Path returns the absolute path of rel inside the tree
func (tr *Tree) Path(rel string) string {
	return filepath.Join(tr.BaseDir, filepath.FromSlash(rel))
}

// WriteFile creates or replaces a file, creating parent directories
func (tr *Tree) WriteFile(rel, content string) {
	tr.t.Helper()

	full := tr.Path(rel)
	if err := tr.Fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
		tr.t.Fatalf("failed to create dir for %s: %v", rel, err)
	}
	if err := afero.WriteFile(tr.Fs, full, []byte(content), 0644); err != nil {
		tr.t.Fatalf("failed to write %s: %v", rel, err)
	}
}

// Mkdir creates an empty directory
func (tr *Tree) Mkdir(rel string) {
	tr.t.Helper()

	if err := tr.Fs.MkdirAll(tr.Path(rel), 0755); err != nil {
		tr.t.Fatalf("failed to create dir %s: %v", rel, err)
	}
}

// ReadFile returns the content of a file in the tree
func (tr *Tree) ReadFile(rel string) string {
	tr.t.Helper()

	data, err := afero.ReadFile(tr.Fs, tr.Path(rel))
	if err != nil {
		tr.t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Hash returns the MD5 hex digest of a file in the tree
func (tr *Tree) Hash(rel string) string {
	tr.t.Helper()

	sum, err := hashutil.FileMD5(tr.Fs, tr.Path(rel))
	if err != nil {
		tr.t.Fatalf("failed to hash %s: %v", rel, err)
	}
	return sum
}

// Resolver returns a filesystem.Resolver rooted at the tree's base directory
func (tr *Tree) Resolver() *filesystem.Resolver {
	tr.t.Helper()

	r, err := filesystem.NewResolver(tr.Fs, tr.BaseDir, MetadataDir)
	if err != nil {
		tr.t.Fatalf("failed to create resolver: %v", err)
	}
	return r
}
