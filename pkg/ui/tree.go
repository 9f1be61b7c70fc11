package ui

import (
	"path"
	"strings"

	"github.com/disiqueira/gotree/v3"
)

// fileTree builds a gotree from slash-separated relative paths
type fileTree struct {
	root gotree.Tree
	dirs map[string]gotree.Tree
}

func newFileTree(rootLabel string) *fileTree {
	return &fileTree{root: gotree.New(rootLabel), dirs: make(map[string]gotree.Tree)}
}

func (t *fileTree) dir(dirPath string) gotree.Tree {
	if dirPath == "." || dirPath == "" {
		return t.root
	}
	d, ok := t.dirs[dirPath]
	if !ok {
		d = t.dir(path.Dir(dirPath)).Add(path.Base(dirPath))
		t.dirs[dirPath] = d
	}
	return d
}

func (t *fileTree) insert(filePath, label string) {
	t.dir(path.Dir(filePath)).Add(label)
}

// RenderTree draws paths as a directory tree under rootLabel. Paths are
// inserted in the order given.
func RenderTree(rootLabel string, paths []string) string {
	return RenderLabelledTree(rootLabel, paths, nil)
}

// RenderLabelledTree is RenderTree with a custom leaf label per path
func RenderLabelledTree(rootLabel string, paths []string, label func(p string) string) string {
	t := newFileTree(rootLabel)
	for _, p := range paths {
		leaf := path.Base(p)
		if label != nil {
			leaf = label(p)
		}
		t.insert(p, leaf)
	}
	return strings.TrimRight(t.root.Print(), "\n") + "\n"
}
