package filesystem

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// NewOS returns a Resolver over the operating system filesystem. Relative base
// directories are made absolute against the working directory.
func NewOS(baseDir, metadataDir string) (*Resolver, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}
	return NewResolver(afero.NewOsFs(), abs, metadataDir)
}
