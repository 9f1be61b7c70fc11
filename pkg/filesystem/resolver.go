package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/spf13/afero"
)

// Resolver maps relative promotion paths onto files under a base directory
type Resolver struct {
	fs          afero.Fs
	base        string
	metadataDir string
}

// NewResolver creates a Resolver rooted at baseDir, which must be an existing
// directory on fs. metadataDir names the tool's own subdirectory, which is
// left out of AllFilePaths.
func NewResolver(fs afero.Fs, baseDir, metadataDir string) (*Resolver, error) {
	base := filepath.Clean(baseDir)
	info, err := fs.Stat(base)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "base directory %s is not accessible", base).
			WithDetail("path", base)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "base directory %s is not a directory", base).
			WithDetail("path", base)
	}
	return &Resolver{fs: fs, base: base, metadataDir: metadataDir}, nil
}

// Fs returns the underlying filesystem
func (r *Resolver) Fs() afero.Fs {
	return r.fs
}

// BaseDirectory returns the cleaned base directory
func (r *Resolver) BaseDirectory() string {
	return r.base
}

// MetadataDirectory returns the absolute path of the metadata directory
func (r *Resolver) MetadataDirectory() string {
	return filepath.Join(r.base, r.metadataDir)
}

// MetadataDirName returns the metadata directory name as configured
func (r *Resolver) MetadataDirName() string {
	return r.metadataDir
}

// Path joins a relative promotion path onto the base directory without
// checking that it exists.
func (r *Resolver) Path(relativePath string) string {
	return filepath.Join(r.base, filepath.FromSlash(NormalizePath(relativePath)))
}

// ResolveFile returns the absolute path of a regular file under the base
// directory, or an ErrFileMissing error.
func (r *Resolver) ResolveFile(relativePath string) (string, error) {
	full := r.Path(relativePath)
	info, err := r.fs.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrFileMissing, "file %s does not exist", relativePath).
				WithDetail("path", relativePath)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot access %s", relativePath).
			WithDetail("path", relativePath)
	}
	if info.IsDir() {
		return "", errors.Newf(errors.ErrFileMissing, "%s is a directory, not a file", relativePath).
			WithDetail("path", relativePath)
	}
	return full, nil
}

// IsFile reports whether relativePath names an existing regular file
func (r *Resolver) IsFile(relativePath string) bool {
	_, err := r.ResolveFile(relativePath)
	return err == nil
}

// RelativePathOf returns the normalized path of an absolute file path relative
// to the base directory.
func (r *Resolver) RelativePathOf(file string) (string, error) {
	rel, err := filepath.Rel(r.base, filepath.Clean(file))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "%s is not under %s", file, r.base)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput, "%s is not under %s", file, r.base).
			WithDetail("path", file)
	}
	return NormalizePath(filepath.ToSlash(rel)), nil
}

// AllFilePaths lists every regular file under the base directory in
// lexicographic order. Directories named like the metadata directory are
// skipped at any depth.
func (r *Resolver) AllFilePaths() ([]string, error) {
	var paths []string
	err := afero.Walk(r.fs, r.base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != r.base && r.metadataDir != "" && info.Name() == r.metadataDir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := r.RelativePathOf(path)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list files under %s", r.base)
	}
	sort.Strings(paths)
	return paths, nil
}

// NormalizePath trims whitespace, strips a single leading separator and turns
// backslashes into forward slashes.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		p = p[1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
}
