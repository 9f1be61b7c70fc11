package builder

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/gobwas/glob"
	"github.com/spf13/afero"
)

// findInputFiles returns files whose name matches pattern, looking directly
// in the base directory and in the metadata directory.
func findInputFiles(resolver *filesystem.Resolver, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid file name pattern %s", pattern)
	}

	dirs := []string{resolver.BaseDirectory()}
	if meta := resolver.MetadataDirectory(); meta != resolver.BaseDirectory() {
		dirs = append(dirs, meta)
	}

	var found []string
	for _, dir := range dirs {
		exists, err := afero.DirExists(resolver.Fs(), dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot access %s", dir)
		}
		if !exists {
			continue
		}

		infos, err := afero.ReadDir(resolver.Fs(), dir)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", dir)
		}
		for _, info := range infos {
			if !info.IsDir() && g.Match(info.Name()) {
				found = append(found, filepath.Join(dir, info.Name()))
			}
		}
	}

	sort.Strings(found)
	return found, nil
}

func findConfigFile(resolver *filesystem.Resolver, pattern string) (string, error) {
	files, err := findInputFiles(resolver, pattern)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", errors.Newf(errors.ErrConfigFileCount,
			"exactly one %s file should exist but found %d", pattern, len(files)).
			WithDetail("files", files)
	}
	return files[0], nil
}

func findOverrideFile(resolver *filesystem.Resolver, pattern string) (string, error) {
	files, err := findInputFiles(resolver, pattern)
	if err != nil {
		return "", err
	}
	if len(files) > 1 {
		return "", errors.Newf(errors.ErrOverrideFileCount,
			"only one %s file can exist but found %d", pattern, len(files)).
			WithDetail("files", files)
	}
	if len(files) == 0 {
		return "", nil
	}
	return files[0], nil
}
