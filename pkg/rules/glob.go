package rules

import (
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/gobwas/glob"
)

// CompileGlob compiles a path pattern using / as the separator. A **/
// segment may also match nothing, so a/**/*.sql matches a/x.sql.
func CompileGlob(pattern string) (glob.Glob, error) {
	normalized := filesystem.NormalizePath(pattern)
	g, err := glob.Compile(expandDoubleStar(normalized), '/')
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGrammarConfig, "invalid file pattern %s", pattern).
			WithDetail("pattern", pattern)
	}
	return g, nil
}

// expandDoubleStar rewrites each **/ segment into {**/,} so the segment is
// optional.
func expandDoubleStar(pattern string) string {
	segments := strings.Split(pattern, "/")
	var b strings.Builder
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg == "**" && !last {
			b.WriteString("{**/,}")
			continue
		}
		b.WriteString(seg)
		if !last {
			b.WriteString("/")
		}
	}
	return b.String()
}
