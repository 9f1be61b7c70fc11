// Package loaders enumerates the reserved loader names.
//
// A loader name in a manifest entry decides how the entry's file is promoted.
// A few names are built into the tool; every other name refers to a
// user-defined loader whose definition lives in the loader directory.
package loaders

import "path"

// Reserved loader names as they appear in manifests and builder config files
const (
	DatabaseSource   = "DatabaseSource"
	ScriptRunnerUtil = "ScriptRunnerUtil"
	Patch            = "Patch"
	// Ignore is only meaningful to the builder: matched files are accounted
	// for but never emitted.
	Ignore = "Ignore"
)

// Kind classifies a loader name
type Kind int

const (
	KindUserDefined Kind = iota
	KindDatabaseSource
	KindUtility
	KindPatch
	KindIgnore
)

var reserved = map[string]Kind{
	DatabaseSource:   KindDatabaseSource,
	ScriptRunnerUtil: KindUtility,
	Patch:            KindPatch,
	Ignore:           KindIgnore,
}

// KindOf returns the kind for a loader name. Matching is exact and case
// sensitive; unknown names are user-defined.
func KindOf(name string) Kind {
	if k, ok := reserved[name]; ok {
		return k
	}
	return KindUserDefined
}

// String returns the kind's name
func (k Kind) String() string {
	switch k {
	case KindDatabaseSource:
		return "database-source"
	case KindUtility:
		return "utility"
	case KindPatch:
		return "patch"
	case KindIgnore:
		return "ignore"
	default:
		return "user-defined"
	}
}

// IsBuiltIn reports whether the loader ships with the tool and so has no
// backing file in the loader directory.
func (k Kind) IsBuiltIn() bool {
	return k == KindDatabaseSource || k == KindUtility || k == KindPatch
}

// MayRepeat reports whether files using this loader may be implicated more
// than once without a forced-duplicate marker.
func (k Kind) MayRepeat() bool {
	return k == KindUtility
}

// IsIgnore reports whether name is the builder-only ignore loader
func IsIgnore(name string) bool {
	return KindOf(name) == KindIgnore
}

// IsUtility reports whether name is the utility loader
func IsUtility(name string) bool {
	return KindOf(name) == KindUtility
}

// FilePath returns the relative path of a user-defined loader's definition
func FilePath(loaderDir, name, ext string) string {
	return path.Join(loaderDir, name+ext)
}
