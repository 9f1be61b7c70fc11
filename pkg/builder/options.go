package builder

import (
	"time"

	"github.com/arthur-debert/promote/internal/version"
)

// Default file name patterns for builder inputs
const (
	DefaultConfigPattern   = "builder*.cfg"
	DefaultOverridePattern = "manifest-override*.mf"
)

// DatetimeFormat is the layout of the manifest_generated_datetime property
const DatetimeFormat = "2006-01-02 15:04:05"

// Versioner computes the file_version property for a file from its path and
// content hash
type Versioner func(path, hash string) string

// DefaultVersioner marks a file with the first 12 hex digits of its hash
func DefaultVersioner(_ string, hash string) string {
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return "h" + hash
}

// Options configures a Builder
type Options struct {
	// Label is written as the promotion_label property. Required.
	Label string
	// ToolVersion is written as scriptrunner_version. Defaults to the
	// running binary's version.
	ToolVersion string
	// Now supplies the generation timestamp. Defaults to time.Now.
	Now func() time.Time
	// Versioner computes file_version. Defaults to DefaultVersioner.
	Versioner Versioner
	// ConfigPattern and OverridePattern select the input files by name
	ConfigPattern   string
	OverridePattern string
}

func (o Options) withDefaults() Options {
	if o.ToolVersion == "" {
		o.ToolVersion = version.ManifestVersion()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Versioner == nil {
		o.Versioner = DefaultVersioner
	}
	if o.ConfigPattern == "" {
		o.ConfigPattern = DefaultConfigPattern
	}
	if o.OverridePattern == "" {
		o.OverridePattern = DefaultOverridePattern
	}
	return o
}
