// Package builder assembles a promotion manifest from a builder config file,
// an optional manifest override file and an optional additional-properties
// file.
//
// # Inputs
//
// The config file (builder*.cfg) lists rules that select files by pattern
// and number them. The override file (manifest-override*.mf) can:
//
//   - adjust a file's loader or properties with a ~ augmentation line
//   - move a file to an explicit position with a positioned line
//   - add a file a second time with a +forced duplicate line
//   - set extra promotion properties on a PROMOTION line
//
// Additional-properties files may only contain loader-less ~ lines.
//
// # Numbering
//
// Each rule starts at the previous rule's start plus its StartOffset, and
// its files follow at FileOffset intervals in path order. Position overrides
// are merged in as the numbering passes their declared position. Two entries
// at one position fail the build.
//
// # Properties
//
// A file's properties are layered: rule defaults, then additional
// properties, then the override augmentation, then a position override's
// own properties. file_hash and file_version are always computed last.
package builder
