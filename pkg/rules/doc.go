// Package rules parses builder configuration files and expands their
// wildcard patterns into candidate files.
//
// # Config File Format
//
// A builder config is a sequence of blocks, each introduced by Files:
//
//	# Core patches run first
//	Files: DatabasePatches/CorePatches/*.sql
//	Loader: Patch
//	StartOffset: 1000
//	FileOffset: 10
//
//	Files: DatabaseSource/**/*.pkb
//	Loader: DatabaseSource
//	StartOffset: 500
//	FileOffset: 1
//	Properties: {schema="core"}
//
// Loader, StartOffset and FileOffset are required; Properties is optional.
// Blank lines and lines starting with # are ignored.
//
// # Block Order
//
// Blocks are kept in file order. The builder numbers files block by block and
// a file matched by more than one block belongs to the first, so reordering
// blocks changes the manifest.
//
// # Pattern Conventions
//
// Patterns are matched against forward-slash paths relative to the base
// directory:
//
//   - `*` matches within one path segment
//   - `?` matches one character
//   - `**` matches any number of segments, including none
//   - `{a,b}` matches either alternative
package rules
