// Package promotion reads a built manifest back for execution.
//
// Parsing is strict: entries must appear in strictly increasing position
// order, a path may only be implicated once unless the entry carries the
// forced-duplicate marker or uses the utility loader, and the PROMOTION line
// with its label and tool version is mandatory.
//
// Verification is a separate step against a source tree. It checks that every
// user-defined loader and every implicated file exists, compares file hashes
// with the recorded file_hash properties, and reports files present in the
// tree that the manifest does not implicate.
package promotion
