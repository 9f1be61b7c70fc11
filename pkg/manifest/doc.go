// Package manifest implements the promotion manifest text format.
//
// A manifest is a sequence of lines. Each entry line names a file to promote:
//
//	<position>: [<loader>] [+]<path> [{name="value", ...}]
//	~ [<loader>] <path> [{name="value", ...}]
//
// The first form places a file at a sequence position, the second (an
// augmentation) adjusts the loader or properties of a file positioned
// elsewhere. A single PROMOTION {...} line carries promotion-wide properties.
// Blank lines and lines starting with # are ignored.
//
// The same grammar is used for manifests, manifest override files and
// additional-properties files. Mode selects which line shapes are legal.
package manifest
