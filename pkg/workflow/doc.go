// Package workflow runs the end-to-end build and verify operations the CLI
// exposes, wiring settings, the builder and the promotion parser together.
package workflow
