// Package filesystem resolves promotion paths against a base directory.
//
// All access goes through an afero.Fs so the builder and the verifier can run
// against the real disk or an in-memory tree. Paths handed out by a Resolver
// are relative to the base directory and always use forward slashes.
package filesystem
