// Package testutil provides utilities for testing promote components.
//
// Key components:
//   - Tree: an in-memory source tree (afero MemMapFs) rooted at BaseDir
//   - Tree.Resolver: a filesystem.Resolver over that tree
//
// Usage guidelines:
//   - Tests build their file trees inline with NewTree, never from fixtures on disk
//   - Each test gets its own filesystem, nothing is shared between tests
package testutil
