// Test Type: Integration Test
// Description: Tests for the promote commands run against a temporary source tree

package promote

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdRules = `
Files: Patches/*.sql
Loader: Patch
StartOffset: 100
FileOffset: 10
`

func sourceTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"ScriptRunner/builder.cfg": cmdRules,
		"Patches/001.sql":          "create table t (id int);",
		"Patches/002.sql":          "alter table t add name text;",
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--base-dir", root}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand_WritesManifest(t *testing.T) {
	root := sourceTree(t)

	out, err := run(t, root, "--format", "json", "build", "--label", "REL-1")
	require.NoError(t, err)

	var view struct {
		ManifestPath string            `json:"manifest_path"`
		Promotion    map[string]string `json:"promotion"`
		Entries      []struct {
			Position int    `json:"position"`
			Loader   string `json:"loader"`
			Path     string `json:"path"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))

	assert.Equal(t, "ScriptRunner/manifest.mf", view.ManifestPath)
	assert.Equal(t, "REL-1", view.Promotion["promotion_label"])
	require.Len(t, view.Entries, 2)
	assert.Equal(t, 110, view.Entries[0].Position)
	assert.Equal(t, "Patches/001.sql", view.Entries[0].Path)
	assert.Equal(t, 120, view.Entries[1].Position)

	assert.FileExists(t, filepath.Join(root, "ScriptRunner", "manifest.mf"))
}

func TestBuildCommand_DryRunWritesNothing(t *testing.T) {
	root := sourceTree(t)

	out, err := run(t, root, "--format", "text", "--dry-run", "build", "--label", "REL-1")
	require.NoError(t, err)

	assert.Contains(t, out, "dry run")
	assert.NoFileExists(t, filepath.Join(root, "ScriptRunner", "manifest.mf"))
}

func TestBuildCommand_RequiresLabel(t *testing.T) {
	root := sourceTree(t)

	_, err := run(t, root, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label")
}

func TestVerifyCommand_AfterBuild(t *testing.T) {
	root := sourceTree(t)
	_, err := run(t, root, "--format", "json", "build", "--label", "REL-1")
	require.NoError(t, err)

	out, err := run(t, root, "--format", "text", "verify", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest verified:")
	assert.Contains(t, out, "Hashes checked: 2")
}

func TestVerifyCommand_ReportsHashMismatchAsJSON(t *testing.T) {
	root := sourceTree(t)
	_, err := run(t, root, "--format", "json", "build", "--label", "REL-1")
	require.NoError(t, err)

	edited := filepath.Join(root, "Patches", "002.sql")
	require.NoError(t, os.WriteFile(edited, []byte("drop table t;"), 0644))

	out, err := run(t, root, "--format", "json", "verify")
	require.Error(t, err)
	assert.True(t, IsReported(err))

	var view struct {
		Code     string `json:"code"`
		Category string `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "HASH_MISMATCH", view.Code)
	assert.Equal(t, "validation", view.Category)

	// Text output leaves printing to the caller
	_, err = run(t, root, "--format", "text", "verify")
	require.Error(t, err)
	assert.False(t, IsReported(err))

	_, err = run(t, root, "--format", "text", "verify", "--skip-hash-check")
	assert.NoError(t, err)
}

func TestListCommand(t *testing.T) {
	root := sourceTree(t)
	_, err := run(t, root, "--format", "json", "build", "--label", "REL-1")
	require.NoError(t, err)

	out, err := run(t, root, "--format", "text", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Patches/001.sql")
	assert.Contains(t, out, "Patch")

	out, err = run(t, root, "--format", "text", "list", "--tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Patches")
	assert.Contains(t, out, "002.sql")
}

func TestConfigCommand(t *testing.T) {
	root := sourceTree(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".promote.toml"),
		[]byte("[verify]\nstrict = true\n"), 0644))

	out, err := run(t, root, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "[verify]")
	assert.Contains(t, out, "strict = true")

	out, err = run(t, root, "config", "--init")
	require.NoError(t, err)
	assert.Contains(t, out, "# dir = ")
}

func TestUnknownFormat(t *testing.T) {
	root := sourceTree(t)

	_, err := run(t, root, "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "promote version")
}
