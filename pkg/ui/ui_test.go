// Test Type: Unit Test
// Description: Tests for result rendering in every output format

package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleList(asTree bool) *ui.ListView {
	return &ui.ListView{
		ManifestPath: "ScriptRunner/manifest.mf",
		Promotion: map[string]string{
			"promotion_label":      "REL-1",
			"scriptrunner_version": "1.0.0",
			"ticket":               "T-1",
		},
		Entries: []ui.EntryView{
			{Position: 1010, Loader: "Patch", Path: "Patches/a.sql", FileIndex: 1},
			{Position: 2001, Loader: "DatabaseSource", Path: "Source/pkg/x.pkb", FileIndex: 1},
			{Position: 3000, Loader: "Patch", Path: "Patches/a.sql", ForcedDuplicate: true, FileIndex: 2},
		},
		AsTree: asTree,
	}
}

func TestNewRenderer(t *testing.T) {
	for _, f := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON, ui.FormatYAML} {
		t.Run(f.String(), func(t *testing.T) {
			r, err := ui.NewRenderer(f, &bytes.Buffer{})
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}

	_, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTextRenderer_List(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList(false)))
	out := buf.String()

	assert.Contains(t, out, "ScriptRunner/manifest.mf")
	assert.Contains(t, out, "promotion_label: REL-1")
	assert.NotContains(t, out, "ticket")
	assert.Contains(t, out, "  1010  Patch           Patches/a.sql")
	assert.Contains(t, out, "  3000  Patch          +Patches/a.sql")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextRenderer_ListTree(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList(true)))
	out := buf.String()

	assert.Contains(t, out, "Patches")
	assert.Contains(t, out, "a.sql (x2)")
	assert.Contains(t, out, "pkg")
	assert.Contains(t, out, "x.pkb")
}

func TestTextRenderer_BuildAndVerify(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&ui.BuildView{
		ManifestPath: "ScriptRunner/manifest.mf",
		Entries:      []ui.EntryView{{Position: 1, Loader: "Patch", Path: "a.sql"}},
		Unimplicated: []string{"Docs/readme.md"},
		Loaders:      []string{"ViewLoader"},
	}))
	out := buf.String()
	assert.Contains(t, out, "Manifest written: ScriptRunner/manifest.mf")
	assert.Contains(t, out, "Entries: 1")
	assert.Contains(t, out, "Loaders: ViewLoader")
	assert.Contains(t, out, "1 file(s) not implicated by any rule")
	assert.Contains(t, out, "readme.md")

	buf.Reset()
	require.NoError(t, r.RenderResult(&ui.VerifyView{ManifestPath: "m.mf", Entries: 3, HashesChecked: 2}))
	assert.Contains(t, buf.String(), "Manifest verified: m.mf")
	assert.Contains(t, buf.String(), "Hashes checked: 2")
}

func TestTextRenderer_Error(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrHashMismatch, "bad hash")))
	assert.Equal(t, "Error: [HASH_MISMATCH] bad hash (validation)\n", buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(sampleList(false)))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "ScriptRunner/manifest.mf", decoded["manifest_path"])
	assert.Len(t, decoded["entries"], 3)

	buf.Reset()
	require.NoError(t, r.RenderError(errors.New(errors.ErrPositionCollision, "collision").WithDetail("position", 10)))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "POSITION_COLLISION", decoded["code"])
	assert.Equal(t, "structural", decoded["category"])
}

func TestYAMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatYAML, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&ui.VerifyView{ManifestPath: "m.mf", Entries: 2, HashesChecked: 2}))
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "m.mf", decoded["manifest_path"])
	assert.Equal(t, 2, decoded["hashes_checked"])

	buf.Reset()
	require.NoError(t, r.RenderMessage("hello"))
	assert.Equal(t, "message: hello\n", buf.String())
}

func TestRenderTree(t *testing.T) {
	out := ui.RenderTree(".", []string{"a/b/c.sql", "a/d.sql", "top.sql"})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, ".", lines[0])
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "b")
	assert.Contains(t, out, "c.sql")
	assert.Contains(t, out, "d.sql")
	assert.Contains(t, out, "top.sql")
	assert.Len(t, lines, 6)
}
