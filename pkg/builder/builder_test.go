// Test Type: Unit Test
// Description: Tests for manifest construction over in-memory trees

package builder_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/promote/pkg/builder"
	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/promotion"
	"github.com/arthur-debert/promote/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRuleConfig = `
Files: Patches/*.sql
Loader: Patch
StartOffset: 1000
FileOffset: 10

Files: Source/*.pkb
Loader: DatabaseSource
StartOffset: 500
FileOffset: 1
`

var fixedNow = func() time.Time {
	return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
}

func newBuilder(t *testing.T, tree *testutil.Tree) *builder.Builder {
	t.Helper()
	b, err := builder.New(tree.Resolver(), builder.Options{
		Label:       "REL-1",
		ToolVersion: "3.1.0",
		Now:         fixedNow,
	})
	require.NoError(t, err)
	return b
}

func build(t *testing.T, tree *testutil.Tree, additional string) (*builder.Result, string, error) {
	t.Helper()
	var out bytes.Buffer
	res, err := newBuilder(t, tree).BuildManifest(additional, &out)
	return res, out.String(), err
}

func positions(res *builder.Result) map[string]int {
	out := map[string]int{}
	for _, e := range res.Entries {
		out[e.FilePath()] = e.SequencePosition()
	}
	return out
}

func TestNew_RequiresLabel(t *testing.T) {
	tree := testutil.NewTree(t, nil)
	_, err := builder.New(tree.Resolver(), builder.Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestBuildManifest_PositionArithmetic(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": twoRuleConfig,
		"Patches/a.sql":            "a",
		"Patches/b.sql":            "b",
		"Source/x.pkb":             "x",
		"Source/y.pkb":             "y",
		"Source/z.pkb":             "z",
	})

	res, out, err := build(t, tree, "")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"Patches/a.sql": 1010,
		"Patches/b.sql": 1020,
		"Source/x.pkb":  1501,
		"Source/y.pkb":  1502,
		"Source/z.pkb":  1503,
	}, positions(res))

	assert.Equal(t, "REL-1", res.Promotion[manifest.PropPromotionLabel])
	assert.Equal(t, "3.1.0", res.Promotion[manifest.PropToolVersion])
	assert.Equal(t, "2026-03-01 12:30:00", res.Promotion[manifest.PropGeneratedDatetime])
	assert.Equal(t, "/promo/ScriptRunner/builder.cfg", res.ConfigFile)
	assert.Empty(t, res.OverrideFile)

	assert.Contains(t, out, "\n# Files for: Patches/*.sql (start at 1000)\n")
	assert.Contains(t, out, "\n# Files for: Source/*.pkb (start at 1500)\n")
	assert.True(t, strings.HasPrefix(out, "PROMOTION {"))

	hash := tree.Hash("Patches/a.sql")
	e := res.Entries[0]
	assert.Equal(t, "Patch", e.LoaderName())
	assert.Equal(t, map[string]string{
		manifest.PropFileHash:    hash,
		manifest.PropFileVersion: "h" + hash[:12],
	}, e.Properties())
}

func TestBuildManifest_ConfigInBaseDirectory(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"builder-main.cfg": "Files: *.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
		"one.sql":          "1",
	})

	res, _, err := build(t, tree, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"one.sql": 1}, positions(res))
}

func TestBuildManifest_CascadePrecedence(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": "Files: Patches/*.sql\nLoader: Patch\nStartOffset: 100\nFileOffset: 10\nProperties: {a=\"1\"}\n",
		"ScriptRunner/manifest-override.mf": `
~ Patches/f.sql {a="3", c="1"}
50: Patch Patches/f.sql {a="4"}
`,
		"extra.mf":      `~ Patches/f.sql {a="2", b="1"}`,
		"Patches/f.sql": "content",
		"Patches/g.sql": "other",
	})

	res, _, err := build(t, tree, "extra.mf")
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	f := res.Entries[0]
	assert.Equal(t, 50, f.SequencePosition())
	assert.Equal(t, "Patches/f.sql", f.FilePath())

	hash := tree.Hash("Patches/f.sql")
	assert.Equal(t, map[string]string{
		"a":                      "4",
		"b":                      "1",
		"c":                      "1",
		manifest.PropFileHash:    hash,
		manifest.PropFileVersion: "h" + hash[:12],
	}, f.Properties())

	g := res.Entries[1]
	assert.Equal(t, "Patches/g.sql", g.FilePath())
	assert.Equal(t, 110, g.SequencePosition())
	v, _ := g.Property("a")
	assert.Equal(t, "1", v)
}

func TestBuildManifest_AugmentationChangesLoader(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg":          "Files: *.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
		"ScriptRunner/manifest-override.mf": "~ MyLoader b.sql {owner=\"app\"}\n",
		"a.sql":                             "a",
		"b.sql":                             "b",
	})

	res, _, err := build(t, tree, "")
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Patch", res.Entries[0].LoaderName())
	assert.Equal(t, "MyLoader", res.Entries[1].LoaderName())
	assert.Equal(t, 2, res.Entries[1].SequencePosition())
	owner, _ := res.Entries[1].Property("owner")
	assert.Equal(t, "app", owner)
}

func TestBuildManifest_FirstRuleWins(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": `
Files: Patches/first.sql
Loader: Patch
StartOffset: 10
FileOffset: 1

Files: Patches/*.sql
Loader: DatabaseSource
StartOffset: 10
FileOffset: 1
`,
		"Patches/first.sql":  "1",
		"Patches/second.sql": "2",
	})

	res, _, err := build(t, tree, "")
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "Patches/first.sql", res.Entries[0].FilePath())
	assert.Equal(t, "Patch", res.Entries[0].LoaderName())
	assert.Equal(t, 11, res.Entries[0].SequencePosition())
	assert.Equal(t, "Patches/second.sql", res.Entries[1].FilePath())
	assert.Equal(t, 21, res.Entries[1].SequencePosition())
}

func TestBuildManifest_Collision(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg":          "Files: Patches/*.sql\nLoader: Patch\nStartOffset: 1000\nFileOffset: 10\n",
		"ScriptRunner/manifest-override.mf": "1010: Patch Patches/b.sql\n",
		"Patches/a.sql":                     "a",
		"Patches/b.sql":                     "b",
	})

	var out bytes.Buffer
	_, err := newBuilder(t, tree).BuildManifest("", &out)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPositionCollision))
	assert.Contains(t, err.Error(), "Patches/a.sql")
	assert.Contains(t, err.Error(), "Patches/b.sql")
	assert.Equal(t, 0, out.Len(), "no partial manifest on failure")
}

func TestBuildManifest_OverrideDuplicatePosition(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg":          "Files: *.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
		"ScriptRunner/manifest-override.mf": "500: Patch a.sql\n500: Patch b.sql\n",
		"a.sql":                             "a",
		"b.sql":                             "b",
	})

	_, _, err := build(t, tree, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPositionCollision))
}

func TestBuildManifest_IgnoreConvention(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": `
Files: Patches/skip.sql
Loader: Ignore
StartOffset: 10
FileOffset: 1

Files: Patches/*.sql
Loader: Patch
StartOffset: 10
FileOffset: 1
`,
		"Patches/skip.sql": "s",
		"Patches/keep.sql": "k",
	})

	b := newBuilder(t, tree)
	var out bytes.Buffer
	res, err := b.BuildManifest("", &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"Patches/keep.sql", "Patches/skip.sql"}, res.AllImplicatedFilePaths(true))
	assert.Equal(t, []string{"Patches/keep.sql"}, res.AllImplicatedFilePaths(false))
	assert.Equal(t, []string{"Patches/keep.sql"}, b.AllImplicatedFilePaths(false))
	assert.Equal(t, []string{"Patches/skip.sql"}, res.Ignored)

	assert.Contains(t, out.String(), "# Ignored: Patches/skip.sql (position 11)")
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, "skip.sql") {
			assert.True(t, strings.HasPrefix(line, "#"), "ignored file must only appear in comments: %q", line)
		}
	}
}

func TestBuildManifest_IgnoredPositionStillOccupied(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": `
Files: a.sql
Loader: Ignore
StartOffset: 0
FileOffset: 1

Files: b.sql
Loader: Patch
StartOffset: 0
FileOffset: 1
`,
		"a.sql": "a",
		"b.sql": "b",
	})

	_, _, err := build(t, tree, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPositionCollision))
}

func TestBuildManifest_ForcedDuplicateAndUtility(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": `
Files: Util/*.sql
Loader: ScriptRunnerUtil
StartOffset: 100
FileOffset: 1

Files: **/*.sql
Loader: Patch
StartOffset: 100
FileOffset: 1
`,
		"ScriptRunner/manifest-override.mf": "900: +Patch Patches/p.sql {rerun=\"yes\"}\n",
		"Util/compile.sql":                  "c",
		"Patches/p.sql":                     "p",
	})

	res, _, err := build(t, tree, "")
	require.NoError(t, err)

	var got []string
	for _, e := range res.Entries {
		marker := ""
		if e.IsForcedDuplicate() {
			marker = "+"
		}
		got = append(got, marker+e.LoaderName()+" "+e.FilePath())
	}
	assert.Equal(t, []string{
		"ScriptRunnerUtil Util/compile.sql",
		"Patch Patches/p.sql",
		"Patch Util/compile.sql",
		"+Patch Patches/p.sql",
	}, got)
	assert.Equal(t, []int{101, 201, 202, 900}, func() []int {
		var ps []int
		for _, e := range res.Entries {
			ps = append(ps, e.SequencePosition())
		}
		return ps
	}())
	assert.Equal(t, []string{"Patches/p.sql", "Util/compile.sql"}, res.AllImplicatedFilePaths(false))
}

func TestBuildManifest_OverridesInsideRuleBlock(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": `
Files: Patches/*.sql
Loader: Patch
StartOffset: 100
FileOffset: 10

Files: Setup/*.sql
Loader: Patch
StartOffset: 500
FileOffset: 1
`,
		"ScriptRunner/manifest-override.mf": "100: Patch Setup/init.sql\n115: +Patch Patches/a.sql {rerun=\"yes\"}\n",
		"Patches/a.sql":                     "a",
		"Patches/b.sql":                     "b",
		"Setup/init.sql":                    "init",
	})

	res, out, err := build(t, tree, "")
	require.NoError(t, err)

	var got []string
	for _, e := range res.Entries {
		marker := ""
		if e.IsForcedDuplicate() {
			marker = "+"
		}
		got = append(got, fmt.Sprintf("%d %s%s", e.SequencePosition(), marker, e.FilePath()))
	}
	assert.Equal(t, []string{
		"100 Setup/init.sql",
		"110 Patches/a.sql",
		"115 +Patches/a.sql",
		"120 Patches/b.sql",
	}, got)

	p := promotion.NewParser(promotion.Settings{})
	require.NoError(t, p.Parse(strings.NewReader(out)))
	entries := p.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "Patches/a.sql", entries[2].FilePath())
	assert.Equal(t, 2, entries[2].FileIndex())
	rerun, ok := entries[2].Property("rerun")
	assert.True(t, ok)
	assert.Equal(t, "yes", rerun)
	assert.Equal(t, 1, entries[3].FileIndex())
}

func TestBuildManifest_Determinism(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg":          twoRuleConfig,
		"ScriptRunner/manifest-override.mf": "PROMOTION {ticket=\"T-9\"}\n1505: Patch Patches/a.sql\n",
		"Patches/a.sql":                     "a",
		"Patches/b.sql":                     "b",
		"Source/x.pkb":                      "x",
	})

	b := newBuilder(t, tree)
	var first, second bytes.Buffer
	_, err := b.BuildManifest("", &first)
	require.NoError(t, err)
	_, err = b.BuildManifest("", &second)
	require.NoError(t, err)

	assert.Equal(t, first.String(), second.String())
	assert.Contains(t, first.String(), `ticket="T-9"`)
}

func TestBuildManifest_RoundTrip(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"ScriptRunner/builder.cfg": twoRuleConfig,
		"Patches/a.sql":            "a",
		"Source/x.pkb":             "x",
	})

	res, out, err := build(t, tree, "")
	require.NoError(t, err)

	file, err := manifest.ParseFile(strings.NewReader(out), manifest.ModePromotion, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Promotion, file.Promotion)
	require.Len(t, file.Lines, len(res.Entries))
	for i, line := range file.Lines {
		assert.Equal(t, res.Entries[i].FilePath(), line.Path)
		assert.Equal(t, res.Entries[i].SequencePosition(), line.Position)
		assert.Equal(t, res.Entries[i].Properties(), line.Properties)
	}
}

func TestBuildManifest_InputFileCounts(t *testing.T) {
	t.Run("no_config", func(t *testing.T) {
		tree := testutil.NewTree(t, map[string]string{"a.sql": "a"})
		_, _, err := build(t, tree, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigFileCount))
	})

	t.Run("two_configs", func(t *testing.T) {
		tree := testutil.NewTree(t, map[string]string{
			"builder.cfg":              twoRuleConfig,
			"ScriptRunner/builder.cfg": twoRuleConfig,
		})
		_, _, err := build(t, tree, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigFileCount))
	})

	t.Run("two_overrides", func(t *testing.T) {
		tree := testutil.NewTree(t, map[string]string{
			"builder.cfg":           twoRuleConfig,
			"manifest-override.mf":  "",
			"manifest-override2.mf": "",
		})
		_, _, err := build(t, tree, "")
		assert.True(t, errors.IsErrorCode(err, errors.ErrOverrideFileCount))
	})

	t.Run("metadata_dir_is_base_dir", func(t *testing.T) {
		tree := testutil.NewTree(t, map[string]string{
			"builder.cfg": "Files: *.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
			"a.sql":       "a",
		})
		resolver, err := filesystem.NewResolver(tree.Fs, tree.BaseDir, "")
		require.NoError(t, err)
		b, err := builder.New(resolver, builder.Options{Label: "REL-1", ToolVersion: "3.1.0", Now: fixedNow})
		require.NoError(t, err)

		var out bytes.Buffer
		res, err := b.BuildManifest("", &out)
		require.NoError(t, err)
		assert.Equal(t, tree.Path("builder.cfg"), res.ConfigFile)
	})
}

func TestBuildManifest_StructuralErrors(t *testing.T) {
	base := map[string]string{
		"ScriptRunner/builder.cfg": "Files: Patches/*.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
		"Patches/a.sql":            "a",
		"Other/b.sql":              "b",
	}

	tests := []struct {
		name       string
		override   string
		additional string
		code       errors.ErrorCode
	}{
		{
			name:     "override_unclaimed",
			override: "5: Patch Other/b.sql\n",
			code:     errors.ErrUnclaimedPath,
		},
		{
			name:     "augmentation_unclaimed",
			override: "~ Other/b.sql {x=1}\n",
			code:     errors.ErrUnclaimedPath,
		},
		{
			name:       "additional_unclaimed",
			additional: "~ Other/b.sql {x=1}\n",
			code:       errors.ErrUnclaimedPath,
		},
		{
			name:     "duplicate_augmentation",
			override: "~ Patches/a.sql {x=1}\n~ Patches/a.sql {y=1}\n",
			code:     errors.ErrDuplicateAugmentation,
		},
		{
			name:     "reserved_in_override",
			override: "~ Patches/a.sql {file_hash=\"abc\"}\n",
			code:     errors.ErrReservedProperty,
		},
		{
			name:       "reserved_in_additional",
			additional: "~ Patches/a.sql {FILE_VERSION=\"1\"}\n",
			code:       errors.ErrReservedProperty,
		},
		{
			name:       "additional_with_loader",
			additional: "~ Patch Patches/a.sql {x=1}\n",
			code:       errors.ErrAdditionalProperties,
		},
		{
			name:       "additional_with_position",
			additional: "5: Patch Patches/a.sql\n",
			code:       errors.ErrAdditionalProperties,
		},
		{
			name:     "override_grammar",
			override: "five: Patch Patches/a.sql\n",
			code:     errors.ErrGrammarLine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{}
			for k, v := range base {
				files[k] = v
			}
			additional := ""
			if tt.override != "" {
				files["ScriptRunner/manifest-override.mf"] = tt.override
			}
			if tt.additional != "" {
				files["extra.mf"] = tt.additional
				additional = "extra.mf"
			}
			tree := testutil.NewTree(t, files)

			var out bytes.Buffer
			_, err := newBuilder(t, tree).BuildManifest(additional, &out)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err), err.Error())
			assert.Equal(t, 0, out.Len())
		})
	}
}

func TestBuildManifest_EmptyManifest(t *testing.T) {
	tree := testutil.NewTree(t, map[string]string{
		"builder.cfg": "Files: Patches/*.sql\nLoader: Patch\nStartOffset: 0\nFileOffset: 1\n",
	})

	_, _, err := build(t, tree, "")
	assert.True(t, errors.IsErrorCode(err, errors.ErrEmptyManifest))
}
