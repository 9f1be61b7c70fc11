// Test Type: Unit Test
// Description: Tests for verifying a parsed manifest against a source tree

package promotion_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/promotion"
	"github.com/arthur-debert/promote/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func verifyTree(t *testing.T) *testutil.Tree {
	return testutil.NewTree(t, map[string]string{
		"Patches/a.sql":                   "alpha",
		"Source/b.pkb":                    "beta",
		"ScriptRunner/Loaders/Custom.sql": "loader",
		"ScriptRunner/builder.cfg":        "cfg",
	})
}

func manifestFor(tree *testutil.Tree, hashA, hashB string) string {
	return header + fmt.Sprintf(
		"10: Patch Patches/a.sql {file_hash=%q}\n20: Custom Source/b.pkb {file_hash=%q}\n", hashA, hashB)
}

func parsed(t *testing.T, content string) *promotion.Parser {
	t.Helper()
	p := promotion.NewParser(promotion.Settings{})
	require.NoError(t, p.Parse(strings.NewReader(content)))
	return p
}

func TestVerify_OK(t *testing.T) {
	tree := verifyTree(t)
	p := parsed(t, manifestFor(tree, tree.Hash("Patches/a.sql"), tree.Hash("Source/b.pkb")))

	report, err := p.Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0", Strict: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Entries)
	assert.Equal(t, 2, report.HashesChecked)
	assert.Equal(t, []string{"Custom"}, report.Loaders)
	assert.Empty(t, report.Unimplicated)
}

func TestVerify_HashMismatch(t *testing.T) {
	tree := verifyTree(t)
	content := manifestFor(tree, "0123456789abcdef0123456789abcdef", tree.Hash("Source/b.pkb"))

	_, err := parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHashMismatch))
	assert.Contains(t, err.Error(), "Patches/a.sql")

	_, err = parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0", SkipHashCheck: true})
	assert.NoError(t, err)
}

func TestVerify_HashMissing(t *testing.T) {
	tree := verifyTree(t)
	p := parsed(t, header+"10: Patch Patches/a.sql\n")

	_, err := p.Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrHashMissing))
}

func TestVerify_MissingFiles(t *testing.T) {
	tree := verifyTree(t)

	t.Run("entry_file", func(t *testing.T) {
		p := parsed(t, header+"10: Patch Patches/gone.sql\n")
		_, err := p.Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileMissing))
	})

	t.Run("loader_file", func(t *testing.T) {
		p := parsed(t, header+"10: Unknown Patches/a.sql\n")
		_, err := p.Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0", SkipHashCheck: true})
		assert.True(t, errors.IsErrorCode(err, errors.ErrLoaderMissing))
		assert.Contains(t, err.Error(), "Unknown")
	})
}

func TestVerify_Version(t *testing.T) {
	tree := verifyTree(t)
	content := manifestFor(tree, tree.Hash("Patches/a.sql"), tree.Hash("Source/b.pkb"))

	_, err := parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "4.0.0"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrVersionIncompatible))

	_, err = parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "4.0.0", SkipVersionCheck: true})
	assert.NoError(t, err)
}

func TestVerify_Unimplicated(t *testing.T) {
	tree := verifyTree(t)
	tree.WriteFile("Patches/extra.sql", "extra")
	tree.WriteFile("notes.txt", "n")
	content := manifestFor(tree, tree.Hash("Patches/a.sql"), tree.Hash("Source/b.pkb"))

	report, err := parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Patches/extra.sql", "notes.txt"}, report.Unimplicated)

	_, err = parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{ToolVersion: "3.1.0", Strict: true})
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnimplicatedFiles))

	report, err = parsed(t, content).Verify(tree.Resolver(), promotion.VerifyOptions{
		ToolVersion: "3.1.0",
		Strict:      true,
		Accounted:   []string{"Patches/extra.sql", "/notes.txt"},
	})
	require.NoError(t, err)
	assert.Empty(t, report.Unimplicated)
}

func TestVerify_RequiresParse(t *testing.T) {
	tree := verifyTree(t)
	_, err := promotion.NewParser(promotion.Settings{}).Verify(tree.Resolver(), promotion.VerifyOptions{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}
