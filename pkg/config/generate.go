package config

import (
	"fmt"
	"strings"
)

// GenerateConfigContent returns a starting ProjectConfigFile: the defaults
// with every setting commented out
func GenerateConfigContent() string {
	header := fmt.Sprintf("# %s: promote settings for this source tree.\n"+
		"# Every value below is the built-in default; uncomment a line to change it.\n", ProjectConfigFile)
	return header + commentOutConfigValues(stripLeadingComments(DefaultsContent()))
}

// stripLeadingComments drops the defaults file's own preamble
func stripLeadingComments(content string) string {
	lines := strings.Split(content, "\n")
	i := 0
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			break
		}
		i++
	}
	return "\n" + strings.Join(lines[i:], "\n")
}

// commentOutConfigValues comments out assignment lines. Section headers stay
// live so a user only has to uncomment the key.
func commentOutConfigValues(content string) string {
	var b strings.Builder
	for i, line := range strings.Split(content, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		trimmed := strings.TrimSpace(line)
		isHeader := strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || isHeader {
			b.WriteString(line)
			continue
		}
		b.WriteString("# " + line)
	}
	return b.String()
}
