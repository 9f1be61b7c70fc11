package topics

import (
	"github.com/charmbracelet/glamour"
)

// Renderer formats topic content for display. format is the topic file's
// extension, e.g. ".md".
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer returns content unchanged
type PlainRenderer struct{}

// Render returns content unchanged
func (PlainRenderer) Render(content string, _ string) string {
	return content
}

// MarkdownRenderer renders .md topics for the terminal with glamour. Other
// formats, and any content glamour fails on, pass through unchanged.
type MarkdownRenderer struct {
	// Style is a glamour style name or path; empty or "auto" detects the
	// terminal background
	Style string
	// Width wraps output at this many columns; zero keeps glamour's default
	Width int
}

// NewMarkdownRenderer returns a MarkdownRenderer with automatic styling
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{Style: "auto"}
}

// Render formats markdown content
func (r *MarkdownRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Style != "" && r.Style != "auto" {
		opts = []glamour.TermRendererOption{glamour.WithStylePath(r.Style)}
	}
	if r.Width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.Width))
	}

	term, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return content
	}
	out, err := term.Render(content)
	if err != nil {
		return content
	}
	return out
}
