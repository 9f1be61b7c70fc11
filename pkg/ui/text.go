package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/manifest"
	"github.com/arthur-debert/promote/pkg/ui/styles"
)

// humanRenderer lays out results for people. The terminal and text formats
// differ only in how a named style is applied.
type humanRenderer struct {
	output io.Writer
	style  func(name, s string) string
}

func newTextRenderer(w io.Writer) *humanRenderer {
	return &humanRenderer{
		output: w,
		style:  func(_, s string) string { return s },
	}
}

func newTerminalRenderer(w io.Writer) *humanRenderer {
	return &humanRenderer{
		output: w,
		style: func(name, s string) string {
			return styles.GetStyle(name).Render(s)
		},
	}
}

// RenderResult renders a BuildView, VerifyView or ListView
func (r *humanRenderer) RenderResult(result interface{}) error {
	var b strings.Builder

	switch v := result.(type) {
	case *BuildView:
		r.writeBuild(&b, v)
	case *VerifyView:
		r.writeVerify(&b, v)
	case *ListView:
		r.writeList(&b, v)
	default:
		fmt.Fprintf(&b, "%+v\n", result)
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error, adding its code when it has one
func (r *humanRenderer) RenderError(err error) error {
	msg := err.Error()
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg = fmt.Sprintf("%s (%s)", msg, errors.CategoryOf(err))
	}
	_, werr := fmt.Fprintf(r.output, "%s %s\n", r.style("Error", "Error:"), msg)
	return werr
}

// RenderMessage renders a simple message
func (r *humanRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func (r *humanRenderer) writeBuild(b *strings.Builder, v *BuildView) {
	if v.DryRun {
		fmt.Fprintf(b, "%s\n", r.style("Heading", "Manifest (dry run, not written)"))
	} else {
		fmt.Fprintf(b, "%s %s\n", r.style("Success", "Manifest written:"), v.ManifestPath)
	}
	r.writePromotion(b, v.Promotion)
	fmt.Fprintf(b, "%s %d\n", r.style("Label", "Entries:"), len(v.Entries))
	if len(v.Ignored) > 0 {
		fmt.Fprintf(b, "%s %d\n", r.style("Label", "Ignored:"), len(v.Ignored))
	}
	if len(v.Loaders) > 0 {
		fmt.Fprintf(b, "%s %s\n", r.style("Label", "Loaders:"), strings.Join(v.Loaders, ", "))
	}
	r.writeUnimplicated(b, v.Unimplicated, "not implicated by any rule")
}

func (r *humanRenderer) writeVerify(b *strings.Builder, v *VerifyView) {
	fmt.Fprintf(b, "%s %s\n", r.style("Success", "Manifest verified:"), v.ManifestPath)
	r.writePromotion(b, v.Promotion)
	fmt.Fprintf(b, "%s %d\n", r.style("Label", "Entries:"), v.Entries)
	fmt.Fprintf(b, "%s %d\n", r.style("Label", "Hashes checked:"), v.HashesChecked)
	if len(v.Loaders) > 0 {
		fmt.Fprintf(b, "%s %s\n", r.style("Label", "Loaders:"), strings.Join(v.Loaders, ", "))
	}
	r.writeUnimplicated(b, v.Unimplicated, "not listed in the manifest")
}

func (r *humanRenderer) writeList(b *strings.Builder, v *ListView) {
	fmt.Fprintf(b, "%s\n", r.style("Heading", v.ManifestPath))
	r.writePromotion(b, v.Promotion)

	if v.AsTree {
		counts := map[string]int{}
		for _, e := range v.Entries {
			counts[e.Path]++
		}
		b.WriteString(RenderLabelledTree(".", entryPaths(v.Entries), func(p string) string {
			label := r.style("Path", baseName(p))
			if counts[p] > 1 {
				label += r.style("Forced", fmt.Sprintf(" (x%d)", counts[p]))
			}
			return label
		}))
		return
	}

	width := 0
	for _, e := range v.Entries {
		if len(e.Loader) > width {
			width = len(e.Loader)
		}
	}
	for _, e := range v.Entries {
		marker := " "
		if e.ForcedDuplicate {
			marker = r.style("Forced", "+")
		}
		fmt.Fprintf(b, "%s  %s %s%s\n",
			r.style("Position", fmt.Sprintf("%6d", e.Position)),
			r.style("Loader", fmt.Sprintf("%-*s", width, e.Loader)),
			marker,
			r.style("Path", e.Path))
	}
}

func (r *humanRenderer) writePromotion(b *strings.Builder, promotion map[string]string) {
	for _, key := range sortedKeys(promotion) {
		if key == manifest.PropPromotionLabel || key == manifest.PropToolVersion || key == manifest.PropGeneratedDatetime {
			fmt.Fprintf(b, "%s %s\n", r.style("Property", key+":"), promotion[key])
		}
	}
}

func (r *humanRenderer) writeUnimplicated(b *strings.Builder, files []string, reason string) {
	if len(files) == 0 {
		return
	}
	fmt.Fprintf(b, "%s %d file(s) %s:\n", r.style("Warning", "Warning:"), len(files), reason)
	b.WriteString(RenderTree(".", files))
}

func baseName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
