package manifest

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/arthur-debert/promote/pkg/errors"
)

// Document is everything needed to render a built manifest
type Document struct {
	Promotion map[string]string
	Entries   []BuilderEntry
	// Comments are keyed by position and emitted before the first entry at
	// or after that position.
	Comments map[int][]string
}

// Write renders doc in the canonical manifest form. Output depends only on
// doc, so equal documents produce identical bytes.
func Write(w io.Writer, doc Document) error {
	if len(doc.Entries) == 0 {
		return errors.New(errors.ErrEmptyManifest, "manifest must have at least one entry to be serialised")
	}

	entries := make([]BuilderEntry, len(doc.Entries))
	copy(entries, doc.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SequencePosition() < entries[j].SequencePosition()
	})

	numberWidth := len(strconv.Itoa(entries[len(entries)-1].SequencePosition())) + 2
	loaderWidth, pathWidth := 0, 0
	for _, e := range entries {
		if len(e.LoaderName()) > loaderWidth {
			loaderWidth = len(e.LoaderName())
		}
		if len(e.FilePath()) > pathWidth {
			pathWidth = len(e.FilePath())
		}
	}
	lineFormat := fmt.Sprintf("%%0%dd:  %%-%ds   %%-1s%%-%ds   %%s\n", numberWidth, loaderWidth, pathWidth)

	commentPositions := make([]int, 0, len(doc.Comments))
	for pos := range doc.Comments {
		commentPositions = append(commentPositions, pos)
	}
	sort.Ints(commentPositions)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "PROMOTION %s\n", FormatPropertyMap(doc.Promotion))

	next := 0
	for _, e := range entries {
		for next < len(commentPositions) && commentPositions[next] <= e.SequencePosition() {
			writeComments(bw, doc.Comments[commentPositions[next]])
			next++
		}

		marker := ""
		if e.IsForcedDuplicate() {
			marker = "+"
		}
		fmt.Fprintf(bw, lineFormat, e.SequencePosition(), e.LoaderName(), marker, e.FilePath(), FormatPropertyMap(e.Properties()))
	}
	for ; next < len(commentPositions); next++ {
		writeComments(bw, doc.Comments[commentPositions[next]])
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to write manifest")
	}
	return nil
}

func writeComments(w io.Writer, comments []string) {
	for _, c := range comments {
		fmt.Fprintln(w, c)
	}
}
