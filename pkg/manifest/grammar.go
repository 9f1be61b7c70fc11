package manifest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/filesystem"
)

// Mode selects which entry line shapes are accepted
type Mode int

const (
	// ModeBuilder accepts augmentation lines and lets them omit the loader.
	// Used for override and additional-properties files.
	ModeBuilder Mode = iota
	// ModePromotion rejects augmentation lines and requires a loader on
	// every entry. Used for manifests read back for execution.
	ModePromotion
)

// Unpositioned is the sequence position of an augmentation entry
const Unpositioned = -1

const (
	loaderChars = `[A-Za-z0-9_\-.]`
	pathChars   = `[A-Za-z0-9_\-.()\\/\[\],;'#{}@+$£!^% ]`
)

var (
	entryLinePattern = regexp.MustCompile(
		`^(([0-9]+):|~)[ \t]+(?:(` + loaderChars + `+)[ \t]+)?(\+?)(` + pathChars + `+)(?:[ \t]+(\{.*\}))?[ \t]*$`)
	promotionLinePattern = regexp.MustCompile(`^PROMOTION[ \t]+(\{.+\})$`)
)

// Line is one parsed entry line
type Line struct {
	Augmentation    bool
	Position        int
	Loader          string
	ForcedDuplicate bool
	Path            string
	Properties      map[string]string

	// Number is the 1-based line number in the source file, zero when the
	// line did not come from a file.
	Number int
	Raw    string
}

// ParseLine parses a single entry line. The line is trimmed first.
func ParseLine(raw string, mode Mode) (Line, error) {
	text := strings.TrimSpace(raw)

	m := entryLinePattern.FindStringSubmatch(text)
	if m == nil {
		return Line{}, lineError(errors.ErrGrammarLine, "entry line syntax not valid", text)
	}

	line := Line{
		Augmentation:    m[1] == "~",
		Position:        Unpositioned,
		Loader:          strings.TrimSpace(m[3]),
		ForcedDuplicate: m[4] == "+",
		Path:            filesystem.NormalizePath(m[5]),
		Properties:      map[string]string{},
		Raw:             text,
	}

	if props := strings.TrimSpace(m[6]); props != "" {
		parsed, err := ParsePropertyMap(props)
		if err != nil {
			return Line{}, withLine(err, text)
		}
		line.Properties = parsed
	}

	if mode == ModePromotion && line.Augmentation {
		return Line{}, lineError(errors.ErrAugmentationLine, "manifest entries for promotions cannot be augmentation (~) lines", text)
	}
	if line.Loader == "" {
		if mode == ModePromotion {
			return Line{}, lineError(errors.ErrMissingLoaderName, "manifest entries for promotions must specify a loader name", text)
		}
		if !line.Augmentation {
			return Line{}, lineError(errors.ErrMissingLoaderName, "non-augmentation entries must specify a loader name", text)
		}
	}

	if !line.Augmentation {
		pos, err := strconv.Atoi(m[2])
		if err != nil {
			return Line{}, errors.Wrapf(err, errors.ErrGrammarSequence, "sequence position '%s' is not a valid integer", m[2]).
				WithDetail("line", text)
		}
		line.Position = pos
	}

	return line, nil
}

// ParsePromotionLine parses a PROMOTION {...} line. ok is false when text is
// not a promotion line at all.
func ParsePromotionLine(raw string) (props map[string]string, ok bool, err error) {
	text := strings.TrimSpace(raw)
	m := promotionLinePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false, nil
	}
	props, err = ParsePropertyMap(m[1])
	if err != nil {
		return nil, true, withLine(err, text)
	}
	return props, true, nil
}

func lineError(code errors.ErrorCode, msg, text string) error {
	return errors.Newf(code, "%s: %s", msg, text).WithDetail("line", text)
}

func withLine(err error, text string) error {
	return errors.Wrapf(err, errors.GetErrorCode(err), "invalid properties in line: %s", text).
		WithDetail("line", text)
}
