package manifest

import (
	"bufio"
	"io"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
)

const maxLineLength = 1024 * 1024

// File is the parsed content of a manifest-format file
type File struct {
	// Promotion holds the PROMOTION line's properties, nil when absent
	Promotion map[string]string
	Lines     []Line
}

// ParseFile reads every line from r. Blank and # lines are skipped. When
// visit is non-nil it is called for each entry line as soon as it is parsed,
// and an error it returns stops parsing.
func ParseFile(r io.Reader, mode Mode, visit func(Line) error) (*File, error) {
	file := &File{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	number := 0
	for scanner.Scan() {
		number++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		props, isPromotion, err := ParsePromotionLine(text)
		if err != nil {
			return nil, atLine(err, number)
		}
		if isPromotion {
			if file.Promotion != nil {
				return nil, errors.New(errors.ErrDuplicatePromotionLine, "duplicate PROMOTION definition line found").
					WithDetail("line_number", number)
			}
			file.Promotion = props
			continue
		}

		line, err := ParseLine(text, mode)
		if err != nil {
			return nil, atLine(err, number)
		}
		line.Number = number

		if visit != nil {
			if err := visit(line); err != nil {
				return nil, atLine(err, number)
			}
		}
		file.Lines = append(file.Lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read manifest")
	}

	return file, nil
}

func atLine(err error, number int) error {
	var pe *errors.PromoteError
	if e, ok := err.(*errors.PromoteError); ok {
		pe = e
	} else {
		pe = errors.Wrap(err, errors.GetErrorCode(err), "parse failed")
	}
	if _, set := pe.Details["line_number"]; !set {
		pe.WithDetail("line_number", number)
	}
	return pe
}
