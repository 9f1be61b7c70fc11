package rules

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
	"github.com/arthur-debert/promote/pkg/logging"
	"github.com/arthur-debert/promote/pkg/manifest"
)

// Config file instructions
const (
	InstructionFiles       = "Files"
	InstructionLoader      = "Loader"
	InstructionStartOffset = "StartOffset"
	InstructionFileOffset  = "FileOffset"
	InstructionProperties  = "Properties"
)

var knownInstructions = map[string]bool{
	InstructionLoader:      true,
	InstructionStartOffset: true,
	InstructionFileOffset:  true,
	InstructionProperties:  true,
}

type block struct {
	pattern      string
	line         int
	instructions map[string]string
}

// ParseConfig reads a builder config file into rules, in file order
func ParseConfig(r io.Reader) ([]Rule, error) {
	logger := logging.GetLogger("rules.config")

	var blocks []*block
	var current *block

	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, ":")
		if idx == -1 {
			return nil, configError(number, "invalid line %d, must be in format Instruction: Value", number)
		}
		instruction := line[:idx]
		value := strings.TrimSpace(line[idx+1:])
		if value == "" {
			return nil, configError(number, "invalid line %d, value must be specified", number)
		}

		if instruction == InstructionFiles {
			current = &block{pattern: value, line: number, instructions: map[string]string{}}
			blocks = append(blocks, current)
			continue
		}

		if !knownInstructions[instruction] {
			return nil, configError(number, "unrecognised config file instruction: %s", instruction)
		}
		if current == nil {
			return nil, configError(number, "%s instruction on line %d appears before any Files: instruction", instruction, number)
		}
		if _, dup := current.instructions[instruction]; dup {
			return nil, configError(number, "duplicate %s instruction for Files section %s", instruction, current.pattern)
		}
		current.instructions[instruction] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "failed to read config file")
	}

	if len(blocks) == 0 {
		return nil, errors.New(errors.ErrGrammarConfig, "config file does not define any Files: sections")
	}

	rules := make([]Rule, 0, len(blocks))
	for _, b := range blocks {
		rule, err := b.toRule()
		if err != nil {
			return nil, err
		}
		logger.Debug().
			Str("pattern", rule.Pattern).
			Str("loader", rule.Loader).
			Int("startOffset", rule.StartOffset).
			Int("fileOffset", rule.FileOffset).
			Msg("Parsed config rule")
		rules = append(rules, rule)
	}

	return rules, nil
}

func (b *block) toRule() (Rule, error) {
	loader := b.instructions[InstructionLoader]
	if loader == "" {
		return Rule{}, configError(b.line, "Files section %s must specify a Loader: instruction", b.pattern)
	}

	startRaw, hasStart := b.instructions[InstructionStartOffset]
	fileRaw, hasFile := b.instructions[InstructionFileOffset]
	if !hasStart || !hasFile {
		return Rule{}, configError(b.line, "Files section %s must specify both %s and %s instructions",
			b.pattern, InstructionStartOffset, InstructionFileOffset)
	}
	startOffset, err := strconv.Atoi(startRaw)
	if err != nil {
		return Rule{}, configError(b.line, "invalid integer value %q for %s in Files section %s", startRaw, InstructionStartOffset, b.pattern)
	}
	fileOffset, err := strconv.Atoi(fileRaw)
	if err != nil {
		return Rule{}, configError(b.line, "invalid integer value %q for %s in Files section %s", fileRaw, InstructionFileOffset, b.pattern)
	}

	props := map[string]string{}
	if raw, ok := b.instructions[InstructionProperties]; ok {
		props, err = manifest.ParsePropertyMap(raw)
		if err != nil {
			return Rule{}, errors.Wrapf(err, errors.GetErrorCode(err), "invalid Properties for Files section %s", b.pattern).
				WithDetail("line_number", b.line)
		}
		if err := manifest.CheckReserved(props, "config properties for "+b.pattern); err != nil {
			return Rule{}, err
		}
	}

	return Rule{
		Pattern:     b.pattern,
		Loader:      loader,
		StartOffset: startOffset,
		FileOffset:  fileOffset,
		Properties:  props,
		Line:        b.line,
	}, nil
}

func configError(line int, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrGrammarConfig, format, args...).WithDetail("line_number", line)
}
