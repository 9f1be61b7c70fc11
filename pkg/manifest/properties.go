package manifest

import (
	"sort"
	"strings"

	"github.com/arthur-debert/promote/pkg/errors"
)

// Property names the engine reserves for itself
const (
	PropFileHash    = "file_hash"
	PropFileVersion = "file_version"
)

// Promotion property names
const (
	PropPromotionLabel    = "promotion_label"
	PropToolVersion       = "scriptrunner_version"
	PropGeneratedDatetime = "manifest_generated_datetime"
)

// ReservedProperties lists the per-file property names no input may set
var ReservedProperties = []string{PropFileHash, PropFileVersion}

// CheckReserved returns ErrReservedProperty if props sets a reserved name.
// source describes where props came from and is used in the message.
func CheckReserved(props map[string]string, source string) error {
	for _, name := range ReservedProperties {
		if _, ok := props[name]; ok {
			return errors.Newf(errors.ErrReservedProperty, "%s may not specify reserved property %s", source, name).
				WithDetail("property", name)
		}
	}
	return nil
}

// ParsePropertyMap parses a {name="value", name2=value2} string. Commas and
// equals signs inside double quotes are kept as part of the value; there is no
// escape for a literal quote. Names are lowercased and all quote characters
// are removed from values.
func ParsePropertyMap(s string) (map[string]string, error) {
	result := make(map[string]string)

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, propertyError(s, "property string must start with '{'")
	}
	if len(s) < 2 || !strings.HasSuffix(s, "}") {
		return nil, propertyError(s, "property string must end with '}'")
	}

	segments, ok := splitUnquoted(s[1:len(s)-1], ',')
	if !ok {
		return nil, propertyError(s, "unterminated quotes in property string")
	}

	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		parts, _ := splitUnquoted(segment, '=')
		if len(parts) != 2 {
			return nil, propertyError(s, "invalid property definition: "+segment)
		}

		name := strings.ToLower(strings.Trim(parts[0], " \t"))
		value := strings.Trim(parts[1], " \t")
		if name == "" || value == "" {
			return nil, propertyError(s, "invalid property definition: "+segment)
		}

		if _, exists := result[name]; exists {
			return nil, errors.Newf(errors.ErrDuplicateProperty, "duplicate property %s", name).
				WithDetail("property", name).
				WithDetail("line", s)
		}
		result[name] = strings.ReplaceAll(value, `"`, "")
	}

	return result, nil
}

// splitUnquoted splits s on sep wherever sep is outside double quotes. The
// second result is false when a quote is left open.
func splitUnquoted(s string, sep rune) ([]string, bool) {
	var parts []string
	var current strings.Builder
	inQuotes := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == sep && !inQuotes:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())

	return parts, !inQuotes
}

func propertyError(s, msg string) error {
	return errors.New(errors.ErrGrammarProperties, msg).WithDetail("line", s)
}

// FormatPropertyMap renders props as {a="1", b="2"} with keys sorted
func FormatPropertyMap(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(props[k])
		b.WriteString(`"`)
	}
	b.WriteString("}")
	return b.String()
}

// MergeProperties returns a new map holding every layer in order, later
// layers overwriting earlier ones.
func MergeProperties(layers ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			result[k] = v
		}
	}
	return result
}

func copyProperties(props map[string]string) map[string]string {
	return MergeProperties(props)
}
