// Package recommendation turns free-form model output into a
// store.Recommendation record.
package recommendation

import (
	"encoding/json"
	"fmt"
	"maps"
	"prompt-builder-bot/pkg/store"
	"regexp"
	"slices"
	"strings"
)

const (
	// NeedsClarification fills text fields that could not be extracted
	NeedsClarification = "Needs clarification"

	fallbackTechStackRunes = 200
)

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// Normalizer converts raw completion text into a recommendation. It never
// fails: unusable input produces a fallback record.
type Normalizer interface {
	Normalize(raw string) store.Recommendation
}

// LenientNormalizer parses the first-to-last brace span of the input as JSON,
// tolerating comments, trailing commas and loosely typed fields.
type LenientNormalizer struct{}

var _ Normalizer = LenientNormalizer{}

func NewLenientNormalizer() LenientNormalizer {
	return LenientNormalizer{}
}

func (LenientNormalizer) Normalize(raw string) store.Recommendation {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return Fallback(raw)
	}

	candidate := raw[start : end+1]
	fields, err := decode(candidate)
	if err != nil {
		fields, err = decode(cleanJSON(candidate))
		if err != nil {
			return Fallback(raw)
		}
	}

	return store.Recommendation{
		TechStack:    asText(fields["tech_stack"]),
		Architecture: asText(fields["architecture"]),
		KeyFeatures:  asList(fields["key_features"]),
		Scalability:  asText(fields["scalability"]),
		Compliance:   asText(fields["compliance"]),
		Risks:        asList(fields["risks"]),
		Summary:      asText(fields["recommendation_summary"]),
	}
}

// Fallback keeps the raw text when nothing structured could be read
func Fallback(raw string) store.Recommendation {
	return store.Recommendation{
		TechStack:    truncateRunes(raw, fallbackTechStackRunes),
		Architecture: NeedsClarification,
		KeyFeatures:  []string{},
		Scalability:  NeedsClarification,
		Compliance:   NeedsClarification,
		Risks:        []string{},
		Summary:      raw,
	}
}

func decode(candidate string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(candidate), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("not a json object")
	}
	return fields, nil
}

// asText flattens any JSON value into display text
func asText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		return strings.Join(asList(val), ", ")
	case map[string]any:
		parts := make([]string, 0, len(val))
		for _, key := range sortedKeys(val) {
			parts = append(parts, key+": "+asText(val[key]))
		}
		return strings.Join(parts, "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// asList accepts arrays, single values and objects; the result is never nil
func asList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := asText(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(val) {
			out = append(out, key+": "+asText(val[key]))
		}
	default:
		if s := asText(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// cleanJSON removes // comments outside string values and trailing commas
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripLineComment(line)
	}
	return trailingCommaPattern.ReplaceAllString(strings.Join(lines, "\n"), "$1")
}

func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
