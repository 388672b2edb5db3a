// Package document treats a generated prompt as an ordered list of named
// sections and performs section-addressed edits on it.
package document

import (
	"strings"
)

// FullDocumentHeading names the implicit section of a document that has no
// recognized headings.
const FullDocumentHeading = "Full document"

const (
	// requirementsHeading is used when a requirement is added to a document
	// that has no requirements section yet.
	requirementsHeading = "# ТРЕБОВАНИЯ / # REQUIREMENTS"

	// promotedHeading replaces the implicit heading once the document gains
	// real sections, otherwise its body would be dropped on the next parse.
	promotedHeading = "# ЗАДАЧА / # TASK"

	headingMarker = "#"
)

// headingKeywords are matched against the upper-cased heading line.
var headingKeywords = []string{
	"ЗАДАЧА", "TASK",
	"ЦЕЛЬ", "GOAL",
	"ТРЕБОВАНИЯ", "REQUIREMENTS",
	"СТЕК", "TECH STACK",
	"АРХИТЕКТУРА", "ARCHITECTURE",
	"ДОПОЛНИТЕЛЬНЫЕ", "ADDITIONAL",
	"ВЫВОД", "OUTPUT",
	"ФОРМАТ", "FORMAT",
}

var requirementKeywords = []string{"ТРЕБОВАНИЯ", "REQUIREMENTS"}

// Sections is an insertion-ordered heading -> body mapping
type Sections struct {
	order    []string
	bodies   map[string]string
	implicit bool
}

func newSections() *Sections {
	return &Sections{bodies: make(map[string]string)}
}

// IsHeading reports whether a line opens a new section
func IsHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, headingMarker) {
		return false
	}
	return containsAny(strings.ToUpper(line), headingKeywords)
}

// Parse splits a document into sections. Lines before the first heading are
// dropped; a document without headings becomes a single implicit section.
// A repeated heading keeps its first position and the last body.
func Parse(doc string) *Sections {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	s := newSections()

	var (
		current   string
		inSection bool
		content   []string
	)
	flush := func() {
		if inSection {
			s.Set(current, strings.Join(content, "\n"))
		}
	}

	for _, line := range strings.Split(doc, "\n") {
		if IsHeading(line) {
			flush()
			current = strings.TrimSpace(line)
			inSection = true
			content = nil
			continue
		}
		if inSection {
			content = append(content, line)
		}
	}
	flush()

	if s.Len() == 0 {
		s.implicit = true
		s.Set(FullDocumentHeading, doc)
	}
	return s
}

// ParseSections returns the headings of doc in encounter order together with
// their bodies.
func ParseSections(doc string) ([]string, map[string]string) {
	s := Parse(doc)
	bodies := make(map[string]string, len(s.bodies))
	for k, v := range s.bodies {
		bodies[k] = v
	}
	return s.Headings(), bodies
}

// SectionList returns the section headings of doc in encounter order
func SectionList(doc string) []string {
	return Parse(doc).Headings()
}

// Len returns the number of sections
func (s *Sections) Len() int {
	return len(s.order)
}

// Headings returns the headings in order
func (s *Sections) Headings() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Body returns the body of a heading
func (s *Sections) Body(heading string) (string, bool) {
	body, ok := s.bodies[heading]
	return body, ok
}

// Set replaces the body of heading, appending the heading if it is new
func (s *Sections) Set(heading, body string) {
	if _, exists := s.bodies[heading]; !exists {
		s.order = append(s.order, heading)
	}
	s.bodies[heading] = strings.TrimSpace(body)
}

// Find returns the heading that names the same section as name. An exact
// match wins; otherwise the first heading that contains name, or is contained
// in it, ignoring case.
func (s *Sections) Find(name string) (string, bool) {
	exact := headingKey(name)
	synthetic := headingKey(syntheticHeading(name))
	for _, heading := range s.order {
		if key := headingKey(heading); key == exact || key == synthetic {
			return heading, true
		}
	}

	needle := strings.ToLower(name)
	for _, heading := range s.order {
		h := strings.ToLower(heading)
		if strings.Contains(h, needle) || strings.Contains(needle, h) {
			return heading, true
		}
	}
	return "", false
}

// headingKey drops the heading marker and case: "## Tech Stack" -> "tech stack"
func headingKey(heading string) string {
	key := strings.TrimLeft(strings.TrimSpace(heading), headingMarker)
	return strings.ToLower(strings.TrimSpace(key))
}

// Requirements returns the first heading carrying a requirements keyword
func (s *Sections) Requirements() (string, bool) {
	for _, heading := range s.order {
		if containsAny(strings.ToUpper(heading), requirementKeywords) {
			return heading, true
		}
	}
	return "", false
}

// String serializes the sections as heading, body and a blank separator line
func (s *Sections) String() string {
	lines := make([]string, 0, len(s.order)*3)
	for _, heading := range s.order {
		body := s.bodies[heading]
		if s.implicit && heading == FullDocumentHeading {
			if len(s.order) == 1 {
				lines = append(lines, body, "")
				continue
			}
			heading = promotedHeading
		}
		lines = append(lines, heading, body, "")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
