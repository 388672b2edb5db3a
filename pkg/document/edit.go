package document

import "strings"

// UpdateSection replaces the body of the section matching targetName. When no
// section matches, a new "# TARGETNAME" section is appended.
func UpdateSection(doc, targetName, newBody string) string {
	s := Parse(doc)
	if heading, ok := s.Find(targetName); ok {
		s.Set(heading, newBody)
	} else {
		s.Set(syntheticHeading(targetName), newBody)
	}
	return s.String()
}

// syntheticHeading builds a heading for targetName that Parse recognizes again,
// so a second update finds it instead of appending a duplicate.
func syntheticHeading(targetName string) string {
	name := strings.ToUpper(headingKey(targetName))
	heading := headingMarker + " " + name
	if IsHeading(heading) {
		return heading
	}
	return headingMarker + " ADDITIONAL: " + name
}

// AppendRequirement adds "- requirement" to the requirements section,
// creating the section when the document has none.
func AppendRequirement(doc, requirement string) string {
	s := Parse(doc)
	bullet := "- " + requirement

	heading, ok := s.Requirements()
	if !ok {
		s.Set(requirementsHeading, bullet)
		return s.String()
	}

	body, _ := s.Body(heading)
	if body == "" {
		s.Set(heading, bullet)
	} else {
		s.Set(heading, body+"\n"+bullet)
	}
	return s.String()
}

// RemoveRequirementLines drops every line of the requirements section that
// contains match, ignoring case. Other sections are left alone.
func RemoveRequirementLines(doc, match string) string {
	s := Parse(doc)
	heading, ok := s.Requirements()
	if !ok {
		return doc
	}

	needle := strings.ToLower(match)
	body, _ := s.Body(heading)
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			kept = append(kept, line)
		}
	}
	s.Set(heading, strings.Join(kept, "\n"))
	return s.String()
}
