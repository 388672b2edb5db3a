package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# GOAL\nBuild a todo API\n\n# REQUIREMENTS\n- Auth\n- CRUD\n\n# TECH STACK\nGo, Postgres"

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"# GOAL", true},
		{"  ## Tech Stack  ", true},
		{"### Output format", true},
		{"## Задача", true},
		{"# Требования к системе", true},
		{"# Introduction", false},
		{"GOAL without marker", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHeading(tt.line))
		})
	}
}

func TestSectionList(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "recognized headings in order",
			doc:  sampleDoc,
			want: []string{"# GOAL", "# REQUIREMENTS", "# TECH STACK"},
		},
		{
			name: "preamble is dropped",
			doc:  "Here is your prompt:\n\n# TASK\nDo things",
			want: []string{"# TASK"},
		},
		{
			name: "unrecognized marker lines stay in the body",
			doc:  "# GOAL\nx\n# Notes\ny",
			want: []string{"# GOAL"},
		},
		{
			name: "no headings is one implicit section",
			doc:  "just some text",
			want: []string{FullDocumentHeading},
		},
		{
			name: "duplicate heading keeps first position",
			doc:  "# GOAL\na\n# TASK\nb\n# GOAL\nc",
			want: []string{"# GOAL", "# TASK"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SectionList(tt.doc))
		})
	}
}

func TestParse_HeadingCountMatchesInput(t *testing.T) {
	keywords := []string{"TASK", "GOAL", "REQUIREMENTS", "TECH STACK", "ARCHITECTURE", "ADDITIONAL", "OUTPUT", "FORMAT"}

	for n := 1; n <= len(keywords); n++ {
		var b strings.Builder
		want := make([]string, 0, n)
		for i := 0; i < n; i++ {
			heading := "## " + keywords[i]
			want = append(want, heading)
			b.WriteString(heading + "\nbody line\n\n")
		}
		assert.Equal(t, want, SectionList(b.String()))
	}
}

func TestParseSections_BodiesAreTrimmed(t *testing.T) {
	headings, bodies := ParseSections("# GOAL\n\n  Build it  \n\n# TASK\nline 1\nline 2\n")

	assert.Equal(t, []string{"# GOAL", "# TASK"}, headings)
	assert.Equal(t, "Build it", bodies["# GOAL"])
	assert.Equal(t, "line 1\nline 2", bodies["# TASK"])
}

func TestParse_DuplicateHeadingOverwrites(t *testing.T) {
	s := Parse("# GOAL\nfirst\n# GOAL\nsecond")

	body, ok := s.Body("# GOAL")
	require.True(t, ok)
	assert.Equal(t, "second", body)
	assert.Equal(t, 1, s.Len())
}

func TestSections_StringRoundTrip(t *testing.T) {
	assert.Equal(t, sampleDoc, Parse(sampleDoc).String())
	assert.Equal(t, "# GOAL\nx\n\n# TASK\ny", Parse("# GOAL\r\nx\r\n# TASK\r\ny\r\n").String())
}
