package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text   string
		want   Action
		wantOK bool
	}{
		{"/start", ActionStart, true},
		{"/edit", ActionEditTask, true},
		{"/edit_section", ActionEditSection, true},
		{"/help@prompt_bot", ActionHelp, true},
		{"/add_requirement Rate limiting", ActionAddRequirement, true},
		{"/unknown", "", false},
		{"start", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParseCommand(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
