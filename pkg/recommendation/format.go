package recommendation

import (
	"prompt-builder-bot/pkg/store"
	"strings"
)

// Format renders a recommendation as Markdown for the user. Empty fields are
// left out.
func Format(rec store.Recommendation) string {
	var b strings.Builder
	b.WriteString("**Recommendations**\n")

	writeText(&b, "Tech stack", rec.TechStack)
	writeText(&b, "Architecture", rec.Architecture)
	writeList(&b, "Key features", rec.KeyFeatures)
	writeText(&b, "Scalability", rec.Scalability)
	writeText(&b, "Compliance", rec.Compliance)
	writeList(&b, "Risks", rec.Risks)
	writeText(&b, "Summary", rec.Summary)

	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	b.WriteString("\n**" + label + ":** " + value + "\n")
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n**" + label + ":**\n")
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
}
