package prompt

import (
	_ "embed"
	"strconv"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/emergency.txt
	emergencyRaw string
)

// PromptSet holds the loaded prompt templates.
type PromptSet struct {
	system    string
	emergency string
}

// LoadPromptSet returns the embedded templates, trimmed. Safe to call
// concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		system:    strings.TrimSpace(systemRaw),
		emergency: strings.TrimSpace(emergencyRaw),
	}
}

// System renders the generation prompt from a context description and
// the guideline snippets picked for the query.
func (p PromptSet) System(contextText string, tips []string) string {
	out := strings.ReplaceAll(p.system, "{context}", strings.TrimSpace(contextText))

	tipText := "- none for this question"
	if len(tips) > 0 {
		var b strings.Builder
		for i, tip := range tips {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(tip))
		}
		tipText = b.String()
	}
	return strings.ReplaceAll(out, "{tips}", tipText)
}

// Emergency renders the safety script. The script is fully canned: it
// embeds the gestational week when known and drops that line otherwise.
func (p PromptSet) Emergency(week int) string {
	if week > 0 {
		return strings.ReplaceAll(p.emergency, "{week}", strconv.Itoa(week))
	}

	lines := strings.Split(p.emergency, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, "{week}") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
