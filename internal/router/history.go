package router

import (
	"strings"

	"github.com/kayz/dobby/internal/ai"
)

const (
	contextWindow   = 8
	contextTurnSize = 200
)

// ContextMarkers identify assistant turns that carry results worth following up on.
var ContextMarkers = []string{
	"Source:",
	"Sumber:",
	"# Key Points",
	"Address Analysis Report",
	"Web Page Summary",
	"```",
}

// HasContextMarker reports whether content carries one of ContextMarkers.
func HasContextMarker(content string) bool {
	for _, m := range ContextMarkers {
		if strings.Contains(content, m) {
			return true
		}
	}
	return false
}

// condensed is the classifier's view of the recent conversation.
type condensed struct {
	text             string
	hasSearchResults bool
	lastContext      string
}

// condense keeps the last 8 non-system turns, each cut to 200 characters.
// lastContext is the full text of the latest assistant turn carrying a context marker.
func condense(history []ai.Message) condensed {
	var turns []ai.Message
	for _, m := range history {
		if m.Role != ai.RoleSystem {
			turns = append(turns, m)
		}
	}
	if len(turns) > contextWindow {
		turns = turns[len(turns)-contextWindow:]
	}

	var out condensed
	lines := make([]string, 0, len(turns))
	for _, m := range turns {
		label := "User"
		if m.Role != ai.RoleUser {
			label = "Assistant"
		}
		if m.Role == ai.RoleAssistant && HasContextMarker(m.Content) {
			out.hasSearchResults = true
			out.lastContext = m.Content
		}
		lines = append(lines, label+": "+truncate(m.Content, contextTurnSize))
	}
	out.text = strings.Join(lines, "\n")
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
