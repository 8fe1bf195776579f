package extract

import "strings"

// Length ceilings for the two pollution call sites. Retrieved memory
// documents are filtered harder than fresh output headed for
// persistence; the constants are intentionally distinct.
const (
	// MemoryMaxLen caps documents retrieved from the memory store
	// before they enter a prompt.
	MemoryMaxLen = 500

	// PersistMaxLen caps a freshly extracted response before it is
	// persisted to the memory store.
	PersistMaxLen = 1000

	// MinResponseLen is the shortest extraction result treated as
	// usable dialogue.
	MinResponseLen = 5
)

// Case-sensitive, exact substrings that mark leaked reasoning. These
// match the patterns observed in stored documents; they are not
// lowercased because the leaks are verbatim model text.
var pollutionMarkers = []string{
	"The user says",
	"We need to respond",
	"Here are my reasoning",
	"Thus final answer",
	"[BEGIN FINAL RESPONSE]",
	"Your output:",
	"The system expects",
}

// IsPolluted reports whether text contains leaked reasoning or exceeds
// maxLen. Pass MemoryMaxLen when filtering retrieved memory documents
// and PersistMaxLen when gating fresh output before persistence.
func IsPolluted(text string, maxLen int) bool {
	if len(text) > maxLen {
		return true
	}
	for _, marker := range pollutionMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// FilterMemories drops polluted documents from a retrieved memory set
// and truncates to the two most relevant, preserving the store's
// relevance order.
func FilterMemories(docs []string) []string {
	filtered := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == "" {
			continue
		}
		if IsPolluted(doc, MemoryMaxLen) {
			continue
		}
		filtered = append(filtered, doc)
	}
	if len(filtered) > 2 {
		filtered = filtered[:2]
	}
	return filtered
}
