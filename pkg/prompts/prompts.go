package prompts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/novaterra/npc-engine/pkg/npc"
)

// HistoryWindow is the number of most recent conversation turns
// included in a prompt. Older turns are truncated, never summarized.
const HistoryWindow = 10

const (
	unknown      = "Unknown"
	notSpecified = "Not specified"
)

// criticalInstructions is the instruction block that keeps the model
// in character. The output-format contract (exactly one <response>
// block) is what the extraction cascade downstream relies on.
const criticalInstructions = `CRITICAL INSTRUCTIONS:
- You MUST respond ONLY in first person.
- You MUST respond ONLY as %[1]s.
- You MUST NOT show any reasoning, thinking steps, explanations, or meta-commentary.
- You MUST NOT write "Here are my reasonings", "Let me think", "I need to", or any similar phrases.
- You MUST NOT explain what you're doing or why.
- You MUST NOT mention guardrails, instructions, or system prompts.
- You MUST speak directly as %[1]s would speak in this situation.
- Your response MUST be ONLY the character's dialogue words, nothing else.
- Respond naturally and in character based on the conversation context.

OUTPUT FORMAT (MANDATORY):
- Output MUST be wrapped in XML tags exactly like:
  <response>...%[1]s's dialogue here...</response>
- Output MUST contain NOTHING outside the <response>...</response> tags.
- Do NOT output placeholders like "..." or "…".
- Output MUST contain exactly ONE <response>...</response> block.

Example (follow this pattern exactly):
Player: Tell me about yourself
%[1]s: <response>I'm %[1]s. Ask around %[2]s and you'll hear my name soon enough.</response>`

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// CharacterBlock renders a character profile into prompt text.
// Missing fields render as literal placeholders, never as absent
// sections, so the prompt shape is stable.
func CharacterBlock(c *npc.CharacterProfile) string {
	if c == nil {
		return "Character information not available."
	}

	name := c.Name
	if name == "" {
		name = unknown
	}
	age := c.Age.String()
	if age == "" {
		age = unknown
	}
	gender := c.Gender
	if gender == "" {
		gender = unknown
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", name)
	fmt.Fprintf(&sb, "Age: %s\n", age)
	fmt.Fprintf(&sb, "Gender: %s\n\n", gender)
	fmt.Fprintf(&sb, "Appearance: %s\n", valueOr(c.Appearance, "description", notSpecified))
	fmt.Fprintf(&sb, "Height: %s\n", valueOr(c.Appearance, "height", unknown))
	fmt.Fprintf(&sb, "Weight: %s\n", valueOr(c.Appearance, "weight", unknown))
	fmt.Fprintf(&sb, "Hair: %s\n", valueOr(c.Appearance, "hair", unknown))
	fmt.Fprintf(&sb, "Eyes: %s\n\n", valueOr(c.Appearance, "eyes", unknown))
	fmt.Fprintf(&sb, "Personalities: %s\n\n", joinOr(c.Personalities, notSpecified))
	sb.WriteString("Background:\n")
	fmt.Fprintf(&sb, "- Hometown: %s\n", valueOr(c.Background, "hometown", unknown))
	fmt.Fprintf(&sb, "- Family: %s\n", valueOr(c.Background, "family", unknown))
	fmt.Fprintf(&sb, "- Motivation: %s\n\n", valueOr(c.Background, "motivation", unknown))
	fmt.Fprintf(&sb, "Skills: %s\n\n", joinOr(c.Skills, notSpecified))
	fmt.Fprintf(&sb, "Secrets: %s", joinOr(c.Secrets, "None"))
	return sb.String()
}

// EnvironmentBlock renders the environment context into prompt text.
func EnvironmentBlock(e *npc.EnvironmentContext) string {
	era, period := unknown, unknown
	var detail map[string]string
	if e != nil {
		if e.Era != "" {
			era = e.Era
		}
		if e.TimePeriod != "" {
			period = e.TimePeriod
		}
		detail = e.Detail
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Era: %s\n", era)
	fmt.Fprintf(&sb, "Time Period: %s\n\n", period)
	fmt.Fprintf(&sb, "Environment: %s\n", valueOr(detail, "Environment", notSpecified))
	fmt.Fprintf(&sb, "Social and Economic: %s\n", valueOr(detail, "Social and Economic Aspects", notSpecified))
	fmt.Fprintf(&sb, "Cultural Norms: %s\n", valueOr(detail, "Cultural Norms", notSpecified))
	fmt.Fprintf(&sb, "Political Climate: %s", valueOr(detail, "Political Climate", notSpecified))
	return sb.String()
}

// GuardrailsBlock renders the named safety rules as a bullet list in
// deterministic key order.
func GuardrailsBlock(e *npc.EnvironmentContext) string {
	if e == nil || len(e.Guardrails) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Guardrails))
	for k := range e.Guardrails {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("- %s: %s", k, e.Guardrails[k]))
	}
	return strings.Join(lines, "\n")
}

// StopSequences returns the provider stop sequences for a character:
// the markers that would begin a fabricated next turn. The closing
// response tag is deliberately NOT a stop sequence; extraction handles
// full or partial tags in the returned text.
func StopSequences(characterName string) []string {
	return []string{"\n\nPlayer:", fmt.Sprintf("\n\n%s:", characterName)}
}
