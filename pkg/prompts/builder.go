package prompts

import (
	"fmt"
	"strings"

	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/npc"
)

// Builder constructs the completion prompt for a dialogue turn using a
// fluent interface. Assembly is pure string formatting with no failure
// mode beyond a missing character.
type Builder struct {
	character    *npc.CharacterProfile
	environment  *npc.EnvironmentContext
	memories     []string
	history      []chat.Turn
	userMessage  string
	historyLimit int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: HistoryWindow,
	}
}

// WithCharacter sets the active character profile.
func (b *Builder) WithCharacter(c *npc.CharacterProfile) *Builder {
	b.character = c
	return b
}

// WithEnvironment sets the active environment context.
func (b *Builder) WithEnvironment(e *npc.EnvironmentContext) *Builder {
	b.environment = e
	return b
}

// WithMemories sets the filtered memory documents included as past
// conversation context.
func (b *Builder) WithMemories(docs []string) *Builder {
	b.memories = docs
	return b
}

// WithHistory sets the conversation turns; only the most recent
// window is rendered.
func (b *Builder) WithHistory(turns []chat.Turn) *Builder {
	b.history = turns
	return b
}

// WithUserMessage sets the player's current message.
func (b *Builder) WithUserMessage(message string) *Builder {
	b.userMessage = message
	return b
}

// WithHistoryLimit overrides the history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build assembles the final completion prompt.
func (b *Builder) Build() (string, error) {
	if b.character == nil {
		return "", fmt.Errorf("character is required")
	}

	name := b.character.Name

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, a character in this world. You know everything about yourself from your character profile.\n\n", name)
	sb.WriteString("YOUR CHARACTER PROFILE:\n")
	sb.WriteString(CharacterBlock(b.character))
	sb.WriteString("\n\nENVIRONMENT CONTEXT:\n")
	sb.WriteString(EnvironmentBlock(b.environment))

	if guardrails := GuardrailsBlock(b.environment); guardrails != "" {
		sb.WriteString("\n\nGuardrails (important rules to follow):\n")
		sb.WriteString(guardrails)
	}

	era := ""
	if b.environment != nil {
		era = b.environment.Era
	}
	if era == "" {
		era = "this world"
	}

	fmt.Fprintf(&sb, "\n\nIMPORTANT: You know all the information in your character profile. When asked about yourself, you can share:\n")
	sb.WriteString("- Your name, age, appearance, and background\n")
	sb.WriteString("- Your personalities and how they influence you\n")
	sb.WriteString("- Your skills and abilities\n")
	sb.WriteString("- Your hometown, family, and motivation\n")
	sb.WriteString("- Your secrets (but be careful about when to reveal them)\n")
	fmt.Fprintf(&sb, "- Information about %s and the environment you're from\n\n", era)

	fmt.Fprintf(&sb, "Your speech pattern is influenced by your personalities: %s.\n\n", joinOr(b.character.Personalities, notSpecified))
	fmt.Fprintf(&sb, criticalInstructions, name, era)

	if len(b.memories) > 0 {
		sb.WriteString("\n\nPrevious conversation context from memory:\n")
		sb.WriteString(strings.Join(b.memories, "\n"))
	}

	sb.WriteString("\n\n")
	b.addHistory(&sb, name)
	fmt.Fprintf(&sb, "Player: %s\n\n%s:", b.userMessage, name)

	return sb.String(), nil
}

// addHistory renders the windowed conversation turns, oldest first.
func (b *Builder) addHistory(sb *strings.Builder, name string) {
	turns := b.history
	if len(turns) > b.historyLimit {
		turns = turns[len(turns)-b.historyLimit:]
	}
	for _, turn := range turns {
		fmt.Fprintf(sb, "Player: %s\n%s: %s\n\n", turn.Player, name, turn.Character)
	}
}

// BuildPrompt is a convenience function for the common case.
func BuildPrompt(
	c *npc.CharacterProfile,
	e *npc.EnvironmentContext,
	memories []string,
	history []chat.Turn,
	message string,
) (string, error) {
	return New().
		WithCharacter(c).
		WithEnvironment(e).
		WithMemories(memories).
		WithHistory(history).
		WithUserMessage(message).
		Build()
}
