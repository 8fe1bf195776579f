package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/npc"
)

func testCharacter() *npc.CharacterProfile {
	return &npc.CharacterProfile{
		Name:          "Kaiya Starling",
		Age:           "30",
		Gender:        "female",
		Personalities: []string{"curious", "daring"},
		Appearance: map[string]string{
			"description": "a weathered traveler",
			"height":      "5'7",
		},
		Background: map[string]string{
			"hometown": "Seabreak",
		},
		Skills:  []string{"navigation"},
		Secrets: []string{"owes a debt"},
	}
}

func testEnvironment() *npc.EnvironmentContext {
	return &npc.EnvironmentContext{
		Era:        "Nova Terra",
		TimePeriod: "2500-2600",
		Detail: map[string]string{
			"Environment":       "floating cities above a flooded world",
			"Cultural Norms":    "hospitality to travelers",
			"Political Climate": "uneasy truce between guilds",
		},
		Guardrails: map[string]string{
			"violence": "keep it mild",
			"language": "no profanity",
		},
	}
}

func TestBuilder_RequiresCharacter(t *testing.T) {
	_, err := New().WithUserMessage("hi").Build()
	assert.Error(t, err)
}

func TestBuilder_Build(t *testing.T) {
	prompt, err := New().
		WithCharacter(testCharacter()).
		WithEnvironment(testEnvironment()).
		WithUserMessage("Who are you?").
		Build()
	require.NoError(t, err)

	assert.Contains(t, prompt, "You are Kaiya Starling, a character in this world.")
	assert.Contains(t, prompt, "Name: Kaiya Starling")
	assert.Contains(t, prompt, "Era: Nova Terra")
	assert.Contains(t, prompt, "Environment: floating cities above a flooded world")
	assert.Contains(t, prompt, "- violence: keep it mild")
	assert.Contains(t, prompt, "exactly ONE <response>...</response> block")
	assert.True(t, strings.HasSuffix(prompt, "Player: Who are you?\n\nKaiya Starling:"))
}

func TestBuilder_MissingFieldsGetPlaceholders(t *testing.T) {
	c := &npc.CharacterProfile{Name: "Rook"}
	prompt, err := New().WithCharacter(c).WithUserMessage("hi").Build()
	require.NoError(t, err)

	// Malformed fields default to literal placeholders, never absent
	// sections.
	assert.Contains(t, prompt, "Age: Unknown")
	assert.Contains(t, prompt, "Appearance: Not specified")
	assert.Contains(t, prompt, "- Hometown: Unknown")
	assert.Contains(t, prompt, "Skills: Not specified")
	assert.Contains(t, prompt, "Secrets: None")
	assert.Contains(t, prompt, "Era: Unknown")
	assert.Contains(t, prompt, "Social and Economic: Not specified")
}

func TestBuilder_HistoryWindow(t *testing.T) {
	turns := make([]chat.Turn, 15)
	for i := range turns {
		turns[i] = chat.Turn{
			Player:    fmt.Sprintf("player message %d", i),
			Character: fmt.Sprintf("character reply %d", i),
		}
	}

	prompt, err := New().
		WithCharacter(testCharacter()).
		WithHistory(turns).
		WithUserMessage("hi").
		Build()
	require.NoError(t, err)

	// Only the last 10 turns appear, in chronological order.
	for i := 0; i < 5; i++ {
		assert.NotContains(t, prompt, fmt.Sprintf("player message %d", i))
	}
	for i := 5; i < 15; i++ {
		assert.Contains(t, prompt, fmt.Sprintf("player message %d", i))
	}
	assert.Less(t,
		strings.Index(prompt, "player message 5"),
		strings.Index(prompt, "player message 14"))
}

func TestBuilder_MemoryContext(t *testing.T) {
	prompt, err := New().
		WithCharacter(testCharacter()).
		WithMemories([]string{"I once sailed past the reef.", "The lighthouse keeper owes me."}).
		WithUserMessage("hi").
		Build()
	require.NoError(t, err)

	assert.Contains(t, prompt, "Previous conversation context from memory:")
	assert.Contains(t, prompt, "I once sailed past the reef.")

	// No memory section when there are no documents.
	prompt, err = New().WithCharacter(testCharacter()).WithUserMessage("hi").Build()
	require.NoError(t, err)
	assert.NotContains(t, prompt, "Previous conversation context from memory:")
}

func TestGuardrailsBlock_DeterministicOrder(t *testing.T) {
	e := testEnvironment()
	first := GuardrailsBlock(e)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, GuardrailsBlock(e))
	}
	assert.Less(t, strings.Index(first, "language"), strings.Index(first, "violence"))
}

func TestStopSequences(t *testing.T) {
	stops := StopSequences("Kaiya Starling")
	assert.Equal(t, []string{"\n\nPlayer:", "\n\nKaiya Starling:"}, stops)
	// The closing response tag must never be a stop sequence.
	for _, s := range stops {
		assert.NotContains(t, s, "</response>")
	}
}
