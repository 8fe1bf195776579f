package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_TaggedBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single well-formed block",
			input:    "<response>I'm Kaiya, nice to meet you.</response>",
			expected: "I'm Kaiya, nice to meet you.",
		},
		{
			name:     "block with surrounding noise",
			input:    "Some preamble.\n<response>Hello traveler.</response>\nTrailing noise.",
			expected: "Hello traveler.",
		},
		{
			name:     "case-insensitive tags",
			input:    "<RESPONSE>The caves are dangerous at night.</RESPONSE>",
			expected: "The caves are dangerous at night.",
		},
		{
			name:     "multiline block content",
			input:    "<response>The storm is coming.\nWe should find shelter.</response>",
			expected: "The storm is coming.\nWe should find shelter.",
		},
		{
			name:     "residual special tokens stripped",
			input:    "<response>Safe travels.<|endoftext|></response>",
			expected: "Safe travels.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Response(tt.input))
		})
	}
}

func TestResponse_TagPriorityOverTrailingReasoning(t *testing.T) {
	input := "<response>A fine morning, isn't it?</response>\nHere are my reasonings: the user greeted me so I should greet back."
	assert.Equal(t, "A fine morning, isn't it?", Response(input))
}

func TestResponse_PlaceholderDeprioritized(t *testing.T) {
	input := "<response>...</response><response>Real line here.</response>"
	assert.Equal(t, "Real line here.", Response(input))

	// Reversed order: the placeholder still loses.
	input = "<response>Real line here.</response><response>...</response>"
	assert.Equal(t, "Real line here.", Response(input))
}

func TestResponse_LonePlaceholderStillReturned(t *testing.T) {
	// Scoring de-prioritizes placeholders, never discards them.
	assert.Equal(t, "...", Response("<response>...</response>"))
}

func TestResponse_MetaBlockDeprioritized(t *testing.T) {
	input := "<response>Make sure the reply follows the guardrails.</response><response>Come in, the fire's warm.</response>"
	assert.Equal(t, "Come in, the fire's warm.", Response(input))
}

func TestResponse_LongerBlockWinsTieBreak(t *testing.T) {
	// A model that second-guesses itself usually puts the real answer
	// in the later, more substantive block.
	input := "<response>Hmm, let's see...</response><response>The harbor master keeps the old charts, down by the lighthouse.</response>"
	assert.Equal(t, "The harbor master keeps the old charts, down by the lighthouse.", Response(input))
}

func TestResponse_UnterminatedTag(t *testing.T) {
	assert.Equal(t, "Hello world", Response("blah <response>Hello world"))
}

func TestResponse_NarrativeDraftFallback(t *testing.T) {
	assert.Equal(t, "I am fine.", Response(`She might say: "I am fine."`))
	assert.Equal(t, "Leave me be.", Response(`He might say: "Leave me be." and walk off.`))
	assert.Equal(t, "We remember.", Response("They might say: “We remember.”"))
}

func TestResponse_PrefaceStripped(t *testing.T) {
	input := "(add your response below)\n\n<response>Welcome to the market.</response>"
	assert.Equal(t, "Welcome to the market.", Response(input))
}

func TestResponse_DirectiveLinesStripped(t *testing.T) {
	input := "The user asks: where am I?\nSo answer: with the town name.\n<response>You're in Seabreak, stranger.</response>"
	assert.Equal(t, "You're in Seabreak, stranger.", Response(input))
}

func TestResponse_LeadingMetaLinesStripped(t *testing.T) {
	input := "Make sure it's in character.\n.\nAlso ensure no meta commentary.\nGood evening, what brings you here?"
	assert.Equal(t, "Good evening, what brings you here?", Response(input))
}

func TestResponse_FirstSubstantialLine(t *testing.T) {
	input := "we need to answer as the character\nOkay.\nGreetings, stranger, the road is long.\nmore notes"
	assert.Equal(t, "Greetings, stranger, the road is long.", Response(input))
}

func TestResponse_FirstSubstantialLineSkipsReasoning(t *testing.T) {
	input := "I need to sound friendly here today\n\"Fair winds to you, captain.\""
	assert.Equal(t, "\"Fair winds to you, captain.\"", Response(input))
}

func TestResponse_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"   \n\t  \n",
		strings.Repeat("x", 10000),
		"<response>",
		"</response>",
		"<response></response>",
		"<|endoftext|>",
		"???????",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_ = Response(in)
		})
	}
	assert.Equal(t, "", Response(""))
	assert.Equal(t, "", Response("   \n\t  \n"))
}

func TestResponse_LastResortCleanup(t *testing.T) {
	// No structure at all: tags and trailing junk are stripped.
	got := Response("the road ??????? goes nowhere")
	assert.NotContains(t, got, "???")
}

func TestResponse_TrailingReasoningBlockCut(t *testing.T) {
	input := "A quiet night in the tavern, friend.\nLet me think about what else to add."
	assert.Equal(t, "A quiet night in the tavern, friend.", Response(input))
}

func TestResponse_Idempotent(t *testing.T) {
	// Once extraction yields a clean bare string, re-running it is a
	// no-op. Required because the orchestrator re-runs extraction on
	// short results.
	inputs := []string{
		"<response>I'm Kaiya, nice to meet you.</response>",
		"Good evening, what brings you here?",
		`She might say: "I am fine."`,
		"blah <response>Hello world",
	}
	for _, in := range inputs {
		once := Response(in)
		assert.Equal(t, once, Response(once), "input %q", in)
	}
}

func TestStripLeadingMetaLines_Idempotent(t *testing.T) {
	inputs := []string{
		"Make sure it rhymes.\nHello there.",
		"Hello there.",
		"",
		".\n.\nFine weather today, friend.",
	}
	for _, in := range inputs {
		once := stripLeadingMetaLines(in)
		assert.Equal(t, once, stripLeadingMetaLines(once))
	}
}
