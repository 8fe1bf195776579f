package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPolluted_Markers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"reasoning verdict", "Thus final answer: go left", true},
		{"clean dialogue", "I love exploring the caves.", false},
		{"user echo", "The user says hello so we greet", true},
		{"planning", "We need to respond carefully", true},
		{"final response sentinel", "[BEGIN FINAL RESPONSE] Hi there", true},
		{"output directive", "Your output: a greeting", true},
		{"system expectation", "The system expects one block", true},
		{"markers are case-sensitive", "the user says hello", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPolluted(tt.input, PersistMaxLen))
		})
	}
}

func TestIsPolluted_LengthCeilings(t *testing.T) {
	clean600 := strings.Repeat("a", 600)
	clean1001 := strings.Repeat("a", 1001)

	// Stricter ceiling for retrieved memory, looser for persistence.
	assert.True(t, IsPolluted(clean600, MemoryMaxLen))
	assert.False(t, IsPolluted(clean600, PersistMaxLen))
	assert.True(t, IsPolluted(clean1001, PersistMaxLen))
	assert.False(t, IsPolluted(strings.Repeat("a", 1000), PersistMaxLen))
}

func TestFilterMemories(t *testing.T) {
	docs := []string{
		"I remember the storm over the harbor.",
		"The user says we should reconsider",
		"",
		"My mother taught me to read the tides.",
		"The market opens at dawn.",
	}

	got := FilterMemories(docs)

	// Polluted and empty documents dropped, capped at two, relevance
	// order preserved.
	assert.Equal(t, []string{
		"I remember the storm over the harbor.",
		"My mother taught me to read the tides.",
	}, got)
}

func TestFilterMemories_CapAtTwo(t *testing.T) {
	docs := []string{"one fine day", "two fine days", "three fine days", "four", "five"}
	got := FilterMemories(docs)
	assert.Equal(t, []string{"one fine day", "two fine days"}, got)
}

func TestFilterMemories_LongDocDropped(t *testing.T) {
	long := strings.Repeat("b", 501)
	got := FilterMemories([]string{long, "short and sweet"})
	assert.Equal(t, []string{"short and sweet"}, got)
}
