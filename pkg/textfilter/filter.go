// Package textfilter softens NPC dialogue when the active
// environment's guardrails ask for family-friendly output. The
// completion provider is instructed to stay clean, but instructions
// are not guarantees.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps filtered words to tamer alternatives.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"asshole":      "jerk",
	"dumbass":      "dummy",
	"bullshit":     "baloney",
	"goddamn":      "gosh-dang",
	"motherfucker": "mother-trucker",
	"prick":        "jerk",
	"dickhead":     "jerk",
}

// DialogueFilter replaces profanity in NPC dialogue lines.
type DialogueFilter struct {
	regexes map[string]*regexp.Regexp
}

// NewDialogueFilter creates a filter with precompiled word-boundary
// patterns.
func NewDialogueFilter() *DialogueFilter {
	df := &DialogueFilter{
		regexes: make(map[string]*regexp.Regexp, len(replacements)),
	}
	for word := range replacements {
		df.regexes[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return df
}

// Filter replaces profanity in a dialogue line, preserving the case
// pattern of the original word.
func (df *DialogueFilter) Filter(line string) string {
	result := line
	for word, replacement := range replacements {
		result = df.regexes[word].ReplaceAllStringFunc(result, func(match string) string {
			return preserveCase(match, replacement)
		})
	}
	return result
}

// ContainsProfanity reports whether the line contains a filtered word.
func (df *DialogueFilter) ContainsProfanity(line string) bool {
	for _, re := range df.regexes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// GuardrailsRequireFilter inspects an environment's guardrails map for
// a rule that asks for clean language. Guardrail values are free text,
// so this is a substring heuristic, not a schema.
func GuardrailsRequireFilter(guardrails map[string]string) bool {
	for key, value := range guardrails {
		k := strings.ToLower(key)
		v := strings.ToLower(value)
		if strings.Contains(k, "language") || strings.Contains(k, "profanity") || strings.Contains(k, "rating") {
			if strings.Contains(v, "no profanity") ||
				strings.Contains(v, "family") ||
				strings.Contains(v, "clean") ||
				strings.Contains(v, "pg") ||
				strings.Contains(v, "all ages") {
				return true
			}
		}
	}
	return false
}

// preserveCase applies the case pattern of the original word to the
// replacement.
func preserveCase(original, replacement string) string {
	if len(original) == 0 {
		return replacement
	}

	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror the original character by character.
	result := make([]rune, 0, len(replacement))
	originalRunes := []rune(original)
	for i, r := range []rune(replacement) {
		if i < len(originalRunes) && unicode.IsUpper(originalRunes[i]) {
			result = append(result, unicode.ToUpper(r))
		} else {
			result = append(result, unicode.ToLower(r))
		}
	}
	return string(result)
}
