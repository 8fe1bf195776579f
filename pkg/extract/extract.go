// Package extract recovers the single in-character utterance from raw
// LLM completion output. The model is asked for exactly one
// <response>...</response> block, but production logs show it leaking
// reasoning preambles, planning checklists, unclosed tags, and
// placeholder blocks instead. The cascade here always produces a
// usable string and never lets meta-text through for any recognized
// failure pattern.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// Leading parenthetical "instruction" line, e.g. "(add your response below)".
	prefaceRe = regexp.MustCompile(`(?i)^\s*\([^)]*response[^)]*\)\s*\n+`)

	// Trailing reasoning blocks: once one of these markers appears, the
	// model only emits reasoning through end-of-string.
	reasoningSuffixRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Here are my reasoning.*$`),
		regexp.MustCompile(`(?is)Here Are My Reasonings.*$`),
		regexp.MustCompile(`(?is)Let me think.*$`),
		regexp.MustCompile(`(?is)Okay,\s*let[’']?s\s+see\..*$`),
		regexp.MustCompile(`(?is)Okay,\s*let[’']?s\s+.*$`),
	}

	// Line-leading planner directives, dropped line-by-line.
	directiveLineRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*Okay,\s*i\s+need\s+to\s+.*\n+`),
		regexp.MustCompile(`(?im)^\s*The\s+user\s+asks:.*\n+`),
		regexp.MustCompile(`(?im)^\s*Must\s+wrap\s+.*\n+`),
		regexp.MustCompile(`(?im)^\s*So\s+answer:.*\n+`),
	}

	responseBlockRe = regexp.MustCompile(`(?is)<response>(.*?)</response>`)
	openTagRe       = regexp.MustCompile(`(?is)<response>\s*(.+)$`)
	draftedSpeechRe = regexp.MustCompile(`(?is)\b(?:she|he|they)\s+might\s+say:\s*["“](.+?)["”]`)

	angleTagRe     = regexp.MustCompile(`<[^>]+>`)
	specialTokenRe = regexp.MustCompile(`<\|[^|]+\|>`)

	trailingQuestionsRe = regexp.MustCompile(`(?m)\?{3,}.*$`)
	trailingThinkRe     = regexp.MustCompile(`(?im)Okay let me think.*$`)
)

// Meta-phrase prefixes for the leading-line stripper.
var metaLinePrefixes = []string{
	"also ensure",
	"check for",
	"make sure",
	"now output",
	"must wrap",
	"so answer",
	"the user asks",
	"output format",
	"example (follow",
	"disallowed content",
}

var metaLineSubstrings = []string{
	"disallowed content",
	"exactly one block",
	"it's safe",
}

// Meta markers that disqualify a tagged block from selection.
var blockMetaMarkers = []string{
	"also ensure",
	"check for",
	"make sure",
	"now output",
	"disallowed content",
	"it's safe",
	"guardrails",
	"exactly one block",
}

// Reasoning indicators for the first-substantial-line fallback.
var reasoningIndicators = []string{
	"here are",
	"reasoning",
	"let me think",
	"we need",
	"the user",
	"the system",
	"i need to",
	"i have to",
	"i must",
}

// Response extracts the character's dialogue from raw model output.
// It always returns a string; the result is empty only when the input
// carried nothing but strippable meta-text. Callers treat a too-short
// result as a failure signal, not this function.
func Response(raw string) string {
	text := normalize(raw)

	for _, candidate := range []func(string) (string, bool){
		fromTaggedBlocks,
		fromOpenTag,
		fromDraftedSpeech,
		fromFirstSubstantialLine,
	} {
		if out, ok := candidate(text); ok {
			return out
		}
	}

	return lastResort(text)
}

// normalize applies the unconditional cleanup passes: preface strip,
// trailing reasoning-block cut, directive-line removal, and the
// leading meta-line stripper. The tag scan runs on the result, so a
// reasoning preamble can never shadow a real response block.
func normalize(text string) string {
	text = prefaceRe.ReplaceAllString(text, "")
	for _, re := range reasoningSuffixRes {
		text = re.ReplaceAllString(text, "")
	}
	for _, re := range directiveLineRes {
		text = re.ReplaceAllString(text, "")
	}
	return stripLeadingMetaLines(text)
}

// blockScore ranks a tagged response block. Placeholder blocks sort
// below everything, meta-contaminated blocks below clean ones, longer
// blocks above shorter. Scoring only de-prioritizes; a lone
// placeholder block is still returned.
type blockScore struct {
	notPlaceholder bool
	notMeta        bool
	length         int
}

func (s blockScore) beats(other blockScore) bool {
	if s.notPlaceholder != other.notPlaceholder {
		return s.notPlaceholder
	}
	if s.notMeta != other.notMeta {
		return s.notMeta
	}
	return s.length > other.length
}

func scoreBlock(block string) blockScore {
	b := strings.TrimSpace(block)
	low := strings.ToLower(b)

	placeholder := b == "..." || b == "…" ||
		strings.Contains(low, "i'm ...") || strings.Contains(low, "i’m ...")

	meta := false
	for _, m := range blockMetaMarkers {
		if strings.Contains(low, m) {
			meta = true
			break
		}
	}

	return blockScore{notPlaceholder: !placeholder, notMeta: !meta, length: len(b)}
}

// fromTaggedBlocks is the primary happy path: one or more closed
// <response> blocks, best one selected by score.
func fromTaggedBlocks(text string) (string, bool) {
	matches := responseBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", false
	}

	best := matches[0][1]
	bestScore := scoreBlock(best)
	for _, m := range matches[1:] {
		if s := scoreBlock(m[1]); s.beats(bestScore) {
			best, bestScore = m[1], s
		}
	}

	return stripLeadingMetaLines(stripTags(strings.TrimSpace(best))), true
}

// fromOpenTag recovers output where the model opened a <response> tag
// but never closed it: everything after the tag is the utterance.
func fromOpenTag(text string) (string, bool) {
	m := openTagRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return stripLeadingMetaLines(stripTags(strings.TrimSpace(m[1]))), true
}

// fromDraftedSpeech handles narrative framing like
// `She might say: "..."` by extracting the quoted dialogue.
func fromDraftedSpeech(text string) (string, bool) {
	m := draftedSpeechRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(stripTags(strings.TrimSpace(m[1]))), true
}

// fromFirstSubstantialLine scans top to bottom for the first line that
// looks like dialogue: over 10 characters, free of reasoning
// indicators, starting with an uppercase letter or a quote.
func fromFirstSubstantialLine(text string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || utf8.RuneCountInString(line) <= 10 {
			continue
		}
		if containsReasoningIndicator(line) {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if unicode.IsUpper(first) || first == '"' || first == '\'' {
			return strings.TrimSpace(stripTags(line)), true
		}
	}
	return "", false
}

// lastResort cleans up whatever is left: tags, trailing runs of
// question marks, trailing think-aloud suffixes.
func lastResort(text string) string {
	cleaned := strings.TrimSpace(stripTags(text))
	cleaned = trailingQuestionsRe.ReplaceAllString(cleaned, "")
	cleaned = trailingThinkRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(stripLeadingMetaLines(cleaned))
}

func stripTags(s string) string {
	s = angleTagRe.ReplaceAllString(s, "")
	return specialTokenRe.ReplaceAllString(s, "")
}

func containsReasoningIndicator(line string) bool {
	low := strings.ToLower(line)
	for _, ind := range reasoningIndicators {
		if strings.Contains(low, ind) {
			return true
		}
	}
	return false
}

// stripLeadingMetaLines removes leading checklist/meta lines that
// occasionally leak into outputs, tolerating punctuation prefixes like
// ". " or "- ". Dropping stops at the first line that doesn't match;
// that line and everything after is kept verbatim. Idempotent: later
// cascade steps re-invoke it on their own output.
func stripLeadingMetaLines(s string) string {
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))
	dropping := true
	for _, ln := range lines {
		ln = strings.TrimRight(ln, " \t\r")
		raw := strings.TrimSpace(ln)
		if dropping {
			if raw == "" {
				continue
			}
			if isMetaLine(raw) {
				continue
			}
			// A stray '.' sometimes precedes meta content; drop it
			// while still in the leading state.
			if raw == "." {
				continue
			}
			dropping = false
		}
		cleaned = append(cleaned, ln)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

func isMetaLine(raw string) bool {
	low := strings.ToLower(strings.TrimSpace(strings.TrimLeft(raw, ".-*•> ")))
	for _, p := range metaLinePrefixes {
		if strings.HasPrefix(low, p) {
			return true
		}
	}
	for _, sub := range metaLineSubstrings {
		if strings.Contains(low, sub) {
			return true
		}
	}
	return false
}
