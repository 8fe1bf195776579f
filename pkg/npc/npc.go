package npc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Required key sets for config JSON detection. A document missing any
// required key is rejected, never coerced into a partial profile.
var (
	characterKeys   = []string{"name", "age", "gender", "personalities", "appearance", "background", "skills", "secrets"}
	environmentKeys = []string{"era", "time_period", "detail", "guardrails"}
)

// LooseString unmarshals from either a JSON string or a JSON number.
// Character sheets come from LLM output, which is inconsistent about
// quoting ages.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("value is neither string nor number: %s", data)
	}
	*s = LooseString(num.String())
	return nil
}

func (s LooseString) String() string {
	return string(s)
}

// CharacterProfile is the active persona's character sheet. The
// appearance and background maps are deliberately open string-to-string
// mappings: their values are rendered into prompt text, never
// interpreted programmatically.
type CharacterProfile struct {
	Name          string            `json:"name"`
	Age           LooseString       `json:"age"`
	Gender        string            `json:"gender"`
	Personalities []string          `json:"personalities"`
	Appearance    map[string]string `json:"appearance"`
	Background    map[string]string `json:"background"`
	Skills        []string          `json:"skills"`
	Secrets       []string          `json:"secrets"`
}

// CollectionName returns the memory store collection identifier for
// this character: the name with spaces replaced by underscores.
func (c *CharacterProfile) CollectionName() string {
	return strings.ReplaceAll(c.Name, " ", "_")
}

// EnvironmentContext describes the world the active character inhabits.
// Detail holds free-form descriptive text (environment, social,
// cultural, political); Guardrails maps named safety rules to free
// text. Both are rendered into prompts verbatim.
type EnvironmentContext struct {
	Era        string            `json:"era"`
	TimePeriod string            `json:"time_period"`
	Detail     map[string]string `json:"detail"`
	Guardrails map[string]string `json:"guardrails"`
}

// hasKeys reports whether raw is a JSON object containing every
// required key.
func hasKeys(raw []byte, required []string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	for _, key := range required {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}

// LooksLikeCharacter reports whether raw carries the full character
// key set.
func LooksLikeCharacter(raw []byte) bool {
	return hasKeys(raw, characterKeys)
}

// LooksLikeEnvironment reports whether raw carries the full
// environment key set.
func LooksLikeEnvironment(raw []byte) bool {
	return hasKeys(raw, environmentKeys)
}

// ParseCharacter validates the required key set and unmarshals a
// character profile. Partial profiles are an error.
func ParseCharacter(raw []byte) (*CharacterProfile, error) {
	if !LooksLikeCharacter(raw) {
		return nil, fmt.Errorf("character object does not match expected schema (required keys: %s)", strings.Join(characterKeys, ", "))
	}
	var c CharacterProfile
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}
	return &c, nil
}

// ParseEnvironment validates the required key set and unmarshals an
// environment context.
func ParseEnvironment(raw []byte) (*EnvironmentContext, error) {
	if !LooksLikeEnvironment(raw) {
		return nil, fmt.Errorf("environment object does not match expected schema (required keys: %s)", strings.Join(environmentKeys, ", "))
	}
	var e EnvironmentContext
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment: %w", err)
	}
	return &e, nil
}

// Validate checks field sanity beyond key presence. Used by the
// validate CLI; load paths only require the key set.
func (c *CharacterProfile) Validate() []string {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is blank")
	}
	if strings.TrimSpace(c.Age.String()) == "" {
		problems = append(problems, "age is blank")
	}
	if len(c.Personalities) == 0 {
		problems = append(problems, "personalities list is empty")
	}
	return problems
}

// Validate checks field sanity beyond key presence.
func (e *EnvironmentContext) Validate() []string {
	var problems []string
	if strings.TrimSpace(e.Era) == "" {
		problems = append(problems, "era is blank")
	}
	if strings.TrimSpace(e.TimePeriod) == "" {
		problems = append(problems, "time_period is blank")
	}
	return problems
}
