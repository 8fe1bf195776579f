package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/novaterra/npc-engine/internal/services"
	"github.com/novaterra/npc-engine/pkg/npc"
)

const (
	// maxConcurrentGenerations bounds the character-sheet fan-out.
	maxConcurrentGenerations = 5

	systemPrompt = "You are a creative team designing NPC characters based upon a given environment prompt and output in a json format"
)

// Generator produces character rosters for an environment using a
// JSON-mode chat completion provider.
type Generator struct {
	svc    services.ChatCompletionService
	logger *slog.Logger
	rng    *rand.Rand

	mu sync.Mutex // guards rng
}

// NewGenerator creates a roster generator.
func NewGenerator(svc services.ChatCompletionService, logger *slog.Logger) *Generator {
	return &Generator{
		svc:    svc,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func environmentPrompt(env *npc.EnvironmentContext) string {
	details := make([]string, 0, len(env.Detail))
	for k, v := range env.Detail {
		details = append(details, fmt.Sprintf("%s: %s", k, v))
	}
	return fmt.Sprintf("Era: %s, Time Period: %s, Detail: %s\n\n", env.Era, env.TimePeriod, strings.Join(details, "; "))
}

// GenerateNames asks the provider for n distinct character names that
// fit the environment.
func (g *Generator) GenerateNames(ctx context.Context, env *npc.EnvironmentContext, n int) ([]string, error) {
	prompt := environmentPrompt(env) +
		fmt.Sprintf("Given the description of this environment, create %d unique names that don't repeat for NPCs in that environment. Output a JSON object with a \"names\" list.", n)

	out, err := g.svc.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("name generation failed: %w", err)
	}

	names, err := parseNames(out, n)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated names: %w", err)
	}
	return names, nil
}

// parseNames extracts a string list from the model's JSON object. The
// model is not reliable about the key it uses, so any list-of-strings
// value is accepted.
func parseNames(raw string, n int) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}

	var names []string
	if list, ok := obj["names"]; ok {
		if err := json.Unmarshal(list, &names); err != nil {
			return nil, fmt.Errorf("names key is not a string list: %w", err)
		}
	} else {
		for _, v := range obj {
			var list []string
			if err := json.Unmarshal(v, &list); err == nil && len(list) > 0 {
				names = list
				break
			}
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no name list found in response")
	}
	if len(names) > n {
		names = names[:n]
	}
	return names, nil
}

func (g *Generator) samplePersonalities() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return SamplePersonalities(g.rng)
}

// generateCharacter produces one full character sheet for an assigned
// name and personality set.
func (g *Generator) generateCharacter(ctx context.Context, env *npc.EnvironmentContext, name string, personalities []string) (*npc.CharacterProfile, error) {
	var prompt strings.Builder
	prompt.WriteString(environmentPrompt(env))
	for _, example := range fewShotExamples {
		prompt.WriteString(example)
		prompt.WriteString("\n\n")
	}
	prompt.WriteString("Create a new character profile that fits in this environment. ")
	prompt.WriteString(fmt.Sprintf("The character is named %q and has the personalities [%s]. ", name, strings.Join(personalities, ", ")))
	prompt.WriteString("Output a single JSON object with exactly the keys shown in the examples.")

	out, err := g.svc.CompleteJSON(ctx, systemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("character generation failed for %s: %w", name, err)
	}

	character, err := npc.ParseCharacter([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("generated character %s is invalid: %w", name, err)
	}
	return character, nil
}

// Generate runs the full roster pipeline: names, then a bounded
// fan-out of character-sheet generations, then the relationship graph.
// Individual character failures are logged and excluded from the
// batch; the batch fails only if every character fails.
func (g *Generator) Generate(ctx context.Context, env *npc.EnvironmentContext, n int) (*Batch, error) {
	if n <= 0 {
		return nil, fmt.Errorf("character count must be positive")
	}

	names, err := g.GenerateNames(ctx, env, n)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	characters := make([]npc.CharacterProfile, 0, len(names))
	failed := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentGenerations)
	for _, name := range names {
		personalities := g.samplePersonalities()
		eg.Go(func() error {
			character, err := g.generateCharacter(egCtx, env, name, personalities)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.logger.Warn("Character generation failed", "name", name, "error", err)
				failed++
				return nil
			}
			characters = append(characters, *character)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(characters) == 0 {
		return nil, fmt.Errorf("all %d character generations failed", len(names))
	}

	generated := make([]string, 0, len(characters))
	for _, c := range characters {
		generated = append(generated, c.Name)
	}
	relationships, err := g.RelationshipGraph(ctx, env, generated)
	if err != nil {
		g.logger.Warn("Relationship graph generation failed", "error", err)
		relationships = nil
	}

	return &Batch{
		ID:            uuid.New().String(),
		CreatedAt:     time.Now().UTC(),
		Environment:   *env,
		Characters:    characters,
		Relationships: relationships,
		Failed:        failed,
	}, nil
}

// RelationshipGraph asks the provider for pairwise relationships
// between the named characters.
func (g *Generator) RelationshipGraph(ctx context.Context, env *npc.EnvironmentContext, names []string) ([]Relationship, error) {
	if len(names) < 2 {
		return nil, nil
	}

	prompt := environmentPrompt(env) +
		fmt.Sprintf("These NPCs live in the environment above: [%s]. Describe the relationships between them. Output a JSON object with a \"relationships\" list, each entry an object with \"from\", \"to\" and \"type\" keys.", strings.Join(names, ", "))

	out, err := g.svc.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("relationship generation failed: %w", err)
	}

	var resp struct {
		Relationships []Relationship `json:"relationships"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return resp.Relationships, nil
}
