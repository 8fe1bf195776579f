package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novaterra/npc-engine/internal/services"
	"github.com/novaterra/npc-engine/pkg/chat"
	"github.com/novaterra/npc-engine/pkg/extract"
	"github.com/novaterra/npc-engine/pkg/prompts"
	"github.com/novaterra/npc-engine/pkg/textfilter"
)

// memoryQueryResults is how many documents the memory store is asked
// for per turn; FilterMemories narrows the set further.
const memoryQueryResults = 5

// Orchestrator runs one dialogue turn end to end: memory lookup,
// prompt assembly, provider call, extraction, and best-effort
// persistence.
type Orchestrator struct {
	active   *Active
	provider services.CompletionService
	memory   services.MemoryStore
	filter   *textfilter.DialogueFilter
	logger   *slog.Logger
}

// NewOrchestrator creates a dialogue orchestrator. The memory store
// may be nil, in which case turns run without memory context or
// persistence.
func NewOrchestrator(active *Active, provider services.CompletionService, memory services.MemoryStore, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		active:   active,
		provider: provider,
		memory:   memory,
		filter:   textfilter.NewDialogueFilter(),
		logger:   logger,
	}
}

// Active returns the persona register so load handlers can swap
// characters and environments.
func (o *Orchestrator) Active() *Active {
	return o.active
}

// Chat runs a single conversation turn. Memory failures degrade to an
// empty context; provider failures are fatal for the turn.
func (o *Orchestrator) Chat(ctx context.Context, req *chat.ChatRequest) (*chat.ChatResponse, error) {
	start := time.Now()

	snap := o.active.Load()
	if snap == nil || snap.Character == nil {
		return nil, fmt.Errorf("character context not loaded")
	}
	character := snap.Character
	collection := character.CollectionName()

	memories := o.queryMemories(ctx, collection, req.Message)

	prompt, err := prompts.BuildPrompt(character, snap.Environment, memories, req.Turns(), req.Message)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	raw, err := o.provider.Complete(ctx, services.CompletionRequest{
		Prompt: prompt,
		Stop:   prompts.StopSequences(character.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("error generating response: %w", err)
	}
	raw = strings.TrimSpace(raw)

	response := extract.Response(raw)
	if len(response) < extract.MinResponseLen {
		// Defensive re-run on the same raw text, then fall back to
		// the trimmed provider output unmodified.
		response = extract.Response(raw)
		if len(response) < extract.MinResponseLen {
			response = raw
		}
	}

	if snap.Environment != nil && textfilter.GuardrailsRequireFilter(snap.Environment.Guardrails) {
		response = o.filter.Filter(response)
	}

	o.persist(ctx, collection, response)

	return &chat.ChatResponse{
		Response:  response,
		TimeTaken: time.Since(start).Seconds(),
	}, nil
}

// queryMemories retrieves and filters past conversation documents.
// Any store failure degrades to no memory context.
func (o *Orchestrator) queryMemories(ctx context.Context, collection, message string) []string {
	if o.memory == nil {
		return nil
	}
	docs, err := o.memory.Query(ctx, collection, message, memoryQueryResults)
	if err != nil {
		o.logger.Warn("Memory query failed, continuing without memory", "collection", collection, "error", err)
		return nil
	}
	return extract.FilterMemories(docs)
}

// persist stores a clean response in the character's memory
// collection. Failures are logged and swallowed.
func (o *Orchestrator) persist(ctx context.Context, collection, response string) {
	if o.memory == nil {
		return
	}
	if len(response) <= extract.MinResponseLen || len(response) >= extract.PersistMaxLen {
		return
	}
	if extract.IsPolluted(response, extract.PersistMaxLen) {
		return
	}

	doc := services.MemoryDocument{
		ID:   uuid.New().String(),
		Text: response,
		Time: float64(time.Now().UnixMilli()) / 1000,
	}
	if err := o.memory.Add(ctx, collection, []services.MemoryDocument{doc}); err != nil {
		o.logger.Warn("Failed to persist response to memory", "collection", collection, "error", err)
	}
}

// ClearHistory removes every stored document in the active
// character's memory collection. Store failures are reported in the
// result, never as an error.
func (o *Orchestrator) ClearHistory(ctx context.Context) (*chat.ClearHistoryResponse, error) {
	snap := o.active.Load()
	if snap == nil || snap.Character == nil {
		return nil, fmt.Errorf("character context not loaded")
	}
	name := snap.Character.Name
	collection := snap.Character.CollectionName()

	if o.memory == nil {
		return &chat.ClearHistoryResponse{
			Message: "Memory store is not configured.",
			Success: false,
		}, nil
	}

	ids, err := o.memory.GetIDs(ctx, collection)
	if err != nil {
		return &chat.ClearHistoryResponse{
			Message: fmt.Sprintf("Error connecting to memory store: %v", err),
			Success: false,
		}, nil
	}

	if len(ids) == 0 {
		return &chat.ClearHistoryResponse{
			Message: fmt.Sprintf("No history found for %s.", name),
			Success: true,
		}, nil
	}

	if err := o.memory.Delete(ctx, collection, ids); err != nil {
		return &chat.ClearHistoryResponse{
			Message: fmt.Sprintf("Error clearing history: %v", err),
			Success: false,
		}, nil
	}

	return &chat.ClearHistoryResponse{
		Message: fmt.Sprintf("Cleared conversation history for %s.", name),
		Success: true,
	}, nil
}
