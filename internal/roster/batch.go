package roster

import (
	"time"

	"github.com/novaterra/npc-engine/pkg/npc"
)

// Relationship is a directed edge between two generated characters.
type Relationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Batch is one roster-generation run: the characters produced for an
// environment plus the relationship graph between them.
type Batch struct {
	ID            string                 `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	Environment   npc.EnvironmentContext `json:"environment"`
	Characters    []npc.CharacterProfile `json:"characters"`
	Relationships []Relationship         `json:"relationships"`
	Failed        int                    `json:"failed,omitempty"`
}
