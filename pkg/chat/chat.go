package chat

import "fmt"

// ChatRequest represents a chat message request made by the player
// to the npc-engine api. History entries are [player, character] pairs,
// oldest first.
type ChatRequest struct {
	Message string     `json:"message"`
	History [][]string `json:"history,omitempty"`
}

// ChatResponse represents a chat message response returned by the
// npc-engine api.
type ChatResponse struct {
	Response  string  `json:"response"`
	TimeTaken float64 `json:"time_taken"`
	Error     string  `json:"error,omitempty"`
}

// ClearHistoryResponse reports the outcome of a clear-history request.
// A clear against an empty collection is a success, not an error.
type ClearHistoryResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// Turn is a single (player utterance, character utterance) exchange.
type Turn struct {
	Player    string
	Character string
}

func (cr *ChatRequest) Validate() error {
	if cr.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// Turns converts the raw history pairs into Turns. Entries with fewer
// than two elements are skipped rather than rejected; clients send
// whatever their UI framework accumulated.
func (cr *ChatRequest) Turns() []Turn {
	turns := make([]Turn, 0, len(cr.History))
	for _, entry := range cr.History {
		if len(entry) < 2 {
			continue
		}
		turns = append(turns, Turn{Player: entry[0], Character: entry[1]})
	}
	return turns
}
