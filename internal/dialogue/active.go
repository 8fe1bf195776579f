package dialogue

import (
	"sync/atomic"

	"github.com/novaterra/npc-engine/pkg/npc"
)

// Snapshot is an immutable pairing of the active character and
// environment, tagged with the filenames they were loaded from.
type Snapshot struct {
	Character       *npc.CharacterProfile
	Environment     *npc.EnvironmentContext
	CharacterFile   string
	EnvironmentFile string
}

// Active holds the process-wide active persona. Loads replace the
// whole snapshot; last write wins. A chat turn racing a load may see
// either snapshot, never a torn one.
type Active struct {
	current atomic.Pointer[Snapshot]
}

// Load returns the current snapshot, or nil when nothing is loaded.
func (a *Active) Load() *Snapshot {
	return a.current.Load()
}

// SetCharacter replaces the active character, keeping the current
// environment.
func (a *Active) SetCharacter(c *npc.CharacterProfile, filename string) {
	prev := a.current.Load()
	next := &Snapshot{Character: c, CharacterFile: filename}
	if prev != nil {
		next.Environment = prev.Environment
		next.EnvironmentFile = prev.EnvironmentFile
	}
	a.current.Store(next)
}

// SetEnvironment replaces the active environment, keeping the current
// character.
func (a *Active) SetEnvironment(e *npc.EnvironmentContext, filename string) {
	prev := a.current.Load()
	next := &Snapshot{Environment: e, EnvironmentFile: filename}
	if prev != nil {
		next.Character = prev.Character
		next.CharacterFile = prev.CharacterFile
	}
	a.current.Store(next)
}
