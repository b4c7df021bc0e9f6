package state

import (
	"context"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
)

// StateManager provides shared access to the game state.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current game state.
	Get(ctx context.Context) *types.GameState
	// Apply runs fn against the controller and returns a copy of the resulting state.
	Apply(ctx context.Context, fn func(c *game.Controller)) *types.GameState
	// Flush persists the current game state.
	Flush(ctx context.Context)
}
