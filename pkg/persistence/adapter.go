package persistence

import (
	"context"
	"encoding/json"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/repositories"
)

var _ game.Persister = &Adapter{}

// Adapter saves and loads the game state under a single store key.
// A nil store means storage is unavailable and every call is skipped.
type Adapter struct {
	store repositories.Store
	key   string
}

type NewAdapterOptions struct {
	Store repositories.Store
	// Key defaults to constants.StateKey
	Key string
}

func NewAdapter(opts NewAdapterOptions) *Adapter {
	key := opts.Key
	if key == "" {
		key = constants.StateKey
	}
	return &Adapter{
		store: opts.Store,
		key:   key,
	}
}

// Save writes the game state. Failures are logged and otherwise ignored,
// leaving the previously stored value in place.
func (a *Adapter) Save(ctx context.Context, gameState *types.GameState) {
	if a.store == nil || gameState == nil {
		return
	}
	b, err := json.Marshal(gameState)
	if err != nil {
		log.Warn("Failed to encode game state: %v", err)
		return
	}
	if err := a.store.Set(ctx, a.key, string(b)); err != nil {
		log.Warn("Failed to save game state: %v", err)
		return
	}
	log.Trace("Saved game state (%d bytes)", len(b))
}

// Load reads and normalizes the stored game state.
// It returns false when there is nothing usable, in which case the caller keeps its defaults.
// A loaded state is written back immediately so the stored copy is always well-formed.
func (a *Adapter) Load(ctx context.Context) (*types.GameState, bool) {
	if a.store == nil {
		return nil, false
	}
	raw, err := a.store.Get(ctx, a.key)
	if err != nil {
		if !repositories.IsNotFound(err) {
			log.Warn("Failed to load game state: %v", err)
		}
		return nil, false
	}
	gameState, ok := Decode(raw)
	if !ok {
		log.Warn("Ignoring unreadable stored game state")
		return nil, false
	}
	a.Save(ctx, gameState)
	return gameState, true
}
