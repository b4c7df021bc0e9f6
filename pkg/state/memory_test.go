package state

import (
	"context"
	"sync"
	"testing"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/stretchr/testify/assert"
)

type countingPersister struct {
	lock  sync.Mutex
	saves int
}

func (p *countingPersister) Save(ctx context.Context, gameState *types.GameState) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.saves++
}

func TestControllerStateManager_ConcurrentApply(t *testing.T) {
	ctx := context.Background()
	p := &countingPersister{}
	m := NewControllerStateManager(game.NewController(game.NewControllerOptions{Persister: p}))
	m.Apply(ctx, func(c *game.Controller) {
		c.SetPlayerStatus(ctx, 1, types.StatusRescue)
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Apply(ctx, func(c *game.Controller) {
				c.AdjustPlayerScore(ctx, 1, 1)
			})
			_ = m.Get(ctx)
		}()
	}
	wg.Wait()

	got := m.Get(ctx)
	assert.Equal(t, 100.0, got.Rounds[0].PlayerScores[1])
	assert.Equal(t, 100.0, got.PlayerTotalScores[1])
	assert.Equal(t, 101, p.saves)

	m.Flush(ctx)
	assert.Equal(t, 102, p.saves)
}

func TestControllerStateManager_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewControllerStateManager(game.NewController(game.NewControllerOptions{}))

	got := m.Get(ctx)
	got.CurrentRound = 3
	got.Rounds[0].PlayerScores[0] = 50

	assert.Equal(t, types.NewGameState(), m.Get(ctx))
}

func TestControllerStateManager_ApplyReturnsResult(t *testing.T) {
	ctx := context.Background()
	m := NewControllerStateManager(game.NewController(game.NewControllerOptions{}))

	got := m.Apply(ctx, func(c *game.Controller) {
		c.SwitchMode(ctx, false)
	})
	assert.False(t, got.IsMultiMode)
}
