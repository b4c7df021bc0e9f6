package state

import (
	"context"
	"sync"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
)

var _ StateManager = &ControllerStateManager{}

// ControllerStateManager serializes access to a single Controller.
// The controller assumes one caller at a time; handlers on many goroutines go through here.
type ControllerStateManager struct {
	lock       sync.Mutex
	controller *game.Controller
}

func NewControllerStateManager(controller *game.Controller) *ControllerStateManager {
	return &ControllerStateManager{
		controller: controller,
	}
}

func (m *ControllerStateManager) Get(ctx context.Context) *types.GameState {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.controller.State()
}

func (m *ControllerStateManager) Apply(ctx context.Context, fn func(c *game.Controller)) *types.GameState {
	m.lock.Lock()
	defer m.lock.Unlock()
	fn(m.controller)
	return m.controller.State()
}

func (m *ControllerStateManager) Flush(ctx context.Context) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.controller.Save(ctx)
}
