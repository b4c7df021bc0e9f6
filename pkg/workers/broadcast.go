package workers

import (
	"context"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/messages"
)

const (
	// BroadcastChannelSize is the number of state updates buffered for broadcasting
	BroadcastChannelSize = 64
)

// Broadcaster delivers an encoded message to every connected UI.
type Broadcaster interface {
	SendToAll(b []byte)
}

// BroadcastWorker sends every state update to the connected UIs.
type BroadcastWorker struct {
	broadcaster Broadcaster
	updateChan  <-chan *types.GameState
}

type NewBroadcastWorkerOptions struct {
	Broadcaster Broadcaster
	UpdateChan  <-chan *types.GameState
}

func NewBroadcastWorker(opts NewBroadcastWorkerOptions) *BroadcastWorker {
	return &BroadcastWorker{
		broadcaster: opts.Broadcaster,
		updateChan:  opts.UpdateChan,
	}
}

func (w *BroadcastWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case gameState := <-w.updateChan:
			if err := w.broadcast(gameState); err != nil {
				log.Error("Failed to broadcast game state: %v", err)
			}
		}
	}
}

func (w *BroadcastWorker) broadcast(gameState *types.GameState) error {
	payload, err := messages.SerializeGameState(gameState)
	if err != nil {
		return err
	}
	w.broadcaster.SendToAll(payload)
	return nil
}

// NewChannelObserver returns a controller observer that queues updates on ch.
// It never blocks the controller. When ch is full the oldest queued update is
// discarded, so the most recent state is always delivered.
func NewChannelObserver(ch chan *types.GameState) game.Observer {
	return game.ObserverFunc(func(gameState *types.GameState) {
		for {
			select {
			case ch <- gameState:
				return
			default:
			}
			select {
			case <-ch:
				log.Debug("Broadcast channel full, discarding oldest state update")
			default:
			}
		}
	})
}
