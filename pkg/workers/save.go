package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/state"
)

// SaveGameStateWorker writes the game state one last time when the process shuts down.
// Every mutation is already persisted as it happens; this covers teardown.
type SaveGameStateWorker struct {
	stateManager state.StateManager
	timeout      time.Duration
	done         chan struct{}
}

type NewSaveGameStateWorkerOptions struct {
	StateManager state.StateManager
	// Timeout bounds the final save, defaults to 5 seconds
	Timeout time.Duration
}

func NewSaveGameStateWorker(opts NewSaveGameStateWorkerOptions) *SaveGameStateWorker {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SaveGameStateWorker{
		stateManager: opts.StateManager,
		timeout:      timeout,
		done:         make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled, then flushes the game state.
func (w *SaveGameStateWorker) Start(ctx context.Context) {
	defer close(w.done)
	<-ctx.Done()

	saveCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	log.Info("Saving game state before shutdown")
	w.stateManager.Flush(saveCtx)
}

// Done is closed once the final save has completed.
func (w *SaveGameStateWorker) Done() <-chan struct{} {
	return w.done
}
