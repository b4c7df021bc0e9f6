package game

import (
	"context"
	"math"

	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/log"
)

// Persister writes the game state to durable storage.
// Implementations handle their own failures; a failed save must not affect the caller.
type Persister interface {
	Save(ctx context.Context, gameState *types.GameState)
}

// Observer is notified with a copy of the state after every change.
// This is the hook UI consumers use to re-render.
type Observer interface {
	Refresh(gameState *types.GameState)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(gameState *types.GameState)

func (f ObserverFunc) Refresh(gameState *types.GameState) {
	f(gameState)
}

// Controller owns the game state and is its only mutation surface.
// It is not safe for concurrent use.
type Controller struct {
	gameState *types.GameState
	persister Persister
	observers []Observer
}

type NewControllerOptions struct {
	// Persister is optional; without one the state lives in memory only
	Persister Persister
	Observers []Observer
}

// NewController creates a Controller holding the default game state.
func NewController(opts NewControllerOptions) *Controller {
	return &Controller{
		gameState: types.NewGameState(),
		persister: opts.Persister,
		observers: opts.Observers,
	}
}

// AddObserver registers an observer for subsequent changes.
func (c *Controller) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// State returns a copy of the current game state.
func (c *Controller) State() *types.GameState {
	return c.gameState.Copy()
}

// Restore replaces the game state with a previously loaded one and refreshes observers.
// It does not persist, the loader is responsible for that.
func (c *Controller) Restore(gameState *types.GameState) {
	if gameState == nil {
		return
	}
	c.gameState = gameState.Copy()
	if !validRound(c.gameState.CurrentRound) {
		c.gameState.CurrentRound = 0
	}
	c.RecalculateTotals()
	c.notify()
}

// Save persists the current state.
func (c *Controller) Save(ctx context.Context) {
	if c.persister == nil {
		return
	}
	c.persister.Save(ctx, c.gameState.Copy())
}

func (c *Controller) SetCurrentRound(ctx context.Context, index int) {
	if !validRound(index) {
		log.Debug("Ignoring invalid round index %d", index)
		return
	}
	c.gameState.CurrentRound = index
	c.commit(ctx)
}

// AdjustPlayerScore adds delta to the slot's provisional score in the current round.
// Both display modes share the same score array.
func (c *Controller) AdjustPlayerScore(ctx context.Context, slot int, delta float64) {
	if !validSlot(slot) {
		log.Debug("Ignoring score change for invalid slot %d", slot)
		return
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		log.Debug("Ignoring non-finite score change for slot %d", slot)
		return
	}
	next := c.gameState.Current().PlayerScores[slot] + delta
	if math.IsInf(next, 0) {
		log.Debug("Ignoring score change that overflows slot %d", slot)
		return
	}
	c.gameState.Current().PlayerScores[slot] = next
	c.commit(ctx)
}

// SetPlayerStatus sets the slot's status in the current round.
// Unchanged statuses short-circuit without persisting or refreshing.
func (c *Controller) SetPlayerStatus(ctx context.Context, slot int, status types.Status) {
	if !validSlot(slot) {
		log.Debug("Ignoring status change for invalid slot %d", slot)
		return
	}
	next := types.ParseStatus(string(status))
	round := c.gameState.Current()
	if round.PlayerStatuses[slot] == next {
		return
	}
	round.PlayerStatuses[slot] = next
	c.commit(ctx)
}

// ResetProvisionalScores zeroes the current round's scores for the active mode.
func (c *Controller) ResetProvisionalScores(ctx context.Context) {
	round := c.gameState.Current()
	if c.gameState.IsMultiMode {
		for i := range round.PlayerScores {
			round.PlayerScores[i] = 0
		}
	} else {
		round.PersonalScore = 0
	}
	c.commit(ctx)
}

func (c *Controller) ResetAllScores(ctx context.Context) {
	c.resetAll()
	c.commit(ctx)
}

// SwitchMode changes the display mode. Any switch discards all progress.
func (c *Controller) SwitchMode(ctx context.Context, toMulti bool) {
	if c.gameState.IsMultiMode == toMulti {
		return
	}
	c.resetAll()
	c.gameState.IsMultiMode = toMulti
	log.Info("Switched to %s mode", modeName(toMulti))
	c.commit(ctx)
}

// RecalculateTotals derives the player totals from the rounds.
func (c *Controller) RecalculateTotals() {
	c.gameState.PlayerTotalScores = CalculateTotals(c.gameState.Rounds)
}

// CalculateTotals sums each slot's non-negative scores over the rounds in which it was rescued.
// Slot 0 also carries the personal score of every round, regardless of status.
func CalculateTotals(rounds [constants.TotalRounds]types.RoundState) [constants.PlayerSlots]float64 {
	var totals [constants.PlayerSlots]float64
	for _, round := range rounds {
		for i := 0; i < constants.PlayerSlots; i++ {
			if round.PlayerStatuses[i] == types.StatusRescue {
				totals[i] = addFinite(totals[i], nonNegative(round.PlayerScores[i]))
			}
		}
		totals[0] = addFinite(totals[0], nonNegative(round.PersonalScore))
	}
	return totals
}

func (c *Controller) resetAll() {
	c.gameState.Rounds = types.NewRounds()
	c.gameState.PlayerTotalScores = [constants.PlayerSlots]float64{}
	c.gameState.CurrentRound = 0
}

func (c *Controller) commit(ctx context.Context) {
	c.RecalculateTotals()
	c.Save(ctx)
	c.notify()
}

func (c *Controller) notify() {
	for _, o := range c.observers {
		o.Refresh(c.gameState.Copy())
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// addFinite adds v to total, saturating at the largest finite value.
func addFinite(total, v float64) float64 {
	sum := total + v
	if math.IsInf(sum, 1) {
		return math.MaxFloat64
	}
	return sum
}

func validRound(index int) bool {
	return index >= 0 && index < constants.TotalRounds
}

func validSlot(slot int) bool {
	return slot >= 0 && slot < constants.PlayerSlots
}

func modeName(multi bool) string {
	if multi {
		return "multi"
	}
	return "personal"
}
