package types

import "github.com/cbodonnell/scorekeeper/pkg/game/constants"

// RoundState holds the provisional scores and statuses of a single round.
type RoundState struct {
	// PersonalScore is the primary player's score in personal mode
	PersonalScore float64 `json:"personalScore"`
	// PlayerScores holds one provisional score per player slot
	PlayerScores [constants.PlayerSlots]float64 `json:"playerScores"`
	// PlayerStatuses holds one status per player slot
	PlayerStatuses [constants.PlayerSlots]Status `json:"playerStatuses"`
}

func NewRoundState() RoundState {
	r := RoundState{}
	for i := range r.PlayerStatuses {
		r.PlayerStatuses[i] = StatusOut
	}
	return r
}

type GameState struct {
	// CurrentRound indexes Rounds and is always in [0, TotalRounds)
	CurrentRound int `json:"currentRound"`
	// Rounds holds every round of the game
	Rounds [constants.TotalRounds]RoundState `json:"rounds"`
	// PlayerTotalScores is derived from Rounds
	PlayerTotalScores [constants.PlayerSlots]float64 `json:"playerTotalScores"`
	// IsMultiMode selects multiplayer (true) or personal (false) mode
	IsMultiMode bool `json:"isMultiMode"`
}

func NewGameState() *GameState {
	return &GameState{
		CurrentRound: 0,
		Rounds:       NewRounds(),
		IsMultiMode:  true,
	}
}

// NewRounds returns a full set of default rounds.
func NewRounds() [constants.TotalRounds]RoundState {
	var rounds [constants.TotalRounds]RoundState
	for i := range rounds {
		rounds[i] = NewRoundState()
	}
	return rounds
}

// Current returns the round selected by CurrentRound.
func (g *GameState) Current() *RoundState {
	return &g.Rounds[g.CurrentRound]
}

// Copy returns a deep copy of the game state.
// All fields are arrays or scalars so a value copy is sufficient.
func (g *GameState) Copy() *GameState {
	c := *g
	return &c
}

func (g *GameState) Equal(other *GameState) bool {
	if g == nil || other == nil {
		return g == other
	}
	return *g == *other
}
