package constants

import "time"

const (
	// TotalRounds is the number of rounds in a game
	TotalRounds int = 4
	// PlayerSlots is the number of player slots tracked per round
	PlayerSlots int = 4

	// StateKey is the store key holding the persisted game state
	StateKey string = "kurumeWebtoolState"
	// LastVisitKey is the store key holding the last tutorial dismissal in epoch milliseconds
	LastVisitKey string = "kurumeWebtoolLastVisit"

	// TutorialInterval is the inactivity after which the tutorial is shown again
	TutorialInterval time.Duration = 7 * 24 * time.Hour
	// TutorialDelay is how long a UI waits before showing the tutorial
	TutorialDelay time.Duration = 500 * time.Millisecond
)
