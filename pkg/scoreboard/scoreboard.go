package scoreboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	labelStyle   = cellStyle.Copy().Bold(true)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	currentLabel = ">"
)

// Render draws the rounds and totals of a game state as a table.
// Multi mode has one column per player slot. Personal mode labels
// slot 0 as the player and adds a column for the personal score.
func Render(gameState *types.GameState) string {
	if gameState == nil {
		gameState = types.NewGameState()
	}

	rows := make([][]string, 0, constants.TotalRounds+1)
	for i, round := range gameState.Rounds {
		label := fmt.Sprintf("Round %d", i+1)
		if i == gameState.CurrentRound {
			label = currentLabel + " " + label
		}
		row := []string{label}
		if !gameState.IsMultiMode {
			row = append(row, FormatScore(round.PersonalScore))
		}
		for slot := 0; slot < constants.PlayerSlots; slot++ {
			row = append(row, fmt.Sprintf("%s %s", FormatScore(round.PlayerScores[slot]), statusMark(round.PlayerStatuses[slot])))
		}
		rows = append(rows, row)
	}

	total := []string{"Total"}
	if !gameState.IsMultiMode {
		total = append(total, "")
	}
	for _, score := range gameState.PlayerTotalScores {
		total = append(total, FormatScore(score))
	}
	rows = append(rows, total)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers(gameState.IsMultiMode)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return labelStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(Title(gameState)))
	b.WriteString("\n")
	b.WriteString(t.String())
	return b.String()
}

// Title summarizes the mode and the selected round.
func Title(gameState *types.GameState) string {
	mode := "Multiplayer"
	if !gameState.IsMultiMode {
		mode = "Personal"
	}
	return fmt.Sprintf("%s - round %d of %d", mode, gameState.CurrentRound+1, constants.TotalRounds)
}

// FormatScore prints whole scores without a fraction.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func headers(multi bool) []string {
	h := []string{""}
	if !multi {
		h = append(h, "Personal", "You")
	} else {
		h = append(h, "P1")
	}
	for slot := 1; slot < constants.PlayerSlots; slot++ {
		h = append(h, fmt.Sprintf("P%d", slot+1))
	}
	return h
}

func statusMark(status types.Status) string {
	if status == types.StatusRescue {
		return "(rescue)"
	}
	return "(out)"
}
