package persistence

import (
	"math"
	"strconv"
	"strings"

	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/tidwall/gjson"
)

// Decode parses a stored record into a well-formed game state.
// It reports false when raw is not valid JSON or its top-level value is a scalar.
// Every other input is normalized, never rejected.
func Decode(raw string) (*types.GameState, bool) {
	if strings.TrimSpace(raw) == "" || !gjson.Valid(raw) {
		return nil, false
	}
	parsed := gjson.Parse(raw)
	switch {
	case parsed.IsObject():
	case parsed.IsArray():
		// an array has none of the record's fields and migrates like an empty legacy record
		parsed = gjson.Parse("{}")
	default:
		return nil, false
	}

	gameState := &types.GameState{
		PlayerTotalScores: NormalizeScores(parsed.Get("playerTotalScores")),
		CurrentRound:      normalizeRoundIndex(parsed.Get("currentRound")),
		IsMultiMode:       parsed.Get("isMultiMode").Type != gjson.False,
	}

	if rounds := parsed.Get("rounds"); rounds.IsArray() {
		gameState.Rounds = NormalizeRounds(rounds)
	} else {
		// single-round records predate per-round tracking
		gameState.Rounds = types.NewRounds()
		gameState.Rounds[0] = types.RoundState{
			PersonalScore:  NormalizeNumber(parsed.Get("personalScore")),
			PlayerScores:   NormalizeScores(parsed.Get("playerScores")),
			PlayerStatuses: NormalizeStatuses(parsed.Get("playerStatuses")),
		}
		gameState.CurrentRound = 0
	}

	return gameState, true
}

// NormalizeScores returns one finite number per player slot.
func NormalizeScores(v gjson.Result) [constants.PlayerSlots]float64 {
	var scores [constants.PlayerSlots]float64
	if !v.IsArray() {
		return scores
	}
	values := v.Array()
	for i := range scores {
		if i < len(values) {
			scores[i] = NormalizeNumber(values[i])
		}
	}
	return scores
}

// NormalizeStatuses returns one status per player slot.
// Non-array input means every slot is out; inside an array only "out" is out.
func NormalizeStatuses(v gjson.Result) [constants.PlayerSlots]types.Status {
	var statuses [constants.PlayerSlots]types.Status
	if !v.IsArray() {
		for i := range statuses {
			statuses[i] = types.StatusOut
		}
		return statuses
	}
	values := v.Array()
	for i := range statuses {
		statuses[i] = types.StatusRescue
		if i < len(values) && values[i].Type == gjson.String && values[i].Str == string(types.StatusOut) {
			statuses[i] = types.StatusOut
		}
	}
	return statuses
}

func NormalizeRound(v gjson.Result) types.RoundState {
	if !v.IsObject() {
		return types.NewRoundState()
	}
	return types.RoundState{
		PersonalScore:  NormalizeNumber(v.Get("personalScore")),
		PlayerScores:   NormalizeScores(v.Get("playerScores")),
		PlayerStatuses: NormalizeStatuses(v.Get("playerStatuses")),
	}
}

// NormalizeRounds overlays the stored rounds onto a full set of defaults.
// Entries past the last round are ignored.
func NormalizeRounds(v gjson.Result) [constants.TotalRounds]types.RoundState {
	rounds := types.NewRounds()
	if !v.IsArray() {
		return rounds
	}
	values := v.Array()
	for i := range rounds {
		if i < len(values) {
			rounds[i] = NormalizeRound(values[i])
		}
	}
	return rounds
}

// NormalizeNumber converts any JSON value to a finite number, using 0 when it has none.
func NormalizeNumber(v gjson.Result) float64 {
	n := toNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

func normalizeRoundIndex(v gjson.Result) int {
	n := toNumber(v)
	if math.IsNaN(n) || math.Trunc(n) != n || n < 0 || n >= float64(constants.TotalRounds) {
		return 0
	}
	return int(n)
}

// toNumber follows the loose numeric conversion browsers apply to stored values:
// booleans and null convert, strings are parsed, arrays are parsed as their
// joined string form, and anything else is NaN.
func toNumber(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.True:
		return 1
	case gjson.False, gjson.Null:
		if !v.Exists() {
			return math.NaN()
		}
		return 0
	case gjson.String:
		return stringToNumber(v.Str)
	case gjson.JSON:
		if !v.IsArray() {
			return math.NaN()
		}
		return stringToNumber(arrayString(v))
	}
	return math.NaN()
}

// arrayString joins an array the way browsers stringify one:
// elements separated by commas, nested arrays flattened, null as empty
// and objects as "[object Object]".
func arrayString(v gjson.Result) string {
	values := v.Array()
	parts := make([]string, len(values))
	for i, e := range values {
		switch e.Type {
		case gjson.Null:
			parts[i] = ""
		case gjson.True:
			parts[i] = "true"
		case gjson.False:
			parts[i] = "false"
		case gjson.Number:
			parts[i] = strconv.FormatFloat(e.Num, 'g', -1, 64)
		case gjson.String:
			parts[i] = e.Str
		case gjson.JSON:
			if e.IsArray() {
				parts[i] = arrayString(e)
			} else {
				parts[i] = "[object Object]"
			}
		}
	}
	return strings.Join(parts, ",")
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// reject spellings strconv accepts but stored numbers never use
	if strings.ContainsAny(lower, "_inpx") {
		return math.NaN()
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
