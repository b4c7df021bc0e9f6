package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/state"
	"github.com/cbodonnell/scorekeeper/pkg/tutorial"
	"github.com/gorilla/mux"
)

type SetRoundRequest struct {
	Round int `json:"round"`
}

type AdjustScoreRequest struct {
	Delta float64 `json:"delta"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type SetModeRequest struct {
	Multi bool `json:"multi"`
}

type TutorialResponse struct {
	Show    bool  `json:"show"`
	DelayMS int64 `json:"delayMs"`
}

func HandleGetState(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stateManager.Get(r.Context()))
	}
}

func HandleSetRound(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &SetRoundRequest{}
		if !decodeJSON(w, r, req) {
			return
		}
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.SetCurrentRound(r.Context(), req.Round)
		}))
	}
}

func HandleAdjustScore(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, ok := parseSlot(w, r)
		if !ok {
			return
		}
		req := &AdjustScoreRequest{}
		if !decodeJSON(w, r, req) {
			return
		}
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.AdjustPlayerScore(r.Context(), slot, req.Delta)
		}))
	}
}

func HandleSetStatus(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, ok := parseSlot(w, r)
		if !ok {
			return
		}
		req := &SetStatusRequest{}
		if !decodeJSON(w, r, req) {
			return
		}
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.SetPlayerStatus(r.Context(), slot, types.Status(req.Status))
		}))
	}
}

func HandleResetProvisional(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.ResetProvisionalScores(r.Context())
		}))
	}
}

func HandleResetAll(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.ResetAllScores(r.Context())
		}))
	}
}

func HandleSetMode(stateManager state.StateManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &SetModeRequest{}
		if !decodeJSON(w, r, req) {
			return
		}
		writeJSON(w, stateManager.Apply(r.Context(), func(c *game.Controller) {
			c.SwitchMode(r.Context(), req.Multi)
		}))
	}
}

func HandleGetTutorial(tracker *tutorial.Tracker, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, &TutorialResponse{
			Show:    tracker.ShouldShow(r.Context(), now()),
			DelayMS: tracker.Delay().Milliseconds(),
		})
	}
}

func HandleDismissTutorial(tracker *tutorial.Tracker, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tracker.Dismiss(r.Context(), now())
		w.WriteHeader(http.StatusNoContent)
	}
}

// parseSlot reads the slot path variable. Out of range slots are passed through,
// the controller treats them as no-ops.
func parseSlot(w http.ResponseWriter, r *http.Request) (int, bool) {
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		log.Debug("failed to parse slot: %v", err)
		http.Error(w, "Failed to parse slot", http.StatusBadRequest)
		return 0, false
	}
	return slot, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug("failed to decode request body: %v", err)
		http.Error(w, "Failed to decode request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
