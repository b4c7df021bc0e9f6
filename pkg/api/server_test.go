package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/api/handlers"
	"github.com/cbodonnell/scorekeeper/pkg/game"
	"github.com/cbodonnell/scorekeeper/pkg/game/constants"
	"github.com/cbodonnell/scorekeeper/pkg/game/types"
	"github.com/cbodonnell/scorekeeper/pkg/messages"
	"github.com/cbodonnell/scorekeeper/pkg/network"
	"github.com/cbodonnell/scorekeeper/pkg/persistence"
	"github.com/cbodonnell/scorekeeper/pkg/repositories"
	"github.com/cbodonnell/scorekeeper/pkg/state"
	"github.com/cbodonnell/scorekeeper/pkg/tutorial"
	"github.com/cbodonnell/scorekeeper/pkg/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

const testAllowedOrigin = "http://localhost:3000"

type testEnv struct {
	handler     http.Handler
	store       *repositories.MemoryStore
	subscribers *network.SubscriberManager
	now         time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:       repositories.NewMemoryStore(),
		subscribers: network.NewSubscriberManager(),
		now:         time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	updates := make(chan *types.GameState, workers.BroadcastChannelSize)
	go workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		Broadcaster: env.subscribers,
		UpdateChan:  updates,
	}).Start(ctx)

	adapter := persistence.NewAdapter(persistence.NewAdapterOptions{Store: env.store})
	controller := game.NewController(game.NewControllerOptions{
		Persister: adapter,
		Observers: []game.Observer{workers.NewChannelObserver(updates)},
	})
	env.handler = NewRouter(NewAPIServerOptions{
		StateManager: state.NewControllerStateManager(controller),
		Tracker:      tutorial.NewTracker(tutorial.NewTrackerOptions{Store: env.store}),
		Subscribers:  env.subscribers,

		AllowedOrigins: []string{testAllowedOrigin},
		Now:            func() time.Time { return env.now },
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return e.doFrom(t, "", method, path, body)
}

func (e *testEnv) doFrom(t *testing.T, origin, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) *types.GameState {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	s := &types.GameState{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), s))
	return s
}

func TestAPI_GetState(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/state", "")

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, types.NewGameState(), decodeState(t, rec))
}

func TestAPI_Mutations(t *testing.T) {
	env := newTestEnv(t)

	s := decodeState(t, env.do(t, http.MethodPut, "/api/round", `{"round":1}`))
	assert.Equal(t, 1, s.CurrentRound)

	s = decodeState(t, env.do(t, http.MethodPut, "/api/players/3/status", `{"status":"rescue"}`))
	assert.Equal(t, types.StatusRescue, s.Rounds[1].PlayerStatuses[3])

	s = decodeState(t, env.do(t, http.MethodPost, "/api/players/3/score", `{"delta":5}`))
	s = decodeState(t, env.do(t, http.MethodPost, "/api/players/3/score", `{"delta":-1}`))
	assert.Equal(t, 4.0, s.Rounds[1].PlayerScores[3])
	assert.Equal(t, [constants.PlayerSlots]float64{0, 0, 0, 4}, s.PlayerTotalScores)

	s = decodeState(t, env.do(t, http.MethodPost, "/api/reset/provisional", ""))
	assert.Equal(t, [constants.PlayerSlots]float64{}, s.Rounds[1].PlayerScores)
	assert.Equal(t, types.StatusRescue, s.Rounds[1].PlayerStatuses[3])

	s = decodeState(t, env.do(t, http.MethodPut, "/api/mode", `{"multi":false}`))
	assert.False(t, s.IsMultiMode)
	assert.Equal(t, 0, s.CurrentRound)
	assert.Equal(t, types.NewRounds(), s.Rounds)

	env.do(t, http.MethodPut, "/api/round", `{"round":2}`)
	s = decodeState(t, env.do(t, http.MethodPost, "/api/reset/all", ""))
	assert.Equal(t, 0, s.CurrentRound)
	assert.False(t, s.IsMultiMode)

	// the store holds what the API last returned
	raw, err := env.store.Get(context.Background(), constants.StateKey)
	require.NoError(t, err)
	stored, ok := persistence.Decode(raw)
	require.True(t, ok)
	assert.Equal(t, s, stored)
}

func TestAPI_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "malformed body", method: http.MethodPut, path: "/api/round", body: `{"round":`, wantCode: http.StatusBadRequest},
		{name: "non numeric slot", method: http.MethodPost, path: "/api/players/abc/score", body: `{"delta":1}`, wantCode: http.StatusBadRequest},
		{name: "out of range round is a no-op", method: http.MethodPut, path: "/api/round", body: `{"round":9}`, wantCode: http.StatusOK},
		{name: "out of range slot is a no-op", method: http.MethodPost, path: "/api/players/7/score", body: `{"delta":1}`, wantCode: http.StatusOK},
		{name: "wrong method", method: http.MethodDelete, path: "/api/state", wantCode: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	assert.Equal(t, types.NewGameState(), decodeState(t, env.do(t, http.MethodGet, "/api/state", "")))
	assert.Equal(t, 0, env.store.Writes())
}

func TestAPI_OriginChecks(t *testing.T) {
	tests := []struct {
		name       string
		origin     string
		method     string
		path       string
		body       string
		wantCode   int
		wantCORS   string
		wantWrites int
	}{
		{name: "foreign reset", origin: "https://evil.example", method: http.MethodPost, path: "/api/reset/all", wantCode: http.StatusForbidden},
		{name: "foreign round change", origin: "https://evil.example", method: http.MethodPut, path: "/api/round", body: `{"round":2}`, wantCode: http.StatusForbidden},
		{name: "foreign preflight", origin: "https://evil.example", method: http.MethodOptions, path: "/api/round", wantCode: http.StatusForbidden},
		{name: "foreign read gets no cors", origin: "https://evil.example", method: http.MethodGet, path: "/api/state", wantCode: http.StatusOK},
		{name: "allowed origin", origin: testAllowedOrigin, method: http.MethodPut, path: "/api/round", body: `{"round":2}`, wantCode: http.StatusOK, wantCORS: testAllowedOrigin, wantWrites: 1},
		{name: "allowed preflight", origin: testAllowedOrigin, method: http.MethodOptions, path: "/api/round", wantCode: http.StatusNoContent, wantCORS: testAllowedOrigin},
		{name: "same origin", origin: "http://example.com", method: http.MethodPost, path: "/api/reset/all", wantCode: http.StatusOK, wantWrites: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.doFrom(t, tt.origin, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCORS, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantWrites, env.store.Writes())
		})
	}
}

func TestAPI_Tutorial(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/tutorial", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := &handlers.TutorialResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), got))
	assert.True(t, got.Show)
	assert.Equal(t, int64(500), got.DelayMS)

	rec = env.do(t, http.MethodPost, "/api/tutorial/dismiss", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tutorial", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), got))
	assert.False(t, got.Show)

	env.now = env.now.Add(constants.TutorialInterval)
	rec = env.do(t, http.MethodGet, "/api/tutorial", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), got))
	assert.True(t, got.Show)
}

func TestAPI_GzipResponses(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.Bytes()
	if rec.Header().Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err = io.ReadAll(zr)
		require.NoError(t, err)
	}
	s := &types.GameState{}
	require.NoError(t, json.Unmarshal(body, s))
	assert.Equal(t, types.NewGameState(), s)
}

func TestAPI_WebsocketReceivesUpdates(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, b, err := conn.Read(ctx)
	require.NoError(t, err)
	initial, err := messages.DeserializeGameState(b)
	require.NoError(t, err)
	assert.Equal(t, types.NewGameState(), initial)

	require.Eventually(t, func() bool { return env.subscribers.Count() == 1 }, time.Second, 10*time.Millisecond)
	want := decodeState(t, env.do(t, http.MethodPut, "/api/round", `{"round":3}`))

	_, b, err = conn.Read(ctx)
	require.NoError(t, err)
	got, err := messages.DeserializeGameState(b)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 3, got.CurrentRound)
}
