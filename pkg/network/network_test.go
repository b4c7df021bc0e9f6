package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestSubscriberManager(t *testing.T) {
	m := NewSubscriberManager()
	a := m.Add()
	b := m.Add()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Count())

	m.SendToAll([]byte("update"))
	assert.Equal(t, []byte("update"), <-a.send)
	assert.Equal(t, []byte("update"), <-b.send)

	assert.True(t, m.Send(a.ID, []byte("only a")))
	assert.Equal(t, []byte("only a"), <-a.send)

	m.Remove(a.ID)
	m.Remove(a.ID)
	assert.Equal(t, 1, m.Count())
	_, ok := <-a.send
	assert.False(t, ok, "send channel is closed on removal")
	assert.False(t, m.Send(a.ID, []byte("gone")))
}

func TestSubscriberManager_SlowSubscriberKeepsLatest(t *testing.T) {
	m := NewSubscriberManager()
	s := m.Add()

	total := SubscriberBufferSize + 5
	for i := 0; i < total; i++ {
		m.SendToAll([]byte(strconv.Itoa(i)))
	}
	require.Len(t, s.send, SubscriberBufferSize)

	var pending []string
	for len(s.send) > 0 {
		pending = append(pending, string(<-s.send))
	}
	assert.Equal(t, strconv.Itoa(total-SubscriberBufferSize), pending[0], "oldest updates are discarded first")
	assert.Equal(t, strconv.Itoa(total-1), pending[len(pending)-1], "the latest update is kept")

	assert.True(t, m.Send(s.ID, []byte("direct")))
	for i := 0; i < SubscriberBufferSize; i++ {
		m.SendToAll([]byte("filler"))
	}
	assert.True(t, m.Send(s.ID, []byte("last")))
	var last []byte
	for len(s.send) > 0 {
		last = <-s.send
	}
	assert.Equal(t, []byte("last"), last)
}

func TestWebsocketHandler(t *testing.T) {
	m := NewSubscriberManager()
	server := httptest.NewServer(NewWebsocketHandler(NewWebsocketHandlerOptions{
		Manager: m,
		Initial: func(ctx context.Context) ([]byte, error) {
			return []byte(`{"initial":true}`), nil
		},
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, b, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"initial":true}`, string(b))

	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 10*time.Millisecond)
	m.SendToAll([]byte(`{"currentRound":2}`))

	_, b, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentRound":2}`, string(b))

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebsocketHandler_RejectsForeignOrigin(t *testing.T) {
	m := NewSubscriberManager()
	server := httptest.NewServer(NewWebsocketHandler(NewWebsocketHandlerOptions{
		Manager:        m,
		OriginPatterns: []string{"localhost:3000"},
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	_, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://evil.example"}},
	})
	assert.Error(t, err)

	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"http://localhost:3000"}},
	})
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}
