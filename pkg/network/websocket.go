package network

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/log"
	"nhooyr.io/websocket"
)

const (
	// WriteTimeout bounds a single websocket write
	WriteTimeout = 5 * time.Second
)

// InitialMessageFunc returns the message sent to a subscriber right after it connects.
type InitialMessageFunc func(ctx context.Context) ([]byte, error)

type NewWebsocketHandlerOptions struct {
	Manager *SubscriberManager
	// Initial, when set, builds the first message sent to a new subscriber
	Initial InitialMessageFunc
	// OriginPatterns are the cross-origin hosts allowed to connect.
	// Same-host and Origin-less handshakes are always accepted.
	OriginPatterns []string
}

// NewWebsocketHandler upgrades requests to websockets and streams messages queued
// on the subscriber manager. Messages from the client are ignored.
func NewWebsocketHandler(opts NewWebsocketHandlerOptions) http.HandlerFunc {
	manager := opts.Manager
	initial := opts.Initial
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "")

		subscriber := manager.Add()
		defer manager.Remove(subscriber.ID)
		log.Debug("New WebSocket subscriber %s from %s", subscriber.ID, r.RemoteAddr)

		// CloseRead discards client messages and cancels ctx when the peer goes away
		ctx := conn.CloseRead(r.Context())

		if initial != nil {
			b, err := initial(ctx)
			if err != nil {
				log.Error("Failed to build initial message for %s: %v", subscriber.ID, err)
				conn.Close(websocket.StatusInternalError, "failed to build initial state")
				return
			}
			if err := write(ctx, conn, b); err != nil {
				log.Debug("Failed to write initial message to %s: %v", subscriber.ID, err)
				return
			}
		}

		for {
			select {
			case <-ctx.Done():
				log.Trace("Connection closed for %s", subscriber.ID)
				return
			case b, ok := <-subscriber.send:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := write(ctx, conn, b); err != nil {
					if !errors.Is(err, context.Canceled) {
						log.Debug("Failed to write to %s: %v", subscriber.ID, err)
					}
					return
				}
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, b []byte) error {
	ctx, cancel := context.WithTimeout(ctx, WriteTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, b)
}
