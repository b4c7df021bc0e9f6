package messages

import "encoding/json"

// Message types
const (
	MessageTypeServerGameUpdate = "state"
)

// Message is the envelope of everything sent to connected UIs.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
