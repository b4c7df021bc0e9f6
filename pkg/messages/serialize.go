package messages

import (
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/scorekeeper/pkg/game/types"
)

func SerializeMessage(m *Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %v", err)
	}
	return b, nil
}

func DeserializeMessage(data []byte) (*Message, error) {
	m := &Message{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}
	return m, nil
}

// SerializeGameState wraps the game state in a game update message.
func SerializeGameState(gameState *types.GameState) ([]byte, error) {
	payload, err := json.Marshal(gameState)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize game state: %v", err)
	}
	return SerializeMessage(&Message{
		Type:    MessageTypeServerGameUpdate,
		Payload: payload,
	})
}

// DeserializeGameState reads a game update message.
func DeserializeGameState(data []byte) (*types.GameState, error) {
	m, err := DeserializeMessage(data)
	if err != nil {
		return nil, err
	}
	if m.Type != MessageTypeServerGameUpdate {
		return nil, fmt.Errorf("unexpected message type %q", m.Type)
	}
	gameState := &types.GameState{}
	if err := json.Unmarshal(m.Payload, gameState); err != nil {
		return nil, fmt.Errorf("failed to deserialize game state: %v", err)
	}
	return gameState, nil
}
