package websocket

import (
	"encoding/json"
	"time"

	"rewear/pkg/logger"
)

const (
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage answers keepalive pings. The socket is push-only otherwise.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage
	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		m.sendToClient(client, errorMessage("Invalid message format"))
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, WSMessage{
			Type:      MessageTypePong,
			Data:      map[string]string{"status": "alive"},
			Timestamp: time.Now().Format(time.RFC3339),
		})
	default:
		logger.Debug("websocket: unknown message type %q from %s", wsMessage.Type, client.UserID)
		m.sendToClient(client, errorMessage("Unknown message type"))
	}
}

func errorMessage(message string) WSMessage {
	return WSMessage{
		Type:      MessageTypeError,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func (m *Manager) sendToClient(client *Client, message WSMessage) {
	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error("websocket: failed to encode %s frame: %v", message.Type, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if _, ok := m.clients[client.UserID][client]; !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
