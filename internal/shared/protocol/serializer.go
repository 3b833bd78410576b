// internal/shared/protocol/serializer.go
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/obrien-tchaleu/ludo-universe/internal/shared/constants"
	"github.com/obrien-tchaleu/ludo-universe/internal/shared/models"
)

// NewMessage construit un message horodaté pour une session
func NewMessage(msgType constants.MessageType, sessionID string, payload interface{}) *models.NetworkMessage {
	return &models.NetworkMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
}

// ErrorMessage construit un message ERROR
func ErrorMessage(sessionID, code, message string) *models.NetworkMessage {
	return NewMessage(constants.MsgError, sessionID, models.ErrorPayload{Code: code, Message: message})
}

// EncodeMessage encode un message en trame JSON
func EncodeMessage(msg *models.NetworkMessage) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return data, nil
}

// DecodeMessage décode une trame JSON reçue
func DecodeMessage(data []byte) (*models.NetworkMessage, error) {
	var msg models.NetworkMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return &msg, nil
}
