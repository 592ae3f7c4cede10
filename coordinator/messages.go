// Package coordinator reports this pipeline's run lifecycle to when-v3 over
// a WebSocket connection: registration, step transitions, progress, errors
// and forwarded log lines. It is a reporter, not a controller — when-v3 has
// no pause/resume/cancel authority over a run here, since a one-shot sync
// pipeline has no meaningful mid-step pause point to honor.
package coordinator

import (
	"encoding/json"
	"time"
)

// MessageType identifies a WebSocket message exchanged with when-v3.
type MessageType string

const (
	// Pipeline → when-v3 messages
	MessageTypeRegister      MessageType = "register"
	MessageTypeStepStarted   MessageType = "step_started"
	MessageTypeStepCompleted MessageType = "step_completed"
	MessageTypeRunCompleted  MessageType = "run_completed"
	MessageTypeRunFailed     MessageType = "run_failed"
	MessageTypeProgress      MessageType = "progress"
	MessageTypeLog           MessageType = "log"
	MessageTypePong          MessageType = "pong"

	// when-v3 → Pipeline messages
	MessageTypeRegistered MessageType = "registered"
	MessageTypePing       MessageType = "ping"
)

// WSMessage is the base message structure for all WebSocket communication.
type WSMessage struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	RunID     string                 `json:"run_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// NewMessage creates a new WSMessage with the given type.
func NewMessage(msgType MessageType) *WSMessage {
	return &WSMessage{
		ID:        generateMessageID(),
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   make(map[string]interface{}),
	}
}

// NewMessageWithRun creates a new WSMessage for a specific pipeline run.
func NewMessageWithRun(msgType MessageType, runID string) *WSMessage {
	msg := NewMessage(msgType)
	msg.RunID = runID
	return msg
}

// JSON serializes the message to JSON bytes.
func (m *WSMessage) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage deserializes a JSON message.
func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetPayload sets the payload from a typed struct.
func (m *WSMessage) SetPayload(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &m.Payload)
}

// RegisterPayload is the payload for a register message.
type RegisterPayload struct {
	ServiceName  string   `json:"service_name"`
	RunID        string   `json:"run_id"`
	Capabilities []string `json:"capabilities"`
	Version      string   `json:"version,omitempty"`
}

// RegisteredPayload is the payload for a registered response.
type RegisteredPayload struct {
	ServiceID string `json:"service_id"`
	Message   string `json:"message,omitempty"`
}

// StepPayload is the payload for step_started/step_completed messages:
// spec §4.9's linear step dispatcher reported as it advances.
type StepPayload struct {
	RunID  string `json:"run_id"`
	Step   string `json:"step"`
	Reason string `json:"reason,omitempty"`
}

// RunFailedPayload is the payload for the run_failed message.
type RunFailedPayload struct {
	RunID string `json:"run_id"`
	Step  string `json:"step,omitempty"`
	Error string `json:"error"`
}

// ProgressPayload is the payload for the progress message.
type ProgressPayload struct {
	RunID   string  `json:"run_id"`
	Step    string  `json:"step"`
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// Helper functions to extract typed payloads from messages.

// GetRegisteredPayload extracts RegisteredPayload from message.
func (m *WSMessage) GetRegisteredPayload() (*RegisteredPayload, error) {
	data, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	var payload RegisteredPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
