package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a server-originated message with the current timestamp.
func NewMessage(msgType string, payload interface{}) (*Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		Type:      msgType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Server → Client message types.
const (
	TypeOutput = "terminal.output"
	TypeState  = "terminal.state"
	TypeClosed = "terminal.closed"
	TypeError  = "error"
)

// Client → Server message types.
const (
	TypeInput     = "terminal.input"
	TypeInterrupt = "terminal.interrupt"
	TypeClear     = "terminal.clear"
	TypeSetUser   = "terminal.setUser"
	TypeSetDir    = "terminal.setDir"
	TypeExit      = "terminal.exit"
)

// Error codes.
const (
	ErrInvalidMessage = "INVALID_MESSAGE"
	ErrSessionClosed  = "SESSION_CLOSED"
)

// Server → Client payloads.

// OutputPayload carries one write from the session. Stream is "output"
// for the output-class channel and "error" for the error-class channel.
type OutputPayload struct {
	Stream string `json:"stream"`
	Data   string `json:"data"`
}

// StatePayload mirrors the session snapshot.
type StatePayload struct {
	ID               string `json:"id"`
	State            string `json:"state"`
	User             string `json:"user"`
	WorkingDirectory string `json:"workingDirectory"`
	CreatedAt        string `json:"createdAt"`
}

// ErrorPayload reports a protocol-level error to the client.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Client → Server payloads.

// InputPayload carries a raw input line. The line may be empty; the
// session accepts any string.
type InputPayload struct {
	Line string `json:"line"`
}

// SetUserPayload changes the session's display name.
type SetUserPayload struct {
	User string `json:"user"`
}

// SetDirPayload changes the session's working-directory label.
type SetDirPayload struct {
	Path string `json:"path"`
}
