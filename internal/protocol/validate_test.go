package protocol

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewMessage(t *testing.T) {
	payload := OutputPayload{Stream: "output", Data: "hello"}

	msg, err := NewMessage(TypeOutput, payload)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}

	if msg.Type != TypeOutput {
		t.Errorf("expected type %s, got %s", TypeOutput, msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected non-zero timestamp")
	}

	var p OutputPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.Data != "hello" {
		t.Errorf("expected data 'hello', got %s", p.Data)
	}
}

func TestValidateClientMessage_ValidInput(t *testing.T) {
	msg := map[string]interface{}{
		"type":      TypeInput,
		"payload":   map[string]interface{}{"line": "echo hi"},
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, _ := json.Marshal(msg)

	result, err := ValidateClientMessage(data)
	if err != nil {
		t.Fatalf("expected valid message, got error: %v", err)
	}
	if result.Type != TypeInput {
		t.Errorf("expected type %s, got %s", TypeInput, result.Type)
	}
}

func TestValidateClientMessage_EmptyLineAllowed(t *testing.T) {
	// The session accepts any input line, including empty.
	msg := map[string]interface{}{
		"type":      TypeInput,
		"payload":   map[string]interface{}{"line": ""},
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, _ := json.Marshal(msg)

	if _, err := ValidateClientMessage(data); err != nil {
		t.Fatalf("expected empty line to validate, got error: %v", err)
	}
}

func TestValidateClientMessage_InterruptWithoutPayload(t *testing.T) {
	data := []byte(`{"type":"terminal.interrupt","timestamp":"2024-01-01T00:00:00.000Z"}`)

	if _, err := ValidateClientMessage(data); err != nil {
		t.Fatalf("expected payload-less interrupt to validate, got error: %v", err)
	}
}

func TestValidateClientMessage_InvalidJSON(t *testing.T) {
	_, err := ValidateClientMessage([]byte("not json"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestValidateClientMessage_MissingType(t *testing.T) {
	data := []byte(`{"payload":{},"timestamp":"2024-01-01T00:00:00.000Z"}`)

	_, err := ValidateClientMessage(data)
	if err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestValidateClientMessage_UnknownType(t *testing.T) {
	data := []byte(`{"type":"unknown.action","payload":{},"timestamp":"2024-01-01T00:00:00.000Z"}`)

	_, err := ValidateClientMessage(data)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestValidateClientMessage_ServerTypeRejected(t *testing.T) {
	data := []byte(`{"type":"terminal.output","payload":{},"timestamp":"2024-01-01T00:00:00.000Z"}`)

	_, err := ValidateClientMessage(data)
	if err == nil {
		t.Fatal("expected server-originated type to be rejected")
	}
}

func TestValidateClientMessage_InputMissingPayload(t *testing.T) {
	data := []byte(`{"type":"terminal.input","timestamp":"2024-01-01T00:00:00.000Z"}`)

	_, err := ValidateClientMessage(data)
	if err == nil {
		t.Fatal("expected error for missing payload")
	}
}

func TestValidateClientMessage_MalformedPayload(t *testing.T) {
	data := []byte(`{"type":"terminal.setUser","payload":"not an object","timestamp":"2024-01-01T00:00:00.000Z"}`)

	_, err := ValidateClientMessage(data)
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg, err := NewErrorMessage(ErrInvalidMessage, "bad envelope")
	if err != nil {
		t.Fatalf("NewErrorMessage failed: %v", err)
	}
	if msg.Type != TypeError {
		t.Errorf("expected type %s, got %s", TypeError, msg.Type)
	}

	var p ErrorPayload
	json.Unmarshal(msg.Payload, &p)
	if p.Code != ErrInvalidMessage {
		t.Errorf("expected code %s, got %s", ErrInvalidMessage, p.Code)
	}
}
