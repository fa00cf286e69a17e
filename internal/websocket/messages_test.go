package websocket

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestMessageValidator_ValidateReadbackRequest(t *testing.T) {
	validator := NewMessageValidator(10)

	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{
			name:    "valid readback request",
			message: `{"type": "readback_request", "text": "Aspirin."}`,
			wantErr: false,
		},
		{
			name:    "missing text",
			message: `{"type": "readback_request"}`,
			wantErr: true,
		},
		{
			name:    "blank text",
			message: `{"type": "readback_request", "text": "   "}`,
			wantErr: true,
		},
		{
			name:    "text too long",
			message: `{"type": "readback_request", "text": "` + strings.Repeat("a", 11) + `"}`,
			wantErr: true,
		},
		{
			name:    "text as number",
			message: `{"type": "readback_request", "text": 7}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := validator.ValidateMessage([]byte(tt.message))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if _, ok := msg.(*ReadbackRequestMessage); !ok {
					t.Errorf("Expected *ReadbackRequestMessage, got %T", msg)
				}
			}
		})
	}
}

func TestMessageValidator_ValidatePing(t *testing.T) {
	validator := NewMessageValidator(0)

	msg, err := validator.ValidateMessage([]byte(`{"type": "ping", "data": "hello"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ping, ok := msg.(*PingMessage)
	if !ok {
		t.Fatalf("Expected *PingMessage, got %T", msg)
	}
	if ping.Data != "hello" {
		t.Errorf("Expected data 'hello', got '%s'", ping.Data)
	}
}

func TestMessageValidator_Invalid(t *testing.T) {
	validator := NewMessageValidator(0)

	tests := []struct {
		name    string
		message string
	}{
		{"invalid JSON", `{"type": "ping"`},
		{"missing type", `{"text": "hello"}`},
		{"unsupported type", `{"type": "audio_chunk"}`},
		{"server-only type", `{"type": "speaking_start"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := validator.ValidateMessage([]byte(tt.message)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestCreateMessages(t *testing.T) {
	start := CreateSpeakingStartMessage("session-1", 24000, 1, 12000, 500*time.Millisecond)

	data, err := json.Marshal(start)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if decoded["type"] != "speaking_start" {
		t.Errorf("Expected type speaking_start, got %v", decoded["type"])
	}
	if decoded["session_id"] != "session-1" {
		t.Errorf("Expected session-1, got %v", decoded["session_id"])
	}
	if decoded["frames"] != float64(12000) || decoded["duration_ms"] != float64(500) {
		t.Errorf("Unexpected frames/duration %v/%v", decoded["frames"], decoded["duration_ms"])
	}
	if decoded["timestamp"] == "" {
		t.Error("Expected timestamp")
	}

	if msg := CreateSpeakingEndMessage("session-1"); msg.Type != MessageTypeSpeakingEnd || msg.SessionID != "session-1" {
		t.Errorf("Unexpected end message %+v", msg)
	}
	if msg := CreateSpeakingErrorMessage("session-1", ErrorCodeDecode, "bad audio"); msg.Type != MessageTypeSpeakingError || msg.Code != ErrorCodeDecode {
		t.Errorf("Unexpected error message %+v", msg)
	}
	if msg := CreateErrorMessage(ErrorCodeInvalidMessage, "nope"); msg.Type != MessageTypeError {
		t.Errorf("Unexpected error message %+v", msg)
	}
	if msg := CreatePongMessage("x"); msg.Type != MessageTypePong || msg.Data != "x" {
		t.Errorf("Unexpected pong %+v", msg)
	}
}
