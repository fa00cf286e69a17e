package websocket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supported message types
const (
	MessageTypeReadbackRequest MessageType = "readback_request"
	MessageTypePing            MessageType = "ping"
	MessageTypePong            MessageType = "pong"
	MessageTypeError           MessageType = "error"
	MessageTypeSpeakingStart   MessageType = "speaking_start"
	MessageTypeSpeakingEnd     MessageType = "speaking_end"
	MessageTypeSpeakingError   MessageType = "speaking_error"
)

// Error codes carried by error and speaking_error messages
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeTransport      = "upstream_unavailable"
	ErrorCodeEmptyAudio     = "empty_audio"
	ErrorCodeDecode         = "decode_error"
	ErrorCodeTimeout        = "timeout"
	ErrorCodePlayback       = "playback_failed"
)

// BaseMessage defines the common structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// ReadbackRequestMessage asks the server to speak text on this connection
type ReadbackRequestMessage struct {
	BaseMessage
	Text string `json:"text"`
}

// PingMessage represents a ping message for connection health check
type PingMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// PongMessage represents a pong response
type PongMessage struct {
	BaseMessage
	Data string `json:"data,omitempty"`
}

// ErrorMessage represents an error response
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// SpeakingStartMessage precedes the binary audio frames of a session
type SpeakingStartMessage struct {
	BaseMessage
	SessionID  string `json:"session_id"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Frames     int    `json:"frames"`
	DurationMs int64  `json:"duration_ms"`
	Encoding   string `json:"encoding"`
}

// SpeakingEndMessage follows the last audio frame of a successful session
type SpeakingEndMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
}

// SpeakingErrorMessage reports a session that ended without finishing playback
type SpeakingErrorMessage struct {
	BaseMessage
	SessionID string `json:"session_id"`
	Code      string `json:"error_code"`
	Message   string `json:"message"`
}

// MessageValidator provides validation for WebSocket messages
type MessageValidator struct {
	maxTextChars int
}

// NewMessageValidator creates a new message validator. maxTextChars <= 0 disables the length check.
func NewMessageValidator(maxTextChars int) *MessageValidator {
	return &MessageValidator{maxTextChars: maxTextChars}
}

// ValidateMessage validates an incoming message and returns its typed form
func (v *MessageValidator) ValidateMessage(messageBytes []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(messageBytes, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	switch base.Type {
	case MessageTypeReadbackRequest:
		var msg ReadbackRequestMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid readback request: %w", err)
		}
		if err := v.validateReadback(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			return nil, fmt.Errorf("invalid ping message: %w", err)
		}
		return &msg, nil

	case "":
		return nil, fmt.Errorf("message type is required")

	default:
		return nil, fmt.Errorf("unsupported message type: %s", base.Type)
	}
}

func (v *MessageValidator) validateReadback(msg *ReadbackRequestMessage) error {
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if v.maxTextChars > 0 {
		if n := utf8.RuneCountInString(msg.Text); n > v.maxTextChars {
			return fmt.Errorf("text has %d characters, limit is %d", n, v.maxTextChars)
		}
	}
	return nil
}

func now() string {
	return time.Now().Format(time.RFC3339)
}

// CreateErrorMessage creates a standardized error message
func CreateErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeError, Timestamp: now()},
		Code:        code,
		Message:     message,
	}
}

// CreatePongMessage creates a pong response message
func CreatePongMessage(data string) *PongMessage {
	return &PongMessage{
		BaseMessage: BaseMessage{Type: MessageTypePong, Timestamp: now()},
		Data:        data,
	}
}

// CreateSpeakingStartMessage announces the audio about to be streamed
func CreateSpeakingStartMessage(sessionID string, sampleRate, channels, frames int, duration time.Duration) *SpeakingStartMessage {
	return &SpeakingStartMessage{
		BaseMessage: BaseMessage{Type: MessageTypeSpeakingStart, Timestamp: now()},
		SessionID:   sessionID,
		SampleRate:  sampleRate,
		Channels:    channels,
		Frames:      frames,
		DurationMs:  duration.Milliseconds(),
		Encoding:    "f32le",
	}
}

// CreateSpeakingEndMessage marks the end of a session's audio
func CreateSpeakingEndMessage(sessionID string) *SpeakingEndMessage {
	return &SpeakingEndMessage{
		BaseMessage: BaseMessage{Type: MessageTypeSpeakingEnd, Timestamp: now()},
		SessionID:   sessionID,
	}
}

// CreateSpeakingErrorMessage reports a failed session
func CreateSpeakingErrorMessage(sessionID, code, message string) *SpeakingErrorMessage {
	return &SpeakingErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeSpeakingError, Timestamp: now()},
		SessionID:   sessionID,
		Code:        code,
		Message:     message,
	}
}
