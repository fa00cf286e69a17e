package api

import (
	"time"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/usecase"
)

// DeviceAuthRequest represents the request payload for device authentication
type DeviceAuthRequest struct {
	SerialNumber string `json:"serial_number"`
	SecretKey    string `json:"secret_key"`
}

// DeviceAuthResponse represents the response payload for device authentication
type DeviceAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	DeviceID  string    `json:"device_id"`
}

// ClarityRequest asks for a simple explanation of medical text or a photo of it
type ClarityRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"` // data URL or bare base64
}

// MisinfoRequest asks whether a health claim can be trusted
type MisinfoRequest struct {
	Claim string `json:"claim"`
}

// MedsRequest asks for a medication guide
type MedsRequest struct {
	Name string `json:"name"`
}

// ResultResponse carries a validated result and its presentation
type ResultResponse struct {
	Feature      entities.ResultKind    `json:"feature"`
	Result       entities.Result        `json:"result"`
	Fields       []usecase.DisplayField `json:"fields"`
	ReadbackText string                 `json:"readback_text"`
}

// FeaturesResponse lists the assistant features
type FeaturesResponse struct {
	Features []usecase.Feature `json:"features"`
}

// SpeechRequest asks for the spoken form of a readback text
type SpeechRequest struct {
	Text string `json:"text"`
}

// SpeechResponse carries audio that has already been checked to decode
type SpeechResponse struct {
	AudioData  string `json:"audio_data"` // base64 s16le
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Frames     int    `json:"frames"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
