package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/internal/audio"
)

func TestNewElevenLabsTTS(t *testing.T) {
	logger := zaptest.NewLogger(t)

	// Test without API key
	os.Unsetenv("ELEVEN_LABS_API_KEY")
	config := NewElevenLabsConfigFromEnv()
	_, err := NewElevenLabsTTS(config, logger)
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	// Test with API key
	os.Setenv("ELEVEN_LABS_API_KEY", "test-api-key")
	defer os.Unsetenv("ELEVEN_LABS_API_KEY")

	config = NewElevenLabsConfigFromEnv()
	tts, err := NewElevenLabsTTS(config, logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	if tts.apiKey != "test-api-key" {
		t.Errorf("Expected API key 'test-api-key', got '%s'", tts.apiKey)
	}

	if tts.voiceID != defaultVoiceID {
		t.Errorf("Expected default voice ID '%s', got '%s'", defaultVoiceID, tts.voiceID)
	}
}

func TestValidateElevenLabsConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  ElevenLabsConfig
		wantErr bool
	}{
		{"valid", ElevenLabsConfig{APIKey: "k"}, false},
		{"missing key", ElevenLabsConfig{}, true},
		{"stability too high", ElevenLabsConfig{APIKey: "k", Stability: 1.5}, true},
		{"clarity negative", ElevenLabsConfig{APIKey: "k", Clarity: -0.1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElevenLabsConfig(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElevenLabsConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func newTestElevenLabs(t *testing.T, baseURL string) *ElevenLabsTTS {
	t.Helper()
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-api-key", APIBaseURL: baseURL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}
	return tts
}

func TestElevenLabsTTS_SynthesizeSpeech(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("output_format") != "pcm_24000" {
			t.Errorf("Expected pcm_24000 output format, got %s", r.URL.Query().Get("output_format"))
		}
		if r.Header.Get("xi-api-key") != "test-api-key" {
			t.Error("Expected API key header")
		}

		var req ElevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Text != "Take every morning" {
			t.Errorf("Unexpected text %q", req.Text)
		}

		w.Header().Set("Content-Type", "audio/pcm")
		w.Write(pcm)
	}))
	defer server.Close()

	tts := newTestElevenLabs(t, server.URL)

	payload, err := tts.SynthesizeSpeech(context.Background(), "Take every morning")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.Base64Audio != base64.StdEncoding.EncodeToString(pcm) {
		t.Errorf("Unexpected payload %s", payload.Base64Audio)
	}

	buf, err := audio.DecodeVoicePCM(payload.Base64Audio)
	if err != nil {
		t.Fatalf("Payload should decode: %v", err)
	}
	if buf.FrameCount() != 2 {
		t.Errorf("Expected 2 frames, got %d", buf.FrameCount())
	}
}

func TestElevenLabsTTS_SynthesizeSpeech_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    []byte
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, []byte(`{"detail":"boom"}`), entities.ErrTransport},
		{"unauthorized", http.StatusUnauthorized, nil, entities.ErrTransport},
		{"empty body", http.StatusOK, nil, entities.ErrEmptyAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write(tt.body)
			}))
			defer server.Close()

			tts := newTestElevenLabs(t, server.URL)
			_, err := tts.SynthesizeSpeech(context.Background(), "hello")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestElevenLabsTTS_SynthesizeSpeech_EmptyText(t *testing.T) {
	tts := newTestElevenLabs(t, "http://127.0.0.1:1")

	ctx := context.Background()
	_, err := tts.SynthesizeSpeech(ctx, "")
	if !errors.Is(err, entities.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty text, got %v", err)
	}

	_, err = tts.SynthesizeSpeech(ctx, "   ")
	if !errors.Is(err, entities.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for whitespace-only text, got %v", err)
	}
}

func TestElevenLabsTTS_GetAvailableVoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"voices":[{"voice_id":"abc","name":"Rachel"},{"voice_id":"def","name":"Adam"}]}`))
	}))
	defer server.Close()

	tts := newTestElevenLabs(t, server.URL)
	voices, err := tts.GetAvailableVoices(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(voices) != 2 || voices[0].Name != "Rachel" {
		t.Errorf("Unexpected voices %+v", voices)
	}
}

// Integration test - only runs if ELEVEN_LABS_API_KEY is set with real API key
func TestElevenLabsTTS_SynthesizeSpeech_Integration(t *testing.T) {
	apiKey := os.Getenv("ELEVEN_LABS_API_KEY")
	if apiKey == "" || apiKey == "test-api-key" {
		t.Skip("Skipping integration test - set ELEVEN_LABS_API_KEY environment variable with real API key")
	}

	logger := zap.NewNop() // Use no-op logger for integration test

	tts, err := NewElevenLabsTTS(NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		t.Fatalf("Failed to create ElevenLabsTTS: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload, err := tts.SynthesizeSpeech(ctx, "Please confirm this with your doctor.")
	if err != nil {
		t.Fatalf("Failed to convert text to speech: %v", err)
	}

	buf, err := audio.DecodeVoicePCM(payload.Base64Audio)
	if err != nil {
		t.Fatalf("Failed to decode audio: %v", err)
	}
	if buf.FrameCount() == 0 {
		t.Error("No audio frames received")
	}

	t.Logf("Integration test completed: received %s of audio", buf.Duration())
}
