package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/internal/audio"
)

// fakeGeminiSpeech replies to generateContent with the given parts of the first candidate
func fakeGeminiSpeech(t *testing.T, parts []interface{}, captured *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			body, _ := io.ReadAll(r.Body)
			*captured = string(body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{"role": "model", "parts": parts},
				},
			},
		})
	}))
}

func newTestGeminiTTS(t *testing.T, baseURL string) *GeminiTTS {
	t.Helper()
	g, err := NewGeminiTTS(context.Background(), GeminiTTSConfig{APIKey: "test-api-key", BaseURL: baseURL}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to create GeminiTTS: %v", err)
	}
	return g
}

func TestNewGeminiTTS(t *testing.T) {
	_, err := NewGeminiTTS(context.Background(), GeminiTTSConfig{}, zaptest.NewLogger(t))
	if err == nil {
		t.Error("Expected error when API key is not set")
	}

	g := newTestGeminiTTS(t, "")
	if g.modelID != defaultGeminiTTSModel {
		t.Errorf("Expected default model '%s', got '%s'", defaultGeminiTTSModel, g.modelID)
	}
	if g.voiceName != defaultGeminiVoice {
		t.Errorf("Expected default voice '%s', got '%s'", defaultGeminiVoice, g.voiceName)
	}
}

func TestGeminiTTS_SynthesizeSpeech(t *testing.T) {
	pcm := []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x00, 0xFF, 0x7F}
	encoded := base64.StdEncoding.EncodeToString(pcm)

	var captured string
	server := fakeGeminiSpeech(t, []interface{}{
		map[string]interface{}{
			"inlineData": map[string]interface{}{"mimeType": "audio/L16;codec=pcm;rate=24000", "data": encoded},
		},
	}, &captured)
	defer server.Close()

	g := newTestGeminiTTS(t, server.URL)

	payload, err := g.SynthesizeSpeech(context.Background(), "Aspirin. Take with food.")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.Base64Audio != encoded {
		t.Errorf("Expected payload %s, got %s", encoded, payload.Base64Audio)
	}

	buf, err := audio.DecodeVoicePCM(payload.Base64Audio)
	if err != nil {
		t.Fatalf("Payload should decode: %v", err)
	}
	if buf.FrameCount() != 4 {
		t.Errorf("Expected 4 frames, got %d", buf.FrameCount())
	}

	if !strings.Contains(captured, "Kore") {
		t.Error("Expected request to carry the voice name")
	}
	if !strings.Contains(captured, "AUDIO") {
		t.Error("Expected request to ask for audio modality")
	}
}

func TestGeminiTTS_SynthesizeSpeech_NoAudio(t *testing.T) {
	server := fakeGeminiSpeech(t, []interface{}{
		map[string]interface{}{"text": "I cannot speak right now"},
	}, nil)
	defer server.Close()

	g := newTestGeminiTTS(t, server.URL)

	_, err := g.SynthesizeSpeech(context.Background(), "hello")
	if !errors.Is(err, entities.ErrEmptyAudio) {
		t.Fatalf("Expected ErrEmptyAudio, got %v", err)
	}
}

func TestGeminiTTS_SynthesizeSpeech_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"bad voice","status":"INVALID_ARGUMENT"}}`))
	}))
	defer server.Close()

	g := newTestGeminiTTS(t, server.URL)

	_, err := g.SynthesizeSpeech(context.Background(), "hello")
	if !errors.Is(err, entities.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
}

func TestGeminiTTS_SynthesizeSpeech_EmptyText(t *testing.T) {
	g := newTestGeminiTTS(t, "http://127.0.0.1:1")

	_, err := g.SynthesizeSpeech(context.Background(), " ")
	if !errors.Is(err, entities.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestMockTextToSpeech(t *testing.T) {
	m := NewMockTextToSpeech(zaptest.NewLogger(t))

	payload, err := m.SynthesizeSpeech(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	buf, err := audio.DecodeVoicePCM(payload.Base64Audio)
	if err != nil {
		t.Fatalf("Mock payload should decode: %v", err)
	}
	want := entities.VoiceSampleRate * 5 * mockMillisPerRune / 1000
	if buf.FrameCount() != want {
		t.Errorf("Expected %d frames, got %d", want, buf.FrameCount())
	}

	if _, err := m.SynthesizeSpeech(context.Background(), ""); !errors.Is(err, entities.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
