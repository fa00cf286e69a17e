package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

const (
	defaultAPIBaseURL = "https://api.elevenlabs.io/v1"
	defaultVoiceID    = "21m00Tcm4TlvDq8ikWAM"   // Rachel voice
	defaultModelID    = "eleven_multilingual_v2" // Default model ID
	defaultStability  = 0.5                      // Default voice stability
	defaultClarity    = 0.75                     // Default voice clarity/similarity_boost
	// pcmOutputFormat matches the voice wire format: s16le, mono, 24 kHz
	pcmOutputFormat = "pcm_24000"
)

// ElevenLabsConfig holds configuration for the ElevenLabsTTS adapter
// Required fields:
// - APIKey: Your Eleven Labs API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Eleven Labs API (default: "https://api.elevenlabs.io/v1")
// - VoiceID: The voice ID to use (default: "21m00Tcm4TlvDq8ikWAM" - Rachel voice)
// - ModelID: The model ID to use (default: "eleven_multilingual_v2")
// - Stability: Voice stability value between 0 and 1 (default: 0.5)
// - Clarity: Voice clarity/similarity boost value between 0 and 1 (default: 0.75)
type ElevenLabsConfig struct {
	APIKey     string
	APIBaseURL string
	VoiceID    string
	ModelID    string
	Stability  float64
	Clarity    float64
}

// ElevenLabsTTS implements SpeechSynthesizer using the Eleven Labs API.
// Audio is always requested as raw 24 kHz PCM so it decodes like Gemini speech.
type ElevenLabsTTS struct {
	apiKey     string
	apiBaseURL string
	voiceID    string
	modelID    string
	stability  float64
	clarity    float64
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure ElevenLabsTTS implements the SpeechSynthesizer interface
var _ repositories.SpeechSynthesizer = (*ElevenLabsTTS)(nil)

// ElevenLabsVoiceSettings represents voice settings for Eleven Labs API
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsRequest represents the request payload for Eleven Labs TTS API
type ElevenLabsRequest struct {
	Text                   string                  `json:"text"`
	ModelID                string                  `json:"model_id"`
	VoiceSettings          ElevenLabsVoiceSettings `json:"voice_settings"`
	ApplyTextNormalization string                  `json:"apply_text_normalization,omitempty"`
}

// Voice is one entry of the Eleven Labs voice catalogue
type Voice struct {
	VoiceID string `json:"voice_id"`
	Name    string `json:"name"`
}

// ValidateElevenLabsConfig validates the ElevenLabsConfig
func ValidateElevenLabsConfig(config ElevenLabsConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("eleven labs API key is required")
	}

	// Validate stability is in the valid range
	if config.Stability != 0 && (config.Stability < 0 || config.Stability > 1) {
		return fmt.Errorf("stability must be between 0 and 1, got %f", config.Stability)
	}

	// Validate clarity is in the valid range
	if config.Clarity != 0 && (config.Clarity < 0 || config.Clarity > 1) {
		return fmt.Errorf("clarity must be between 0 and 1, got %f", config.Clarity)
	}

	return nil
}

// NewElevenLabsTTS creates a new Eleven Labs TTS instance
func NewElevenLabsTTS(config ElevenLabsConfig, logger *zap.Logger) (*ElevenLabsTTS, error) {
	if err := ValidateElevenLabsConfig(config); err != nil {
		return nil, err
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
		logger.Info("Using default voice ID", zap.String("voiceID", voiceID))
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultModelID
		logger.Info("Using default model ID", zap.String("modelID", modelID))
	}

	stability := config.Stability
	if stability == 0 {
		stability = defaultStability
		logger.Info("Using default stability", zap.Float64("stability", stability))
	}

	clarity := config.Clarity
	if clarity == 0 {
		clarity = defaultClarity
		logger.Info("Using default clarity", zap.Float64("clarity", clarity))
	}

	return &ElevenLabsTTS{
		apiKey:     config.APIKey,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		voiceID:    voiceID,
		modelID:    modelID,
		stability:  stability,
		clarity:    clarity,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

// SynthesizeSpeech converts text to raw PCM with one non-streaming request
func (e *ElevenLabsTTS) SynthesizeSpeech(ctx context.Context, text string) (entities.SpeechPayload, error) {
	if strings.TrimSpace(text) == "" {
		return entities.SpeechPayload{}, fmt.Errorf("%w: text cannot be empty", entities.ErrInvalidInput)
	}

	e.logger.Info("Converting text to speech",
		zap.Int("textLength", len(text)),
		zap.String("voiceID", e.voiceID),
		zap.String("modelID", e.modelID))

	requestBody, err := json.Marshal(ElevenLabsRequest{
		Text:                   text,
		ModelID:                e.modelID,
		ApplyTextNormalization: "auto",
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       e.stability,
			SimilarityBoost: e.clarity,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return entities.SpeechPayload{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s&enable_logging=false",
		e.apiBaseURL, e.voiceID, pcmOutputFormat)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return entities.SpeechPayload{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Accept", "audio/pcm")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		e.logger.Error("Failed to execute HTTP request", zap.Error(err))
		return entities.SpeechPayload{}, fmt.Errorf("%w: %w", entities.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		e.logger.Error("Eleven Labs API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return entities.SpeechPayload{}, fmt.Errorf("%w: eleven labs returned %d", entities.ErrTransport, resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.SpeechPayload{}, fmt.Errorf("%w: reading audio body: %v", entities.ErrTransport, err)
	}
	if len(audio) == 0 {
		return entities.SpeechPayload{}, fmt.Errorf("%w: eleven labs returned an empty body", entities.ErrEmptyAudio)
	}

	e.logger.Info("Successfully received audio from Eleven Labs",
		zap.String("contentType", resp.Header.Get("Content-Type")),
		zap.Int("totalBytes", len(audio)))

	return entities.SpeechPayload{Base64Audio: base64.StdEncoding.EncodeToString(audio)}, nil
}

// NewElevenLabsConfigFromEnv creates a new ElevenLabsConfig from environment variables
func NewElevenLabsConfigFromEnv() ElevenLabsConfig {
	config := ElevenLabsConfig{
		APIKey:     os.Getenv("ELEVEN_LABS_API_KEY"),
		APIBaseURL: os.Getenv("ELEVEN_LABS_API_BASE_URL"),
		VoiceID:    os.Getenv("ELEVEN_LABS_VOICE_ID"),
		ModelID:    os.Getenv("ELEVEN_LABS_MODEL_ID"),
	}

	if stabilityStr := os.Getenv("ELEVEN_LABS_STABILITY"); stabilityStr != "" {
		if stability, err := strconv.ParseFloat(stabilityStr, 64); err == nil && stability >= 0 && stability <= 1 {
			config.Stability = stability
		}
	}

	if clarityStr := os.Getenv("ELEVEN_LABS_CLARITY"); clarityStr != "" {
		if clarity, err := strconv.ParseFloat(clarityStr, 64); err == nil && clarity >= 0 && clarity <= 1 {
			config.Clarity = clarity
		}
	}

	return config
}

// GetAvailableVoices retrieves available voices from Eleven Labs API
func (e *ElevenLabsTTS) GetAvailableVoices(ctx context.Context) ([]Voice, error) {
	url := fmt.Sprintf("%s/voices", e.apiBaseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: API returned error %d: %s", entities.ErrTransport, resp.StatusCode, string(errorBody))
	}

	var voicesResponse struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&voicesResponse); err != nil {
		return nil, fmt.Errorf("%w: failed to decode voices: %v", entities.ErrParse, err)
	}

	e.logger.Info("Retrieved available voices", zap.Int("count", len(voicesResponse.Voices)))
	return voicesResponse.Voices, nil
}
