package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

const (
	defaultGeminiTTSModel = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice    = "Kore"
	audioModality         = "AUDIO"
)

// GeminiTTSConfig holds configuration for the GeminiTTS adapter
// Required fields:
// - APIKey: Google AI API key
// Optional fields with defaults:
// - BaseURL: override of the Gemini API endpoint (default: SDK default)
// - ModelID: speech model (default: "gemini-2.5-flash-preview-tts")
// - VoiceName: prebuilt voice (default: "Kore")
type GeminiTTSConfig struct {
	APIKey    string
	BaseURL   string
	ModelID   string
	VoiceName string
}

// GeminiTTS implements SpeechSynthesizer using Gemini's audio response modality
type GeminiTTS struct {
	client    *genai.Client
	modelID   string
	voiceName string
	logger    *zap.Logger
}

// Ensure GeminiTTS implements the SpeechSynthesizer interface
var _ repositories.SpeechSynthesizer = (*GeminiTTS)(nil)

// ValidateGeminiTTSConfig validates the GeminiTTSConfig
func ValidateGeminiTTSConfig(config GeminiTTSConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}
	return nil
}

// NewGeminiTTS creates a new Gemini speech synthesizer
func NewGeminiTTS(ctx context.Context, config GeminiTTSConfig, logger *zap.Logger) (*GeminiTTS, error) {
	if err := ValidateGeminiTTSConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultGeminiTTSModel
		logger.Info("Using default model ID", zap.String("modelID", modelID))
	}

	voiceName := config.VoiceName
	if voiceName == "" {
		voiceName = defaultGeminiVoice
		logger.Info("Using default voice", zap.String("voiceName", voiceName))
	}

	return &GeminiTTS{
		client:    client,
		modelID:   modelID,
		voiceName: voiceName,
		logger:    logger,
	}, nil
}

// SynthesizeSpeech requests audio for text and returns the first audio payload, base64 encoded
func (g *GeminiTTS) SynthesizeSpeech(ctx context.Context, text string) (entities.SpeechPayload, error) {
	if strings.TrimSpace(text) == "" {
		return entities.SpeechPayload{}, fmt.Errorf("%w: text cannot be empty", entities.ErrInvalidInput)
	}

	g.logger.Info("Converting text to speech",
		zap.Int("textLength", len(text)),
		zap.String("voiceName", g.voiceName),
		zap.String("modelID", g.modelID))

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{audioModality},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: g.voiceName},
			},
		},
	}

	response, err := g.client.Models.GenerateContent(ctx, g.modelID, genai.Text(text), config)
	if err != nil {
		g.logger.Error("Speech generation failed", zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entities.SpeechPayload{}, fmt.Errorf("%w: generate speech: %w", entities.ErrTransport, ctxErr)
		}
		return entities.SpeechPayload{}, fmt.Errorf("%w: generate speech: %v", entities.ErrTransport, err)
	}

	audio := firstAudio(response)
	if len(audio) == 0 {
		g.logger.Warn("Speech generation returned no audio", zap.String("modelID", g.modelID))
		return entities.SpeechPayload{}, fmt.Errorf("%w: response has no inline audio", entities.ErrEmptyAudio)
	}

	g.logger.Info("Successfully received audio from Gemini", zap.Int("totalBytes", len(audio)))

	return entities.SpeechPayload{Base64Audio: base64.StdEncoding.EncodeToString(audio)}, nil
}

// firstAudio returns the bytes of the first inline data part of the first candidate
func firstAudio(response *genai.GenerateContentResponse) []byte {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// NewGeminiTTSConfigFromEnv creates a new GeminiTTSConfig from environment variables
func NewGeminiTTSConfigFromEnv() GeminiTTSConfig {
	return GeminiTTSConfig{
		APIKey:    os.Getenv("GEMINI_API_KEY"),
		BaseURL:   os.Getenv("GEMINI_BASE_URL"),
		ModelID:   os.Getenv("GEMINI_TTS_MODEL"),
		VoiceName: os.Getenv("GEMINI_VOICE"),
	}
}
