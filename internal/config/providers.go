package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/adapters/llm"
	"github.com/satriahrh/lansia/adapters/tts"
	"github.com/satriahrh/lansia/domain/repositories"
)

// NewStructuredGenerator builds the text model client selected by LLM_PROVIDER
func (c Config) NewStructuredGenerator(ctx context.Context, logger *zap.Logger) (repositories.StructuredGenerator, error) {
	switch c.LLMProvider {
	case ProviderGemini:
		generator, err := llm.NewGeminiLLM(ctx, c.Gemini, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini LLM: %w", err)
		}
		return generator, nil
	case ProviderMock:
		logger.Warn("Using mock LLM provider")
		return llm.NewMockGeminiLLM(logger), nil
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
}

// NewSpeechSynthesizer builds the speech client selected by TTS_PROVIDER
func (c Config) NewSpeechSynthesizer(ctx context.Context, logger *zap.Logger) (repositories.SpeechSynthesizer, error) {
	switch c.TTSProvider {
	case ProviderGemini:
		synthesizer, err := tts.NewGeminiTTS(ctx, c.GeminiTTS, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini TTS: %w", err)
		}
		return synthesizer, nil
	case ProviderElevenLabs:
		synthesizer, err := tts.NewElevenLabsTTS(c.ElevenLabs, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Eleven Labs TTS: %w", err)
		}
		return synthesizer, nil
	case ProviderMock:
		logger.Warn("Using mock TTS provider")
		return tts.NewMockTextToSpeech(logger), nil
	}
	return nil, fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
}
