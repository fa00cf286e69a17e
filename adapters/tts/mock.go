package tts

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
)

const (
	mockToneHz          = 440
	mockMillisPerRune   = 60
	mockAmplitude       = 0.3
	mockMaxDurationSecs = 10
)

// MockTextToSpeech is a placeholder synthesizer producing a tone whose length follows the text
type MockTextToSpeech struct {
	logger *zap.Logger
}

// NewMockTextToSpeech creates a new mock text-to-speech service
func NewMockTextToSpeech(logger *zap.Logger) *MockTextToSpeech {
	return &MockTextToSpeech{
		logger: logger,
	}
}

// SynthesizeSpeech implements repositories.SpeechSynthesizer
func (t *MockTextToSpeech) SynthesizeSpeech(ctx context.Context, text string) (entities.SpeechPayload, error) {
	if strings.TrimSpace(text) == "" {
		return entities.SpeechPayload{}, fmt.Errorf("%w: text cannot be empty", entities.ErrInvalidInput)
	}

	millis := len([]rune(text)) * mockMillisPerRune
	if millis > mockMaxDurationSecs*1000 {
		millis = mockMaxDurationSecs * 1000
	}
	frames := entities.VoiceSampleRate * millis / 1000

	raw := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		v := mockAmplitude * math.Sin(2*math.Pi*mockToneHz*float64(i)/entities.VoiceSampleRate)
		binary.LittleEndian.PutUint16(raw[i*2:], uint16(int16(v*math.MaxInt16)))
	}

	t.logger.Info("Processing mock text-to-speech",
		zap.Int("textLength", len(text)),
		zap.Int("frames", frames))

	return entities.SpeechPayload{Base64Audio: base64.StdEncoding.EncodeToString(raw)}, nil
}
