package repositories

import (
	"context"

	"github.com/satriahrh/lansia/domain/entities"
)

// SpeechSynthesizer turns readback text into a base64 raw PCM payload
// (16-bit signed little-endian, mono, 24000 Hz).
type SpeechSynthesizer interface {
	// SynthesizeSpeech issues exactly one request. A response without audio is
	// entities.ErrEmptyAudio; a failed call is entities.ErrTransport.
	SynthesizeSpeech(ctx context.Context, text string) (entities.SpeechPayload, error)
}

// AudioSink is an output the decoded buffer can be scheduled on
type AudioSink interface {
	// Play blocks until the buffer is exhausted or output fails
	Play(ctx context.Context, buffer *entities.PcmBuffer) error
}
