package audio

import (
	"context"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
	pcm "github.com/satriahrh/lansia/internal/audio"
)

const wavBitDepth = 16

// WavFileSink writes every played buffer to a 16-bit PCM WAV file, replacing the previous one
type WavFileSink struct {
	path   string
	logger *zap.Logger
}

// Ensure WavFileSink implements the AudioSink interface
var _ repositories.AudioSink = (*WavFileSink)(nil)

// NewWavFileSink creates a sink writing to path
func NewWavFileSink(path string, logger *zap.Logger) (*WavFileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	return &WavFileSink{path: path, logger: logger}, nil
}

// Play encodes buffer into the sink's file
func (s *WavFileSink) Play(ctx context.Context, buffer *entities.PcmBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer file.Close()

	channels := buffer.ChannelCount()
	frames := buffer.FrameCount()

	planar := make([][]float32, channels)
	for c := range planar {
		planar[c] = buffer.Channel(c)
	}

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			data[i*channels+c] = int(pcm.ToInt16(planar[c][i]))
		}
	}

	intBuffer := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: buffer.SampleRate()},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	enc := wav.NewEncoder(file, buffer.SampleRate(), wavBitDepth, channels, 1)
	if err := enc.Write(intBuffer); err != nil {
		return fmt.Errorf("failed to write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close wav encoder: %w", err)
	}

	s.logger.Info("Wrote speech to wav file",
		zap.String("path", s.path),
		zap.Int("frames", frames),
		zap.Duration("duration", buffer.Duration()))
	return nil
}
