package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
	"github.com/satriahrh/lansia/internal/audio"
	"github.com/satriahrh/lansia/internal/playback"
)

var errConnectionClosed = errors.New("connection closed")

// streamSink plays a buffer by streaming it to the device as float32
// little-endian binary frames, paced in real time
type streamSink struct {
	client        *Client
	frameDuration time.Duration
}

// Ensure streamSink implements the AudioSink interface
var _ repositories.AudioSink = (*streamSink)(nil)

func (s *streamSink) Play(ctx context.Context, buffer *entities.PcmBuffer) error {
	sessionID := ""
	if session, ok := playback.SessionFromContext(ctx); ok {
		sessionID = session.ID
	}

	channels := buffer.ChannelCount()
	frames := buffer.FrameCount()

	start := CreateSpeakingStartMessage(sessionID, buffer.SampleRate(), channels, frames, buffer.Duration())
	if !s.client.sendJSON(start) {
		return errConnectionClosed
	}

	planar := make([][]float32, channels)
	for c := range planar {
		planar[c] = buffer.Channel(c)
	}

	framesPerChunk := int(int64(buffer.SampleRate()) * int64(s.frameDuration) / int64(time.Second))
	if framesPerChunk < 1 {
		framesPerChunk = 1
	}

	ticker := time.NewTicker(s.frameDuration)
	defer ticker.Stop()

	for offset := 0; offset < frames; offset += framesPerChunk {
		if offset > 0 {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		end := offset + framesPerChunk
		if end > frames {
			end = frames
		}

		interleaved := make([]float32, 0, (end-offset)*channels)
		for i := offset; i < end; i++ {
			for c := 0; c < channels; c++ {
				interleaved = append(interleaved, planar[c][i])
			}
		}

		if !s.client.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: audio.EncodeFloat32LE(interleaved)}) {
			return errConnectionClosed
		}
	}

	return ctx.Err()
}
