package entities

import "time"

const (
	// VoiceSampleRate is the rate of every speech payload in this system
	VoiceSampleRate = 24000
	// VoiceChannelCount is the channel layout of every speech payload in this system
	VoiceChannelCount = 1
)

// SpeechPayload is the base64 encoded raw PCM returned by the speech service
type SpeechPayload struct {
	Base64Audio string `json:"audio_data"`
}

// PcmBuffer holds planar float samples in [-1.0, 1.0). It is never mutated after
// construction; Channel hands out copies.
type PcmBuffer struct {
	sampleRate int
	channels   [][]float32
}

// NewPcmBuffer wraps planar channel data. Every channel must have the same length;
// the slices are owned by the buffer afterwards.
func NewPcmBuffer(sampleRate int, channels [][]float32) *PcmBuffer {
	return &PcmBuffer{sampleRate: sampleRate, channels: channels}
}

// SampleRate returns the sample rate in Hz
func (b *PcmBuffer) SampleRate() int { return b.sampleRate }

// ChannelCount returns the number of planar channels
func (b *PcmBuffer) ChannelCount() int { return len(b.channels) }

// FrameCount returns the number of samples per channel
func (b *PcmBuffer) FrameCount() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns a copy of channel c
func (b *PcmBuffer) Channel(c int) []float32 {
	out := make([]float32, len(b.channels[c]))
	copy(out, b.channels[c])
	return out
}

// Duration returns how long the buffer plays at its sample rate
func (b *PcmBuffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(b.FrameCount()) * time.Second / time.Duration(b.sampleRate)
}
