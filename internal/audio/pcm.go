package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/satriahrh/lansia/domain/entities"
)

// int16Scale maps the signed 16-bit range onto [-1.0, 1.0)
const int16Scale = 32768.0

// DecodeVoicePCM decodes a speech payload using the fixed voice format (24000 Hz, mono)
func DecodeVoicePCM(base64Audio string) (*entities.PcmBuffer, error) {
	return DecodePCM(base64Audio, entities.VoiceSampleRate, entities.VoiceChannelCount)
}

// DecodePCM converts base64 raw PCM (signed 16-bit little-endian, interleaved, no
// header) into planar float samples. Any malformed layout is entities.ErrDecode;
// nothing is truncated.
func DecodePCM(base64Audio string, sampleRate, channelCount int) (*entities.PcmBuffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", entities.ErrDecode, sampleRate)
	}
	if channelCount <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", entities.ErrDecode, channelCount)
	}

	raw, err := base64.StdEncoding.DecodeString(base64Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", entities.ErrDecode, err)
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd byte length %d for 16-bit samples", entities.ErrDecode, len(raw))
	}

	sampleCount := len(raw) / 2
	if sampleCount%channelCount != 0 {
		return nil, fmt.Errorf("%w: %d samples do not split into %d channels", entities.ErrDecode, sampleCount, channelCount)
	}
	frameCount := sampleCount / channelCount

	channels := make([][]float32, channelCount)
	for c := range channels {
		channels[c] = make([]float32, frameCount)
	}

	for i := 0; i < frameCount; i++ {
		for c := 0; c < channelCount; c++ {
			offset := (i*channelCount + c) * 2
			sample := int16(binary.LittleEndian.Uint16(raw[offset:]))
			channels[c][i] = float32(float64(sample) / int16Scale)
		}
	}

	return entities.NewPcmBuffer(sampleRate, channels), nil
}

// EncodeFloat32LE serializes samples as IEEE-754 float32 little-endian
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// ToInt16 converts a normalized sample back to the signed 16-bit domain,
// saturating at the range bounds
func ToInt16(sample float32) int16 {
	v := math.Round(float64(sample) * int16Scale)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// EncodeInt16LE serializes samples as signed 16-bit little-endian
func EncodeInt16LE(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(ToInt16(s)))
	}
	return out
}
