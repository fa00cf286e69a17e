package entities

import (
	"time"

	"github.com/google/uuid"
)

// PlaybackState is the state of a playback controller
type PlaybackState string

const (
	PlaybackStateIdle    PlaybackState = "idle"
	PlaybackStatePlaying PlaybackState = "playing"
)

// PlaybackSession is one synthesize, decode and play run
type PlaybackSession struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
	Frames    int           `json:"frames"`
	Err       error         `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// NewPlaybackSession creates a session for the given readback text
func NewPlaybackSession(text string) *PlaybackSession {
	return &PlaybackSession{
		ID:        uuid.NewString(),
		Text:      text,
		StartedAt: time.Now(),
	}
}

// End marks the session as finished, successfully when err is nil
func (s *PlaybackSession) End(err error) {
	now := time.Now()
	s.EndedAt = &now
	s.Err = err
	s.Duration = now.Sub(s.StartedAt)
}

// IsEnded reports whether End has been called
func (s *PlaybackSession) IsEnded() bool {
	return s.EndedAt != nil
}

// Succeeded reports whether the session ended without error
func (s *PlaybackSession) Succeeded() bool {
	return s.IsEnded() && s.Err == nil
}
