package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
	"github.com/satriahrh/lansia/internal/audio"
)

const defaultTimeout = 90 * time.Second

// Decoder turns a speech payload into playable frames
type Decoder func(base64Audio string) (*entities.PcmBuffer, error)

// Config holds the playback controller settings
// Optional fields with defaults:
// - Timeout: upper bound of one session, synthesis through output (default: 90s)
// - Decoder: payload decoder (default: audio.DecodeVoicePCM)
// - OnSessionEnd: called once per session after it finished, successfully or not
type Config struct {
	Timeout      time.Duration
	Decoder      Decoder
	OnSessionEnd func(session *entities.PlaybackSession)
}

// Controller plays readback text through a sink, one session at a time.
// A request made while a session is playing is dropped without any network call.
type Controller struct {
	synthesizer repositories.SpeechSynthesizer
	sink        repositories.AudioSink
	decode      Decoder
	timeout     time.Duration
	onEnd       func(session *entities.PlaybackSession)
	logger      *zap.Logger

	playing atomic.Bool

	mu      sync.Mutex
	current *entities.PlaybackSession
	cancel  context.CancelFunc
	done    chan struct{}
}

type sessionKey struct{}

// SessionFromContext returns the session a sink is playing for
func SessionFromContext(ctx context.Context) (*entities.PlaybackSession, bool) {
	session, ok := ctx.Value(sessionKey{}).(*entities.PlaybackSession)
	return session, ok
}

// NewController creates a new playback controller
func NewController(synthesizer repositories.SpeechSynthesizer, sink repositories.AudioSink, config Config, logger *zap.Logger) *Controller {
	c := &Controller{
		synthesizer: synthesizer,
		sink:        sink,
		decode:      config.Decoder,
		timeout:     config.Timeout,
		onEnd:       config.OnSessionEnd,
		logger:      logger,
	}
	if c.decode == nil {
		c.decode = audio.DecodeVoicePCM
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

// State reports whether a session is playing
func (c *Controller) State() entities.PlaybackState {
	if c.playing.Load() {
		return entities.PlaybackStatePlaying
	}
	return entities.PlaybackStateIdle
}

// Current returns the playing session, or nil when idle
func (c *Controller) Current() *entities.PlaybackSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// RequestPlayback starts speaking text in the background. It returns false,
// doing nothing, when a session is already playing or text is blank.
func (c *Controller) RequestPlayback(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("Ignoring blank playback request")
		return false
	}

	// Claim the slot before anything can suspend
	if !c.playing.CompareAndSwap(false, true) {
		c.logger.Info("Playback already in progress, request dropped", zap.Int("textLength", len(text)))
		return false
	}

	session := entities.NewPlaybackSession(text)
	ctx, cancel := context.WithTimeout(context.WithValue(ctx, sessionKey{}, session), c.timeout)
	done := make(chan struct{})

	c.mu.Lock()
	c.current = session
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(ctx, cancel, session, done)
	return true
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, session *entities.PlaybackSession, done chan struct{}) {
	defer close(done)
	defer cancel()

	c.logger.Info("Playback session started",
		zap.String("sessionID", session.ID),
		zap.Int("textLength", len(session.Text)))

	err := c.play(ctx, session)
	session.End(err)

	if err != nil {
		c.logger.Error("Playback session failed",
			zap.String("sessionID", session.ID),
			zap.Error(err))
	} else {
		c.logger.Info("Playback session finished",
			zap.String("sessionID", session.ID),
			zap.Int("frames", session.Frames),
			zap.Duration("elapsed", session.Duration))
	}

	c.mu.Lock()
	if c.current == session {
		c.current = nil
		c.cancel = nil
		c.done = nil
	}
	c.mu.Unlock()
	c.playing.Store(false)

	if c.onEnd != nil {
		c.onEnd(session)
	}
}

func (c *Controller) play(ctx context.Context, session *entities.PlaybackSession) error {
	payload, err := c.synthesizer.SynthesizeSpeech(ctx, session.Text)
	if err != nil {
		return fmt.Errorf("failed to synthesize speech: %w", err)
	}

	buffer, err := c.decode(payload.Base64Audio)
	if err != nil {
		return fmt.Errorf("failed to decode speech: %w", err)
	}
	session.Frames = buffer.FrameCount()

	if err := c.sink.Play(ctx, buffer); err != nil {
		return fmt.Errorf("failed to play speech: %w", err)
	}
	return nil
}

// Wait blocks until the current session, if any, has finished
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop cancels the current session and waits for the controller to become idle
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
