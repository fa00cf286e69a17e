package playback

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/lansia/domain/entities"
)

// fakeSynthesizer returns payload after release is closed (immediately when nil)
type fakeSynthesizer struct {
	payload string
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeSynthesizer) SynthesizeSpeech(ctx context.Context, text string) (entities.SpeechPayload, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return entities.SpeechPayload{}, fmt.Errorf("%w: %w", entities.ErrTransport, ctx.Err())
		}
	}
	if f.err != nil {
		return entities.SpeechPayload{}, f.err
	}
	return entities.SpeechPayload{Base64Audio: f.payload}, nil
}

type fakeSink struct {
	mu       sync.Mutex
	buffers  []*entities.PcmBuffer
	sessions []string
	err      error
}

func (f *fakeSink) Play(ctx context.Context, buffer *entities.PcmBuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if session, ok := SessionFromContext(ctx); ok {
		f.sessions = append(f.sessions, session.ID)
	}
	if f.err != nil {
		return f.err
	}
	f.buffers = append(f.buffers, buffer)
	return nil
}

func (f *fakeSink) played() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffers)
}

// fourFrames is 4 mono samples of s16le
var fourFrames = base64.StdEncoding.EncodeToString([]byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x00, 0xFF, 0x7F})

type endRecorder struct {
	mu       sync.Mutex
	sessions []*entities.PlaybackSession
}

func (r *endRecorder) record(s *entities.PlaybackSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
}

func (r *endRecorder) all() []*entities.PlaybackSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entities.PlaybackSession(nil), r.sessions...)
}

func TestController_PlaysAndReturnsToIdle(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames}
	sink := &fakeSink{}
	ended := &endRecorder{}
	c := NewController(synth, sink, Config{OnSessionEnd: ended.record}, zaptest.NewLogger(t))

	if c.State() != entities.PlaybackStateIdle {
		t.Fatalf("Expected idle, got %s", c.State())
	}

	if !c.RequestPlayback(context.Background(), "Aspirin. Please confirm this with your doctor.") {
		t.Fatal("Expected playback to start")
	}
	c.Wait()

	if c.State() != entities.PlaybackStateIdle {
		t.Errorf("Expected idle after playback, got %s", c.State())
	}
	if sink.played() != 1 {
		t.Fatalf("Expected 1 buffer played, got %d", sink.played())
	}
	if got := sink.buffers[0].FrameCount(); got != 4 {
		t.Errorf("Expected 4 frames, got %d", got)
	}

	sessions := ended.all()
	if len(sessions) != 1 {
		t.Fatalf("Expected 1 finished session, got %d", len(sessions))
	}
	if !sessions[0].Succeeded() {
		t.Errorf("Expected success, got %v", sessions[0].Err)
	}
	if sessions[0].Frames != 4 {
		t.Errorf("Expected session frames 4, got %d", sessions[0].Frames)
	}
	if len(sink.sessions) != 1 || sink.sessions[0] != sessions[0].ID {
		t.Errorf("Expected sink to see session %s, got %v", sessions[0].ID, sink.sessions)
	}
	if c.Current() != nil {
		t.Error("Expected no current session when idle")
	}
}

func TestController_DropsRequestWhilePlaying(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames, release: make(chan struct{})}
	sink := &fakeSink{}
	c := NewController(synth, sink, Config{}, zaptest.NewLogger(t))

	if !c.RequestPlayback(context.Background(), "first") {
		t.Fatal("Expected first request to start")
	}
	if c.State() != entities.PlaybackStatePlaying {
		t.Fatalf("Expected playing, got %s", c.State())
	}
	if c.Current() == nil || c.Current().Text != "first" {
		t.Error("Expected current session for the first request")
	}

	for i := 0; i < 5; i++ {
		if c.RequestPlayback(context.Background(), "second") {
			t.Fatal("Expected second request to be dropped")
		}
	}

	close(synth.release)
	c.Wait()

	if n := synth.calls.Load(); n != 1 {
		t.Errorf("Expected exactly 1 synthesis call, got %d", n)
	}
	if sink.played() != 1 {
		t.Errorf("Expected exactly 1 playback, got %d", sink.played())
	}

	// Idle again, so a new request is accepted
	synth.release = nil
	if !c.RequestPlayback(context.Background(), "third") {
		t.Fatal("Expected request after idle to start")
	}
	c.Wait()
	if n := synth.calls.Load(); n != 2 {
		t.Errorf("Expected 2 synthesis calls, got %d", n)
	}
}

func TestController_ConcurrentRequestsStartOnce(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames, release: make(chan struct{})}
	c := NewController(synth, &fakeSink{}, Config{}, zaptest.NewLogger(t))

	var started atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.RequestPlayback(context.Background(), "hello") {
				started.Add(1)
			}
		}()
	}
	wg.Wait()
	close(synth.release)
	c.Wait()

	if started.Load() != 1 {
		t.Errorf("Expected exactly 1 accepted request, got %d", started.Load())
	}
	if synth.calls.Load() != 1 {
		t.Errorf("Expected exactly 1 synthesis call, got %d", synth.calls.Load())
	}
}

func TestController_FailuresReturnToIdle(t *testing.T) {
	tests := []struct {
		name    string
		synth   *fakeSynthesizer
		sink    *fakeSink
		wantErr error
	}{
		{
			name:    "synthesis transport error",
			synth:   &fakeSynthesizer{err: fmt.Errorf("%w: refused", entities.ErrTransport)},
			sink:    &fakeSink{},
			wantErr: entities.ErrTransport,
		},
		{
			name:    "empty audio",
			synth:   &fakeSynthesizer{err: fmt.Errorf("%w: nothing", entities.ErrEmptyAudio)},
			sink:    &fakeSink{},
			wantErr: entities.ErrEmptyAudio,
		},
		{
			name:    "odd length payload",
			synth:   &fakeSynthesizer{payload: base64.StdEncoding.EncodeToString([]byte{1, 2, 3})},
			sink:    &fakeSink{},
			wantErr: entities.ErrDecode,
		},
		{
			name:    "invalid base64",
			synth:   &fakeSynthesizer{payload: "!!!"},
			sink:    &fakeSink{},
			wantErr: entities.ErrDecode,
		},
		{
			name:    "sink failure",
			synth:   &fakeSynthesizer{payload: fourFrames},
			sink:    &fakeSink{err: errors.New("device unplugged")},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ended := &endRecorder{}
			c := NewController(tt.synth, tt.sink, Config{OnSessionEnd: ended.record}, zaptest.NewLogger(t))

			if !c.RequestPlayback(context.Background(), "hello") {
				t.Fatal("Expected playback to start")
			}
			c.Wait()

			if c.State() != entities.PlaybackStateIdle {
				t.Errorf("Expected idle, got %s", c.State())
			}
			sessions := ended.all()
			if len(sessions) != 1 {
				t.Fatalf("Expected exactly 1 finished session, got %d", len(sessions))
			}
			if sessions[0].Err == nil {
				t.Fatal("Expected session error")
			}
			if tt.wantErr != nil && !errors.Is(sessions[0].Err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, sessions[0].Err)
			}
			if tt.sink.played() != 0 {
				t.Errorf("Expected nothing played, got %d", tt.sink.played())
			}
		})
	}
}

func TestController_BlankTextIgnored(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames}
	c := NewController(synth, &fakeSink{}, Config{}, zaptest.NewLogger(t))

	if c.RequestPlayback(context.Background(), "   ") {
		t.Fatal("Expected blank request to be ignored")
	}
	c.Wait()
	if synth.calls.Load() != 0 {
		t.Errorf("Expected no synthesis call, got %d", synth.calls.Load())
	}
}

func TestController_Timeout(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames, release: make(chan struct{})}
	ended := &endRecorder{}
	c := NewController(synth, &fakeSink{}, Config{Timeout: 20 * time.Millisecond, OnSessionEnd: ended.record}, zaptest.NewLogger(t))

	c.RequestPlayback(context.Background(), "hello")
	c.Wait()

	sessions := ended.all()
	if len(sessions) != 1 || !errors.Is(sessions[0].Err, context.DeadlineExceeded) {
		t.Fatalf("Expected a timed out session, got %+v", sessions)
	}
	if c.State() != entities.PlaybackStateIdle {
		t.Errorf("Expected idle, got %s", c.State())
	}
}

func TestController_Stop(t *testing.T) {
	synth := &fakeSynthesizer{payload: fourFrames, release: make(chan struct{})}
	ended := &endRecorder{}
	c := NewController(synth, &fakeSink{}, Config{OnSessionEnd: ended.record}, zaptest.NewLogger(t))

	c.RequestPlayback(context.Background(), "hello")
	c.Stop()

	if c.State() != entities.PlaybackStateIdle {
		t.Errorf("Expected idle after stop, got %s", c.State())
	}
	sessions := ended.all()
	if len(sessions) != 1 || !errors.Is(sessions[0].Err, context.Canceled) {
		t.Fatalf("Expected a canceled session, got %+v", sessions)
	}

	// Stop when idle is a no-op
	c.Stop()
}
