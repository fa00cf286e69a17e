package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/adapters/audio"
	"github.com/satriahrh/lansia/adapters/tts"
	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/internal/config"
	"github.com/satriahrh/lansia/internal/playback"
)

func main() {
	text := flag.String("text", "", "readback text to speak")
	out := flag.String("out", "readback.wav", "output WAV file")
	play := flag.Bool("play", false, "play the WAV file after writing it")
	voices := flag.Bool("voices", false, "list Eleven Labs voices and exit")
	flag.Parse()

	// Create logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PlaybackTimeout)
	defer cancel()

	if *voices {
		listVoices(ctx, cfg, logger)
		return
	}

	if strings.TrimSpace(*text) == "" {
		fmt.Fprintln(os.Stderr, "usage: readback -text \"...\" [-out speech.wav] [-play]")
		os.Exit(2)
	}
	if n := len([]rune(*text)); n > cfg.MaxInputChars {
		logger.Fatal("Text is too long", zap.Int("chars", n), zap.Int("limit", cfg.MaxInputChars))
	}

	synthesizer, err := cfg.NewSpeechSynthesizer(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	sink, err := audio.NewWavFileSink(*out, logger)
	if err != nil {
		logger.Fatal("Failed to create WAV sink", zap.Error(err))
	}

	var finished *entities.PlaybackSession
	controller := playback.NewController(synthesizer, sink, playback.Config{
		Timeout: cfg.PlaybackTimeout,
		OnSessionEnd: func(session *entities.PlaybackSession) {
			finished = session
		},
	}, logger)

	logger.Info("Converting text to speech", zap.String("text", *text))

	if !controller.RequestPlayback(ctx, *text) {
		logger.Fatal("Playback was not started")
	}
	controller.Wait()

	if finished == nil || !finished.Succeeded() {
		var cause error
		if finished != nil {
			cause = finished.Err
		}
		logger.Fatal("Readback failed", zap.Error(cause))
	}

	fmt.Printf("Audio saved to %s (%d frames, %s)\n", *out, finished.Frames, finished.Duration.Round(time.Millisecond))

	if *play {
		if err := playWavFile(*out, logger); err != nil {
			logger.Warn("Failed to play audio automatically", zap.Error(err))
		}
	}
}

func listVoices(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	elevenLabs, err := tts.NewElevenLabsTTS(cfg.ElevenLabs, logger)
	if err != nil {
		logger.Fatal("Failed to create Eleven Labs client", zap.Error(err))
	}

	voices, err := elevenLabs.GetAvailableVoices(ctx)
	if err != nil {
		logger.Fatal("Failed to get available voices", zap.Error(err))
	}

	fmt.Printf("Available voices (%d):\n", len(voices))
	for _, voice := range voices {
		fmt.Printf("  - %s (ID: %s)\n", voice.Name, voice.VoiceID)
	}
}

// playWavFile tries the usual command line players in order
func playWavFile(filename string, logger *zap.Logger) error {
	players := [][]string{
		{"afplay"},
		{"aplay", "-q"},
		{"paplay"},
		{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		{"play", "-q"},
	}

	for _, player := range players {
		if _, err := exec.LookPath(player[0]); err != nil {
			continue
		}
		args := append(player[1:], filename)
		logger.Info("Attempting to play audio", zap.String("player", player[0]))
		err := exec.Command(player[0], args...).Run()
		if err == nil {
			return nil
		}
		logger.Debug("Player failed", zap.String("player", player[0]), zap.Error(err))
	}

	return fmt.Errorf("no suitable audio player found")
}
