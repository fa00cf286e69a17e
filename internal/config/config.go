package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/satriahrh/lansia/adapters/llm"
	"github.com/satriahrh/lansia/adapters/tts"
)

const (
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
	ProviderElevenLabs = "elevenlabs"

	defaultPort            = "8080"
	defaultRequestTimeout  = 30 * time.Second
	defaultPlaybackTimeout = 90 * time.Second
	defaultMaxInputChars   = 4000
	defaultMaxImageBytes   = 8 << 20
	defaultTokenTTL        = 24 * time.Hour
)

// Config holds application configuration
type Config struct {
	Port string

	LLMProvider string
	TTSProvider string

	Gemini     llm.GeminiConfig
	GeminiTTS  tts.GeminiTTSConfig
	ElevenLabs tts.ElevenLabsConfig

	RequestTimeout  time.Duration
	PlaybackTimeout time.Duration
	MaxInputChars   int
	MaxImageBytes   int

	JWTSecret string
	TokenTTL  time.Duration
	// DeviceCredentials maps serial numbers to secrets
	DeviceCredentials map[string]string
}

// Load reads the optional .env files, then the environment, and validates the result
func Load(logger *zap.Logger, filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	cfg := Config{
		Port:        getEnv("PORT", defaultPort),
		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		TTSProvider: strings.ToLower(getEnv("TTS_PROVIDER", ProviderGemini)),
		Gemini:      llm.NewGeminiConfigFromEnv(),
		GeminiTTS:   tts.NewGeminiTTSConfigFromEnv(),
		ElevenLabs:  tts.NewElevenLabsConfigFromEnv(),
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PlaybackTimeout, err = getDuration("PLAYBACK_TIMEOUT", defaultPlaybackTimeout); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = getDuration("JWT_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.MaxInputChars, err = getInt("MAX_INPUT_CHARS", defaultMaxInputChars); err != nil {
		return Config{}, err
	}
	if cfg.MaxImageBytes, err = getInt("MAX_IMAGE_BYTES", defaultMaxImageBytes); err != nil {
		return Config{}, err
	}
	if cfg.DeviceCredentials, err = ParseDeviceCredentials(os.Getenv("DEVICE_CREDENTIALS")); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if len(cfg.DeviceCredentials) == 0 {
		logger.Warn("DEVICE_CREDENTIALS not set - no device can open a readback stream")
	}

	logger.Info("Configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("llmProvider", cfg.LLMProvider),
		zap.String("ttsProvider", cfg.TTSProvider),
		zap.Duration("requestTimeout", cfg.RequestTimeout),
		zap.Duration("playbackTimeout", cfg.PlaybackTimeout),
		zap.Int("devices", len(cfg.DeviceCredentials)))

	return cfg, nil
}

// Validate checks that the selected providers have what they need
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini LLM provider")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.TTSProvider {
	case ProviderGemini:
		if c.GeminiTTS.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini TTS provider")
		}
	case ProviderElevenLabs:
		if err := tts.ValidateElevenLabsConfig(c.ElevenLabs); err != nil {
			return err
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	if c.RequestTimeout <= 0 || c.PlaybackTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MaxInputChars <= 0 || c.MaxImageBytes <= 0 {
		return errors.New("MAX_INPUT_CHARS and MAX_IMAGE_BYTES must be positive")
	}
	return nil
}

// ParseDeviceCredentials parses "serial:secret" pairs separated by commas
func ParseDeviceCredentials(raw string) (map[string]string, error) {
	credentials := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		serial, secret, found := strings.Cut(pair, ":")
		serial, secret = strings.TrimSpace(serial), strings.TrimSpace(secret)
		if !found || serial == "" || secret == "" {
			return nil, fmt.Errorf("invalid DEVICE_CREDENTIALS entry %q, expected serial:secret", pair)
		}
		if _, exists := credentials[serial]; exists {
			return nil, fmt.Errorf("duplicate serial number %q in DEVICE_CREDENTIALS", serial)
		}
		credentials[serial] = secret
	}
	return credentials, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("45s") or plain seconds ("45")
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
