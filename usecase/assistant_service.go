package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

const (
	defaultMaxInputChars  = 4000
	defaultMaxImageBytes  = 8 << 20
	defaultRequestTimeout = 30 * time.Second
)

// AssistantConfig holds the limits applied before any request leaves the server.
// Zero values fall back to defaults.
type AssistantConfig struct {
	TextModel      string
	MaxInputChars  int
	MaxImageBytes  int
	RequestTimeout time.Duration
}

// AssistantService runs the three assistant features against a structured generator
type AssistantService struct {
	generator      repositories.StructuredGenerator
	textModel      string
	maxInputChars  int
	maxImageBytes  int
	requestTimeout time.Duration
	logger         *zap.Logger
}

// NewAssistantService creates a new assistant service
func NewAssistantService(generator repositories.StructuredGenerator, config AssistantConfig, logger *zap.Logger) *AssistantService {
	s := &AssistantService{
		generator:      generator,
		textModel:      config.TextModel,
		maxInputChars:  config.MaxInputChars,
		maxImageBytes:  config.MaxImageBytes,
		requestTimeout: config.RequestTimeout,
		logger:         logger,
	}
	if s.maxInputChars <= 0 {
		s.maxInputChars = defaultMaxInputChars
	}
	if s.maxImageBytes <= 0 {
		s.maxImageBytes = defaultMaxImageBytes
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	return s
}

// MaxInputChars is the rune limit applied to every text input, readback included
func (s *AssistantService) MaxInputChars() int {
	return s.maxInputChars
}

// CheckText rejects blank or oversized text with entities.ErrInvalidInput
func (s *AssistantService) CheckText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s cannot be empty", entities.ErrInvalidInput, field)
	}
	return s.checkLength(field, text)
}

func (s *AssistantService) checkLength(field, text string) error {
	if n := utf8.RuneCountInString(text); n > s.maxInputChars {
		return fmt.Errorf("%w: %s has %d characters, limit is %d", entities.ErrInvalidInput, field, n, s.maxInputChars)
	}
	return nil
}

// Simplify explains medical text, a photo of a medical paper, or both.
// imageDataURL may be a data URL or bare base64; empty means no image.
func (s *AssistantService) Simplify(ctx context.Context, text, imageDataURL string) (entities.SimplifiedMedicalInfo, error) {
	text = strings.TrimSpace(text)
	if text == "" && imageDataURL == "" {
		return entities.SimplifiedMedicalInfo{}, fmt.Errorf("%w: text or image is required", entities.ErrInvalidInput)
	}
	if err := s.checkLength("text", text); err != nil {
		return entities.SimplifiedMedicalInfo{}, err
	}

	content := []entities.ContentPart{entities.NewTextPart(simplifyPrompt(text))}
	if imageDataURL != "" {
		image, err := entities.NewImagePartFromDataURL(imageDataURL)
		if err != nil {
			return entities.SimplifiedMedicalInfo{}, err
		}
		if n := len(image.Image.Data); n > s.maxImageBytes {
			return entities.SimplifiedMedicalInfo{}, fmt.Errorf("%w: image has %d bytes, limit is %d", entities.ErrInvalidInput, n, s.maxImageBytes)
		}
		content = append(content, image)
	}

	body, err := s.generate(ctx, entities.ResultKindClarity, content, simplifyTemperature, SimplifySchema())
	if err != nil {
		return entities.SimplifiedMedicalInfo{}, err
	}
	return parseLogged(s.logger, entities.ResultKindClarity, body, ParseSimplifiedMedicalInfo)
}

// CheckClaim classifies a health claim as Safe, Caution or Unsafe
func (s *AssistantService) CheckClaim(ctx context.Context, claim string) (entities.MisinfoResult, error) {
	claim = strings.TrimSpace(claim)
	if err := s.CheckText("claim", claim); err != nil {
		return entities.MisinfoResult{}, err
	}

	content := []entities.ContentPart{entities.NewTextPart(claimPrompt(claim))}
	body, err := s.generate(ctx, entities.ResultKindMisinfo, content, claimTemperature, ClaimSchema())
	if err != nil {
		return entities.MisinfoResult{}, err
	}
	return parseLogged(s.logger, entities.ResultKindMisinfo, body, ParseMisinfoResult)
}

// MedicationGuide describes how to take the named medicine
func (s *AssistantService) MedicationGuide(ctx context.Context, name string) (entities.MedicationGuide, error) {
	name = strings.TrimSpace(name)
	if err := s.CheckText("name", name); err != nil {
		return entities.MedicationGuide{}, err
	}

	content := []entities.ContentPart{entities.NewTextPart(medicationPrompt(name))}
	body, err := s.generate(ctx, entities.ResultKindMeds, content, medicationTemperature, MedicationSchema())
	if err != nil {
		return entities.MedicationGuide{}, err
	}
	return parseLogged(s.logger, entities.ResultKindMeds, body, ParseMedicationGuide)
}

func (s *AssistantService) generate(ctx context.Context, kind entities.ResultKind, content []entities.ContentPart, temperature float32, schema repositories.ResponseSchema) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	s.logger.Info("Requesting structured answer",
		zap.String("feature", string(kind)),
		zap.Int("parts", len(content)))

	body, err := s.generator.GenerateStructured(ctx, repositories.GenerationRequest{
		ModelID:             s.textModel,
		InstructionPreamble: SystemInstruction,
		UserContent:         content,
		Temperature:         temperature,
		ResponseSchema:      schema,
	})
	if err != nil {
		s.logger.Error("Structured request failed",
			zap.String("feature", string(kind)),
			zap.Error(err))
		return nil, err
	}
	return body, nil
}

func parseLogged[T any](logger *zap.Logger, kind entities.ResultKind, body []byte, parse func([]byte) (T, error)) (T, error) {
	result, err := parse(body)
	if err != nil {
		logger.Warn("Structured answer rejected",
			zap.String("feature", string(kind)),
			zap.Error(err))
	}
	return result, err
}
