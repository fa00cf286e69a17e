package llm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

const (
	defaultModel          = "gemini-3-flash-preview"
	defaultTimeoutSeconds = 30
	jsonMIMEType          = "application/json"
)

// GeminiConfig holds configuration for the GeminiLLM adapter
// Required fields:
// - APIKey: Google AI API key
// Optional fields with defaults:
// - BaseURL: override of the Gemini API endpoint (default: SDK default)
// - Model: model used when a request does not name one (default: "gemini-3-flash-preview")
// - TimeoutSeconds: per-request timeout (default: 30)
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// GeminiLLM implements the StructuredGenerator interface using Google's Gemini API
type GeminiLLM struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

// Ensure GeminiLLM implements the StructuredGenerator interface
var _ repositories.StructuredGenerator = (*GeminiLLM)(nil)

// ValidateGeminiConfig validates the GeminiConfig
func ValidateGeminiConfig(config GeminiConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("Google AI API key is required")
	}

	if config.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be positive, got %d", config.TimeoutSeconds)
	}

	return nil
}

// NewGeminiLLM creates a new Gemini structured generation client
func NewGeminiLLM(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*GeminiLLM, error) {
	if err := ValidateGeminiConfig(config); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
		logger.Info("Using default model", zap.String("model", model))
	}

	timeoutSeconds := config.TimeoutSeconds
	if timeoutSeconds == 0 {
		timeoutSeconds = defaultTimeoutSeconds
		logger.Info("Using default timeoutSeconds", zap.Int("timeoutSeconds", timeoutSeconds))
	}

	return &GeminiLLM{
		client:  client,
		logger:  logger,
		model:   model,
		timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// GenerateStructured sends one schema-constrained request and returns the raw JSON text
func (g *GeminiLLM) GenerateStructured(ctx context.Context, request repositories.GenerationRequest) ([]byte, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	model := request.ModelID
	if model == "" {
		model = g.model
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(request.Temperature),
		ResponseMIMEType: jsonMIMEType,
		ResponseSchema:   toGeminiSchema(request.ResponseSchema),
	}
	if request.InstructionPreamble != "" {
		config.SystemInstruction = genai.NewContentFromText(request.InstructionPreamble, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(toGeminiParts(request.UserContent), genai.RoleUser),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := time.Now()
	response, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		g.logger.Error("Structured generation failed",
			zap.String("model", model),
			zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: generate content: %w", entities.ErrTransport, ctxErr)
		}
		return nil, fmt.Errorf("%w: generate content: %v", entities.ErrTransport, err)
	}

	text := responseText(response)
	if text == "" {
		g.logger.Warn("Structured generation returned no text", zap.String("model", model))
		return nil, fmt.Errorf("%w: response has no text", entities.ErrParse)
	}

	g.logger.Info("Structured generation completed",
		zap.String("model", model),
		zap.Strings("fields", request.ResponseSchema.Required()),
		zap.Duration("elapsed", time.Since(started)))

	return []byte(text), nil
}

// toGeminiSchema converts a flat all-required object schema into the SDK schema
func toGeminiSchema(schema repositories.ResponseSchema) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(schema.Properties))
	for _, p := range schema.Properties {
		properties[p.Name] = &genai.Schema{
			Type: genai.TypeString,
			Enum: p.Enum,
		}
	}

	return &genai.Schema{
		Type:             genai.TypeObject,
		Properties:       properties,
		Required:         schema.Required(),
		PropertyOrdering: schema.Required(),
	}
}

func toGeminiParts(content []entities.ContentPart) []*genai.Part {
	parts := make([]*genai.Part, 0, len(content))
	for _, c := range content {
		if c.Text != "" {
			parts = append(parts, genai.NewPartFromText(c.Text))
		}
		if c.Image != nil && len(c.Image.Data) > 0 {
			parts = append(parts, genai.NewPartFromBytes(c.Image.Data, c.Image.MIMEType))
		}
	}
	return parts
}

// responseText concatenates the text parts of the first candidate
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// NewGeminiConfigFromEnv creates a new GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	config := GeminiConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
		Model:   os.Getenv("GEMINI_TEXT_MODEL"),
	}

	if timeoutStr := os.Getenv("GEMINI_TIMEOUT_SECONDS"); timeoutStr != "" {
		if timeout, err := strconv.Atoi(timeoutStr); err == nil && timeout > 0 {
			config.TimeoutSeconds = timeout
		}
	}

	return config
}
