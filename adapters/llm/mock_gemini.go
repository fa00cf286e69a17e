package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/satriahrh/lansia/domain/repositories"
)

// MockGeminiLLM answers every request with a canned object that satisfies the schema.
// Used for local development without an API key.
type MockGeminiLLM struct {
	logger *zap.Logger
}

// NewMockGeminiLLM creates a new mock structured generator
func NewMockGeminiLLM(logger *zap.Logger) *MockGeminiLLM {
	return &MockGeminiLLM{logger: logger}
}

// GenerateStructured implements repositories.StructuredGenerator
func (m *MockGeminiLLM) GenerateStructured(ctx context.Context, request repositories.GenerationRequest) ([]byte, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	body := make(map[string]string, len(request.ResponseSchema.Properties))
	for _, p := range request.ResponseSchema.Properties {
		if len(p.Enum) > 0 {
			body[p.Name] = p.Enum[0]
			continue
		}
		body[p.Name] = fmt.Sprintf("This is a simple answer for %s.", p.Name)
	}

	m.logger.Debug("Mock structured generation",
		zap.Strings("fields", request.ResponseSchema.Required()))

	return json.Marshal(body)
}
