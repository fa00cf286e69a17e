package repositories

import (
	"context"
	"fmt"

	"github.com/satriahrh/lansia/domain/entities"
)

// StructuredGenerator abstracts a text model that can answer with schema-constrained JSON
type StructuredGenerator interface {
	// GenerateStructured issues one request and returns the raw JSON body.
	// Transport failures are wrapped with entities.ErrTransport.
	GenerateStructured(ctx context.Context, request GenerationRequest) ([]byte, error)
}

// GenerationRequest is one structured generation call
type GenerationRequest struct {
	ModelID             string
	InstructionPreamble string
	UserContent         []entities.ContentPart
	Temperature         float32
	ResponseSchema      ResponseSchema
}

// SchemaType is a primitive JSON schema type
type SchemaType string

const (
	SchemaTypeString SchemaType = "string"
)

// SchemaProperty is one field of an object response schema. Every property is required.
type SchemaProperty struct {
	Name string
	Type SchemaType
	Enum []string
}

// ResponseSchema describes a flat JSON object whose properties are all required
type ResponseSchema struct {
	Properties []SchemaProperty
}

// Required returns the property names in declaration order
func (s ResponseSchema) Required() []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}
	return names
}

// Validate checks the request can be sent
func (r GenerationRequest) Validate() error {
	if len(r.UserContent) == 0 {
		return fmt.Errorf("%w: user content cannot be empty", entities.ErrInvalidInput)
	}
	for i, part := range r.UserContent {
		if part.IsEmpty() {
			return fmt.Errorf("%w: content part %d is empty", entities.ErrInvalidInput, i)
		}
	}
	if len(r.ResponseSchema.Properties) == 0 {
		return fmt.Errorf("%w: response schema has no properties", entities.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(r.ResponseSchema.Properties))
	for _, p := range r.ResponseSchema.Properties {
		if p.Name == "" {
			return fmt.Errorf("%w: schema property without name", entities.ErrInvalidInput)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate schema property %s", entities.ErrInvalidInput, p.Name)
		}
		seen[p.Name] = true
		if p.Type != SchemaTypeString {
			return fmt.Errorf("%w: unsupported schema type %q for %s", entities.ErrInvalidInput, p.Type, p.Name)
		}
	}
	return nil
}
