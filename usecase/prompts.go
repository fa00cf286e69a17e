package usecase

import (
	"github.com/satriahrh/lansia/domain/entities"
	"github.com/satriahrh/lansia/domain/repositories"
)

// SystemInstruction is the preamble shared by every structured request
const SystemInstruction = `You are the Universal Elderly Health AI Assistant.
Your primary mission is to bridge the gap between complex medical information and elderly understanding while protecting them from healthcare misinformation.

Core Guidelines:
1. Simplify medical jargon to 5th-grade English.
2. Keep sentences short and rhythmic for easy Text-to-Speech (TTS).
3. Always include the disclaimer: "Please confirm this with your doctor."
4. Use compassionate, patient, and encouraging tones ("we", "us").
5. For misinformation: Provide Trust Level (Safe, Caution, Unsafe) and explain the "trick" (e.g., fear-based language).
6. For simplification, use the structure: "What is it?", "How do I use it?", and "Why is it important?".
7. NEVER give new medical diagnoses.
8. Use simple words (e.g., "high blood pressure" instead of "hypertension").`

const (
	simplifyPromptPrefix   = "Simplify this medical information for a senior. User typed: "
	simplifyImageOnly      = "No text provided, please analyze the attached image."
	claimPromptPrefix      = "Analyze this health claim for a senior: "
	medicationPromptPrefix = "Provide a simple medication guide for: "
)

const (
	simplifyTemperature   float32 = 0.2
	claimTemperature      float32 = 0.1
	medicationTemperature float32 = 0.2
)

// Field names of the remote JSON objects
const (
	fieldWhatIsIt     = "whatIsIt"
	fieldHowToUse     = "howToUse"
	fieldWhyImportant = "whyImportant"
	fieldTrustLevel   = "trustLevel"
	fieldExplanation  = "explanation"
	fieldTrickUsed    = "trickUsed"
	fieldName         = "name"
	fieldDosage       = "dosage"
	fieldPrecautions  = "precautions"
	fieldReminder     = "reminder"
)

func stringProps(names ...string) []repositories.SchemaProperty {
	props := make([]repositories.SchemaProperty, len(names))
	for i, name := range names {
		props[i] = repositories.SchemaProperty{Name: name, Type: repositories.SchemaTypeString}
	}
	return props
}

// SimplifySchema constrains the answer to a SimplifiedMedicalInfo
func SimplifySchema() repositories.ResponseSchema {
	return repositories.ResponseSchema{Properties: stringProps(fieldWhatIsIt, fieldHowToUse, fieldWhyImportant)}
}

// ClaimSchema constrains the answer to a MisinfoResult
func ClaimSchema() repositories.ResponseSchema {
	levels := entities.TrustLevels()
	enum := make([]string, len(levels))
	for i, level := range levels {
		enum[i] = string(level)
	}

	props := stringProps(fieldTrustLevel, fieldExplanation, fieldTrickUsed)
	props[0].Enum = enum
	return repositories.ResponseSchema{Properties: props}
}

// MedicationSchema constrains the answer to a MedicationGuide
func MedicationSchema() repositories.ResponseSchema {
	return repositories.ResponseSchema{Properties: stringProps(fieldName, fieldDosage, fieldPrecautions, fieldReminder)}
}

func simplifyPrompt(text string) string {
	if text == "" {
		return simplifyPromptPrefix + simplifyImageOnly
	}
	return simplifyPromptPrefix + text
}

func claimPrompt(claim string) string {
	return claimPromptPrefix + claim
}

func medicationPrompt(name string) string {
	return medicationPromptPrefix + name
}
