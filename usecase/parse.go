package usecase

import (
	"encoding/json"
	"fmt"

	"github.com/satriahrh/lansia/domain/entities"
)

// decodeFields reads body as a JSON object and returns the named fields as strings.
// Every field must be present and hold a JSON string; anything else is entities.ErrParse.
func decodeFields(body []byte, names ...string) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %v", entities.ErrParse, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body is null", entities.ErrParse)
	}

	fields := make(map[string]string, len(names))
	for _, name := range names {
		value, ok := raw[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", entities.ErrParse, name)
		}

		var s string
		// json.Unmarshal accepts null into a string, so check the token first
		if len(value) == 0 || value[0] != '"' {
			return nil, fmt.Errorf("%w: field %q is not a string", entities.ErrParse, name)
		}
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", entities.ErrParse, name, err)
		}
		fields[name] = s
	}
	return fields, nil
}

// ParseSimplifiedMedicalInfo validates a simplify answer
func ParseSimplifiedMedicalInfo(body []byte) (entities.SimplifiedMedicalInfo, error) {
	fields, err := decodeFields(body, fieldWhatIsIt, fieldHowToUse, fieldWhyImportant)
	if err != nil {
		return entities.SimplifiedMedicalInfo{}, err
	}
	return entities.SimplifiedMedicalInfo{
		WhatIsIt:     fields[fieldWhatIsIt],
		HowToUse:     fields[fieldHowToUse],
		WhyImportant: fields[fieldWhyImportant],
	}, nil
}

// ParseMisinfoResult validates a claim check answer, including the trust level enum
func ParseMisinfoResult(body []byte) (entities.MisinfoResult, error) {
	fields, err := decodeFields(body, fieldTrustLevel, fieldExplanation, fieldTrickUsed)
	if err != nil {
		return entities.MisinfoResult{}, err
	}

	level := entities.TrustLevel(fields[fieldTrustLevel])
	if !level.Valid() {
		return entities.MisinfoResult{}, fmt.Errorf("%w: unknown trust level %q", entities.ErrParse, level)
	}

	return entities.MisinfoResult{
		TrustLevel:  level,
		Explanation: fields[fieldExplanation],
		TrickUsed:   fields[fieldTrickUsed],
	}, nil
}

// ParseMedicationGuide validates a medication guide answer
func ParseMedicationGuide(body []byte) (entities.MedicationGuide, error) {
	fields, err := decodeFields(body, fieldName, fieldDosage, fieldPrecautions, fieldReminder)
	if err != nil {
		return entities.MedicationGuide{}, err
	}
	return entities.MedicationGuide{
		Name:        fields[fieldName],
		Dosage:      fields[fieldDosage],
		Precautions: fields[fieldPrecautions],
		Reminder:    fields[fieldReminder],
	}, nil
}
