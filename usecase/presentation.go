package usecase

import (
	"fmt"

	"github.com/satriahrh/lansia/domain/entities"
)

// DoctorDisclaimer closes every spoken answer
const DoctorDisclaimer = "Please confirm this with your doctor."

// DisplayField is one labelled value of a result as shown to the user
type DisplayField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Feature describes one entry of the assistant's home screen
type Feature struct {
	Kind        entities.ResultKind `json:"kind"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Question    string              `json:"question"`
}

// Features lists the assistant features in display order
func Features() []Feature {
	return []Feature{
		{
			Kind:        entities.ResultKindClarity,
			Title:       "Understand Medical Papers",
			Description: "Take a photo of your prescription or copy doctor notes to get a simple explanation.",
			Question:    "What does the medical paper say?",
		},
		{
			Kind:        entities.ResultKindMisinfo,
			Title:       "Check Health News",
			Description: "Is a news story or a text message safe? I'll check it for you.",
			Question:    "What health claim did you hear?",
		},
		{
			Kind:        entities.ResultKindMeds,
			Title:       "Medication Help",
			Description: "Find out how to take your medicine safely and why it's used.",
			Question:    "What is the name of your medicine?",
		},
	}
}

// ReadbackText builds the sentence sequence spoken aloud for a result
func ReadbackText(result entities.Result) string {
	switch r := result.(type) {
	case entities.SimplifiedMedicalInfo:
		return fmt.Sprintf("%s. %s. %s. %s", r.WhatIsIt, r.HowToUse, r.WhyImportant, DoctorDisclaimer)
	case entities.MisinfoResult:
		return fmt.Sprintf("This claim is %s. %s. The trick used is %s. %s", r.TrustLevel, r.Explanation, r.TrickUsed, DoctorDisclaimer)
	case entities.MedicationGuide:
		return fmt.Sprintf("%s. %s. %s. %s. %s", r.Name, r.Dosage, r.Precautions, r.Reminder, DoctorDisclaimer)
	}
	return DoctorDisclaimer
}

// DisplayFields returns the labelled values of a result in display order
func DisplayFields(result entities.Result) []DisplayField {
	switch r := result.(type) {
	case entities.SimplifiedMedicalInfo:
		return []DisplayField{
			{Label: "What is it?", Value: r.WhatIsIt},
			{Label: "How do I use it?", Value: r.HowToUse},
			{Label: "Why is it important?", Value: r.WhyImportant},
		}
	case entities.MisinfoResult:
		return []DisplayField{
			{Label: "Trust Level", Value: string(r.TrustLevel)},
			{Label: "Explanation", Value: r.Explanation},
			{Label: "The Trick Being Used", Value: r.TrickUsed},
		}
	case entities.MedicationGuide:
		return []DisplayField{
			{Label: "Medicine", Value: r.Name},
			{Label: "How to take it", Value: r.Dosage},
			{Label: "Be Careful", Value: r.Precautions},
			{Label: "Daily Reminder", Value: r.Reminder},
		}
	}
	return nil
}
