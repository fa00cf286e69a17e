package entities

// ResultKind identifies which assistant feature produced a result
type ResultKind string

const (
	ResultKindClarity ResultKind = "clarity"
	ResultKindMisinfo ResultKind = "misinfo"
	ResultKindMeds    ResultKind = "meds"
)

// TrustLevel is the classification given to a health claim
type TrustLevel string

const (
	TrustLevelSafe    TrustLevel = "Safe"
	TrustLevelCaution TrustLevel = "Caution"
	TrustLevelUnsafe  TrustLevel = "Unsafe"
)

// TrustLevels lists every valid trust level in schema order
func TrustLevels() []TrustLevel {
	return []TrustLevel{TrustLevelSafe, TrustLevelCaution, TrustLevelUnsafe}
}

// Valid reports whether the trust level is one of the known values
func (t TrustLevel) Valid() bool {
	switch t {
	case TrustLevelSafe, TrustLevelCaution, TrustLevelUnsafe:
		return true
	}
	return false
}

// Result is one of SimplifiedMedicalInfo, MisinfoResult or MedicationGuide.
// The set is closed: only types in this package implement it.
type Result interface {
	Kind() ResultKind
	isResult()
}

// SimplifiedMedicalInfo is the plain-language explanation of a medical text or photo
type SimplifiedMedicalInfo struct {
	WhatIsIt     string `json:"whatIsIt"`
	HowToUse     string `json:"howToUse"`
	WhyImportant string `json:"whyImportant"`
}

// MisinfoResult is the verdict on a health claim
type MisinfoResult struct {
	TrustLevel  TrustLevel `json:"trustLevel"`
	Explanation string     `json:"explanation"`
	TrickUsed   string     `json:"trickUsed"`
}

// MedicationGuide describes how to take a medicine safely
type MedicationGuide struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Precautions string `json:"precautions"`
	Reminder    string `json:"reminder"`
}

func (SimplifiedMedicalInfo) Kind() ResultKind { return ResultKindClarity }
func (MisinfoResult) Kind() ResultKind         { return ResultKindMisinfo }
func (MedicationGuide) Kind() ResultKind       { return ResultKindMeds }

func (SimplifiedMedicalInfo) isResult() {}
func (MisinfoResult) isResult()         {}
func (MedicationGuide) isResult()       {}
