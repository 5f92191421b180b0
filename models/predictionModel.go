package models

// Severity is the graded severity of a detected condition.
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

// Valid reports whether s is one of the known severity grades.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNone, SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Prediction is the structured result produced by the inference adapter and
// consumed by the analysis pipeline. IsFallback marks results substituted
// when the real inference path failed; callers must be able to tell the two
// apart.
type Prediction struct {
	Disease         string   `json:"disease"`
	Severity        Severity `json:"severity"`
	Confidence      float64  `json:"confidence"`
	AffectedRegions []string `json:"affected_regions"`
	Recommendations []string `json:"recommendations"`
	OverlayPath     string   `json:"overlay_path"`
	IsFallback      bool     `json:"is_fallback"`
}
