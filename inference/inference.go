// Package inference wraps the external chest X-ray classifier. The model
// itself runs out of process; this package talks to it, grades severity,
// and renders the saliency overlay artifact. When the model is unreachable
// the pipeline substitutes a clearly flagged fallback prediction instead of
// failing the request.
package inference

import (
	"PulmoScan/models"
	"context"
)

// Predictor produces a structured prediction for a stored X-ray image.
type Predictor interface {
	Predict(ctx context.Context, imagePath string) (*models.Prediction, error)
}

// DiseaseClasses are the labels the classifier was trained on.
var DiseaseClasses = []string{
	"Normal",
	"Bacterial Pneumonia",
	"Viral Pneumonia",
	"COVID-19",
	"Tuberculosis",
}

// Severity thresholds over normalized confidence.
const (
	severeThreshold   = 0.9
	moderateThreshold = 0.75
)

// CalculateSeverity grades severity from the disease label and the
// confidence score (0-100).
func CalculateSeverity(disease string, confidence float64) models.Severity {
	if disease == "Normal" {
		return models.SeverityNone
	}

	normalized := confidence / 100.0
	switch {
	case normalized >= severeThreshold:
		return models.SeveritySevere
	case normalized >= moderateThreshold:
		return models.SeverityModerate
	default:
		return models.SeverityMild
	}
}

// IdentifyRegions maps a disease to its typically affected lung regions.
func IdentifyRegions(disease string) []string {
	regionMap := map[string][]string{
		"Normal":              {},
		"Bacterial Pneumonia": {"Lower lobes bilateral", "Right middle lobe"},
		"Viral Pneumonia":     {"Bilateral interstitial pattern", "Perihilar region"},
		"COVID-19":            {"Bilateral peripheral", "Lower lobes", "Ground-glass opacities"},
		"Tuberculosis":        {"Upper lobes", "Apical segments", "Cavitary lesions"},
	}
	if regions, ok := regionMap[disease]; ok {
		return regions
	}
	return []string{"Bilateral lung fields"}
}

// GenerateRecommendations produces clinical recommendations for a disease
// and severity grade.
func GenerateRecommendations(disease string, severity models.Severity) []string {
	if disease == "Normal" {
		return []string{"No immediate treatment required", "Continue routine health monitoring"}
	}

	baseRecommendations := map[string][]string{
		"Bacterial Pneumonia": {
			"Initiate broad-spectrum antibiotic therapy",
			"Monitor oxygen saturation continuously",
			"Chest physiotherapy",
			"Follow-up X-ray in 48-72 hours",
		},
		"Viral Pneumonia": {
			"Supportive care and hydration",
			"Antiviral therapy if indicated",
			"Monitor for secondary bacterial infection",
			"Consider oxygen therapy",
		},
		"COVID-19": {
			"Isolate patient immediately",
			"PCR test confirmation required",
			"Monitor oxygen levels closely",
			"Consider corticosteroids if severe",
			"Thromboprophylaxis assessment",
		},
		"Tuberculosis": {
			"Initiate standard TB treatment regimen",
			"Airborne isolation precautions",
			"Contact tracing required",
			"Sputum culture and sensitivity",
			"Directly observed therapy (DOT)",
		},
	}

	recommendations, ok := baseRecommendations[disease]
	if !ok {
		recommendations = []string{"Consult specialist"}
	}

	switch severity {
	case models.SeveritySevere:
		recommendations = append([]string{
			"URGENT: Consider ICU admission",
			"Immediate specialist consultation required",
		}, recommendations...)
	case models.SeverityModerate:
		recommendations = append([]string{"Hospital admission recommended"}, recommendations...)
	}

	return recommendations
}
