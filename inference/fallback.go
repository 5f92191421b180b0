package inference

import (
	"PulmoScan/models"
	"log"
	"math/rand"
)

// Fallback produces a substitute prediction when the real inference path
// fails, so a broken model does not take down the whole pipeline. The
// result is explicitly flagged so callers can tell it apart from a real
// prediction; it must never be silently treated as one.
func Fallback(imagePath, uploadDir string) *models.Prediction {
	disease := DiseaseClasses[1+rand.Intn(len(DiseaseClasses)-1)] // exclude Normal
	confidence := 75 + rand.Float64()*20

	severities := []models.Severity{models.SeverityMild, models.SeverityModerate, models.SeveritySevere}
	severity := severities[rand.Intn(len(severities))]

	overlayPath, err := GenerateOverlay(imagePath, uploadDir)
	if err != nil {
		log.Printf("Fallback overlay generation failed: %v", err)
		overlayPath = imagePath
	}

	return &models.Prediction{
		Disease:         disease,
		Severity:        severity,
		Confidence:      confidence,
		AffectedRegions: IdentifyRegions(disease),
		Recommendations: GenerateRecommendations(disease, severity),
		OverlayPath:     overlayPath,
		IsFallback:      true,
	}
}
