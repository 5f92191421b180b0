package inference

import (
	"PulmoScan/models"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// RemoteModel invokes a model-serving endpoint over HTTP. The endpoint
// accepts the image as multipart form data and answers with the predicted
// label and a normalized confidence.
type RemoteModel struct {
	url       string
	uploadDir string
	client    *http.Client
}

// NewRemoteModel builds a predictor against the configured endpoint. An
// empty URL yields a predictor that always errors, which the pipeline
// degrades to a fallback prediction.
func NewRemoteModel(url, uploadDir string) *RemoteModel {
	return &RemoteModel{
		url:       url,
		uploadDir: uploadDir,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type remoteResponse struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"` // normalized 0..1
}

func (m *RemoteModel) Predict(ctx context.Context, imagePath string) (*models.Prediction, error) {
	if m.url == "" {
		return nil, errors.New("no inference endpoint configured")
	}

	body, contentType, err := buildImageForm(imagePath)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build inference request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference endpoint returned status %d", resp.StatusCode)
	}

	var result remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode inference response: %w", err)
	}
	if result.Disease == "" {
		return nil, errors.New("inference response missing disease label")
	}

	confidence := result.Confidence * 100
	severity := CalculateSeverity(result.Disease, confidence)

	overlayPath, err := GenerateOverlay(imagePath, m.uploadDir)
	if err != nil {
		// A failed overlay falls back to the original image rather than
		// failing the prediction.
		log.Printf("Overlay generation failed: %v", err)
		overlayPath = imagePath
	}

	return &models.Prediction{
		Disease:         result.Disease,
		Severity:        severity,
		Confidence:      confidence,
		AffectedRegions: IdentifyRegions(result.Disease),
		Recommendations: GenerateRecommendations(result.Disease, severity),
		OverlayPath:     overlayPath,
		IsFallback:      false,
	}, nil
}

func buildImageForm(imagePath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image for inference: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy image into form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
