package handlers

import (
	"PulmoScan/cache"
	"PulmoScan/middlewares"
	"PulmoScan/models"
	"PulmoScan/report"
	"PulmoScan/repositories"
	"PulmoScan/services"
	"PulmoScan/utils"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixedPredictor struct {
	prediction *models.Prediction
	err        error
}

func (p *fixedPredictor) Predict(_ context.Context, _ string) (*models.Prediction, error) {
	if p.err != nil {
		return nil, p.err
	}
	pred := *p.prediction
	return &pred, nil
}

type fileReportGenerator struct {
	dir string
}

func (g *fileReportGenerator) Generate(analysis *models.Analysis, _ *models.Patient, _ *models.Doctor, _ *models.Prediction) (string, error) {
	path := filepath.Join(g.dir, fmt.Sprintf("report_%d.pdf", analysis.ID))
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// newAnalysisTestRouter builds the protected analysis routes over a real
// repository stack and returns a bearer token for the seeded doctor.
func newAnalysisTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.Doctor{}, &models.Patient{}, &models.Analysis{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	store := cache.NewMemory()
	doctorRepo := repositories.NewDoctorRepository(db, store)
	patientRepo := repositories.NewPatientRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	doctor := &models.Doctor{Name: "Dr. Meredith Gray", Email: "gray@example.com", Password: "hash", LicenseNumber: "MD-12345"}
	if err := doctorRepo.Create(context.Background(), doctor); err != nil {
		t.Fatal(err)
	}

	predictor := &fixedPredictor{prediction: &models.Prediction{
		Disease:         "Bacterial Pneumonia",
		Severity:        models.SeverityModerate,
		Confidence:      82.5,
		AffectedRegions: []string{"Lower lobes bilateral"},
		Recommendations: []string{"Initiate broad-spectrum antibiotic therapy"},
	}}
	var reports report.Generator = &fileReportGenerator{dir: t.TempDir()}
	svc := services.NewAnalysisService(doctorRepo, patientRepo, analysisRepo, predictor, reports, t.TempDir())
	handler := NewAnalysisHandler(svc)

	tokens, err := utils.NewTokenMaker(bytes.Repeat([]byte{7}, utils.SymmetricKeySize))
	if err != nil {
		t.Fatal(err)
	}
	token, _, err := tokens.Issue(doctor.ID, doctor.Name, doctor.Email)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	protected := router.Group("/").Use(middlewares.TokenAuthMiddleware(tokens))
	{
		protected.POST("/analyze", handler.Analyze)
		protected.GET("/records", handler.GetRecords)
		protected.GET("/records/:id", handler.GetRecordDetail)
		protected.GET("/download/report/:id", handler.DownloadReport)
		protected.GET("/image/:type/:id", handler.GetImage)
		protected.GET("/stats", handler.GetStats)
	}
	return router, token
}

// analyzeForm builds the multipart body for /analyze. A nil fields map uses
// a complete valid form; withImage controls the file part.
func analyzeForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	if fields == nil {
		fields = map[string]string{
			"patient_name":   "John Doe",
			"patient_age":    "45",
			"patient_gender": "Male",
			"symptoms":       "Cough, fever, shortness of breath",
		}
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	if withImage {
		part, err := writer.CreateFormFile("image", "xray.jpg")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("fake image bytes")); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func postAnalyze(t *testing.T, router *gin.Engine, token string, fields map[string]string, withImage bool) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := analyzeForm(t, fields, withImage)
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authedGet(t *testing.T, router *gin.Engine, token, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	router, token := newAnalysisTestRouter(t)

	fields := map[string]string{
		"patient_name":      "John Doe",
		"patient_age":       "45",
		"patient_gender":    "Male",
		"symptoms":          "Cough, fever, shortness of breath",
		"medical_history":   "Asthma",
		"temperature":       "38.5",
		"oxygen_saturation": "94",
	}
	w := postAnalyze(t, router, token, fields, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		AnalysisID int64   `json:"analysis_id"`
		Disease    string  `json:"disease"`
		Severity   string  `json:"severity"`
		Confidence float64 `json:"confidence"`
		IsFallback bool    `json:"is_fallback"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.AnalysisID == 0 || resp.Disease != "Bacterial Pneumonia" || resp.Severity != "Moderate" {
		t.Errorf("response = %+v", resp)
	}
	if resp.IsFallback {
		t.Error("real prediction flagged as fallback")
	}

	// Provided vitals are persisted, omitted ones stay null.
	detail := authedGet(t, router, token, fmt.Sprintf("/records/%d", resp.AnalysisID))
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detail.Code)
	}
	var rec struct {
		Analysis struct {
			VitalSigns struct {
				Temperature      *float64 `json:"temperature"`
				OxygenSaturation *int     `json:"oxygen_saturation"`
				HeartRate        *int     `json:"heart_rate"`
			} `json:"vital_signs"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(detail.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	vs := rec.Analysis.VitalSigns
	if vs.Temperature == nil || *vs.Temperature != 38.5 {
		t.Error("temperature not carried through the form")
	}
	if vs.OxygenSaturation == nil || *vs.OxygenSaturation != 94 {
		t.Error("oxygen saturation not carried through the form")
	}
	if vs.HeartRate != nil {
		t.Error("omitted heart rate is not null")
	}
}

func TestAnalyzeEndpointNewbornAge(t *testing.T) {
	router, token := newAnalysisTestRouter(t)

	fields := map[string]string{
		"patient_name":   "Baby Doe",
		"patient_age":    "0",
		"patient_gender": "Female",
		"symptoms":       "Cough, fever",
	}
	w := postAnalyze(t, router, token, fields, true)
	if w.Code != http.StatusOK {
		t.Fatalf("age 0 status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestAnalyzeEndpointBadRequests(t *testing.T) {
	router, token := newAnalysisTestRouter(t)

	t.Run("missing image", func(t *testing.T) {
		if w := postAnalyze(t, router, token, nil, false); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("non-numeric age", func(t *testing.T) {
		fields := map[string]string{
			"patient_name":   "John Doe",
			"patient_age":    "forty-five",
			"patient_gender": "Male",
			"symptoms":       "Cough",
		}
		if w := postAnalyze(t, router, token, fields, true); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("missing symptoms", func(t *testing.T) {
		fields := map[string]string{
			"patient_name":   "John Doe",
			"patient_age":    "45",
			"patient_gender": "Male",
		}
		if w := postAnalyze(t, router, token, fields, true); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("no token", func(t *testing.T) {
		if w := postAnalyze(t, router, "", nil, true); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestRecordsAndStatsEndpoints(t *testing.T) {
	router, token := newAnalysisTestRouter(t)

	if w := postAnalyze(t, router, token, nil, true); w.Code != http.StatusOK {
		t.Fatalf("analyze failed: %s", w.Body.String())
	}

	w := authedGet(t, router, token, "/records")
	if w.Code != http.StatusOK {
		t.Fatalf("records status = %d", w.Code)
	}
	var listing struct {
		Records []struct {
			ID              int64  `json:"id"`
			PatientName     string `json:"patient_name"`
			ReportAvailable bool   `json:"report_available"`
		} `json:"records"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if len(listing.Records) != 1 || listing.Records[0].PatientName != "John Doe" {
		t.Errorf("records = %+v", listing.Records)
	}
	if !listing.Records[0].ReportAvailable {
		t.Error("report not available")
	}
	id := listing.Records[0].ID

	if w := authedGet(t, router, token, "/records/999"); w.Code != http.StatusNotFound {
		t.Errorf("unknown record status = %d, want 404", w.Code)
	}
	if w := authedGet(t, router, token, "/records/not-a-number"); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}

	download := authedGet(t, router, token, fmt.Sprintf("/download/report/%d", id))
	if download.Code != http.StatusOK {
		t.Errorf("report status = %d", download.Code)
	}
	if got := download.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("report content type = %q", got)
	}

	if w := authedGet(t, router, token, fmt.Sprintf("/image/original/%d", id)); w.Code != http.StatusOK {
		t.Errorf("original image status = %d", w.Code)
	}
	if w := authedGet(t, router, token, fmt.Sprintf("/image/thumbnail/%d", id)); w.Code != http.StatusNotFound {
		t.Errorf("unknown image kind status = %d, want 404", w.Code)
	}

	stats := authedGet(t, router, token, "/stats")
	if stats.Code != http.StatusOK {
		t.Fatalf("stats status = %d", stats.Code)
	}
	var agg struct {
		TotalAnalyses       int64            `json:"total_analyses"`
		DiseaseDistribution map[string]int64 `json:"disease_distribution"`
	}
	if err := json.Unmarshal(stats.Body.Bytes(), &agg); err != nil {
		t.Fatal(err)
	}
	if agg.TotalAnalyses != 1 || agg.DiseaseDistribution["Bacterial Pneumonia"] != 1 {
		t.Errorf("stats = %+v", agg)
	}
}
