package services

import (
	"PulmoScan/inference"
	"PulmoScan/models"
	"PulmoScan/report"
	"PulmoScan/repositories"
	"PulmoScan/utils"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const recentAnalysesLimit = 5

// AnalysisRequest carries one authenticated upload: the image stream plus
// the patient and clinical form fields.
type AnalysisRequest struct {
	DoctorID         int64
	PatientName      string
	PatientAge       int
	PatientGender    string
	Symptoms         string
	MedicalHistory   string
	Temperature      *float64
	OxygenSaturation *int
	HeartRate        *int
	RespiratoryRate  *int
	ImageName        string
	Image            io.Reader
}

// AnalysisResult is the unified response of a completed pipeline run.
type AnalysisResult struct {
	AnalysisID      int64           `json:"analysis_id"`
	Disease         string          `json:"disease"`
	Severity        models.Severity `json:"severity"`
	Confidence      float64         `json:"confidence"`
	AffectedRegions []string        `json:"affected_regions"`
	Recommendations []string        `json:"recommendations"`
	OverlayPath     string          `json:"overlay_path"`
	ReportPath      string          `json:"report_path"`
	IsFallback      bool            `json:"is_fallback"`
	Timestamp       string          `json:"timestamp"`
}

// RecordSummary is one row of a doctor's record listing.
type RecordSummary struct {
	ID              int64           `json:"id"`
	PatientName     string          `json:"patient_name"`
	PatientAge      int             `json:"patient_age"`
	PatientGender   string          `json:"patient_gender"`
	Disease         string          `json:"disease"`
	Severity        models.Severity `json:"severity"`
	Confidence      float64         `json:"confidence"`
	Timestamp       string          `json:"timestamp"`
	ReportAvailable bool            `json:"report_available"`
}

// VitalSigns mirrors the optional scalars captured with an analysis.
type VitalSigns struct {
	Temperature      *float64 `json:"temperature"`
	OxygenSaturation *int     `json:"oxygen_saturation"`
	HeartRate        *int     `json:"heart_rate"`
	RespiratoryRate  *int     `json:"respiratory_rate"`
}

// AnalysisDetail is the full patient + analysis view for one record.
type AnalysisDetail struct {
	Patient struct {
		Name           string `json:"name"`
		Age            int    `json:"age"`
		Gender         string `json:"gender"`
		MedicalHistory string `json:"medical_history"`
	} `json:"patient"`
	Analysis struct {
		Disease          string          `json:"disease"`
		Severity         models.Severity `json:"severity"`
		Confidence       float64         `json:"confidence"`
		Symptoms         string          `json:"symptoms"`
		VitalSigns       VitalSigns      `json:"vital_signs"`
		Recommendations  string          `json:"recommendations"`
		Timestamp        string          `json:"timestamp"`
		GradcamAvailable bool            `json:"gradcam_available"`
		ReportAvailable  bool            `json:"report_available"`
		IsFallback       bool            `json:"is_fallback"`
	} `json:"analysis"`
}

// Stats is the per-doctor dashboard aggregate.
type Stats struct {
	TotalAnalyses       int64            `json:"total_analyses"`
	DiseaseDistribution map[string]int64 `json:"disease_distribution"`
	RecentCount         int              `json:"recent_count"`
}

// ImageKind selects which artifact an image request addresses.
const (
	ImageKindOriginal = "original"
	ImageKindGradcam  = "gradcam"
)

type AnalysisService interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error)
	ListForDoctor(ctx context.Context, doctorID int64) ([]RecordSummary, error)
	GetDetail(ctx context.Context, doctorID, analysisID int64) (*AnalysisDetail, error)
	// ReportFile returns the pdf path plus the suggested download filename.
	ReportFile(ctx context.Context, doctorID, analysisID int64) (string, string, error)
	ImageFile(ctx context.Context, doctorID, analysisID int64, kind string) (string, error)
	GetStats(ctx context.Context, doctorID int64) (*Stats, error)
}

type analysisService struct {
	doctors   repositories.DoctorRepository
	patients  repositories.PatientRepository
	analyses  repositories.AnalysisRepository
	predictor inference.Predictor
	reports   report.Generator
	uploadDir string
}

func NewAnalysisService(
	doctors repositories.DoctorRepository,
	patients repositories.PatientRepository,
	analyses repositories.AnalysisRepository,
	predictor inference.Predictor,
	reports report.Generator,
	uploadDir string,
) AnalysisService {
	return &analysisService{
		doctors:   doctors,
		patients:  patients,
		analyses:  analyses,
		predictor: predictor,
		reports:   reports,
		uploadDir: uploadDir,
	}
}

// Analyze runs the pipeline: store image, infer, persist, report. Failures
// before persistence remove the stored image and surface a generic error;
// a report failure after persistence is tolerated and leaves the analysis
// retrievable without a report.
func (s *analysisService) Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResult, error) {
	if err := utils.ValidateAnalysisInput(utils.AnalysisInput{
		PatientName:   req.PatientName,
		PatientAge:    req.PatientAge,
		PatientGender: req.PatientGender,
		Symptoms:      req.Symptoms,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	imagePath, err := s.storeImage(req.ImageName, req.Image)
	if err != nil {
		log.Printf("Image storage failed: %v", err)
		return nil, models.ErrStorage
	}

	prediction, err := s.predictor.Predict(ctx, imagePath)
	if err != nil {
		// Degrade rather than fail the request; the substitute result is
		// flagged and logged so it is never mistaken for a real prediction.
		log.Printf("Inference failed, substituting fallback prediction: %v", err)
		prediction = inference.Fallback(imagePath, s.uploadDir)
	}

	patient, err := s.lookupOrCreatePatient(ctx, req)
	if err != nil {
		s.cleanupArtifacts(imagePath, prediction.OverlayPath)
		log.Printf("Patient persistence failed: %v", err)
		return nil, models.ErrAnalysisFailed
	}

	analysis := &models.Analysis{
		PatientID:        patient.ID,
		DoctorID:         req.DoctorID,
		Disease:          prediction.Disease,
		Severity:         prediction.Severity,
		Confidence:       prediction.Confidence,
		Symptoms:         req.Symptoms,
		Temperature:      req.Temperature,
		OxygenSaturation: req.OxygenSaturation,
		HeartRate:        req.HeartRate,
		RespiratoryRate:  req.RespiratoryRate,
		Recommendations:  strings.Join(prediction.Recommendations, ", "),
		ImagePath:        imagePath,
		OverlayPath:      prediction.OverlayPath,
		IsFallback:       prediction.IsFallback,
	}
	if err := s.analyses.Create(ctx, analysis); err != nil {
		s.cleanupArtifacts(imagePath, prediction.OverlayPath)
		log.Printf("Analysis persistence failed: %v", err)
		return nil, models.ErrAnalysisFailed
	}

	reportPath := s.generateReport(ctx, analysis, patient, prediction)

	return &AnalysisResult{
		AnalysisID:      analysis.ID,
		Disease:         prediction.Disease,
		Severity:        prediction.Severity,
		Confidence:      prediction.Confidence,
		AffectedRegions: prediction.AffectedRegions,
		Recommendations: prediction.Recommendations,
		OverlayPath:     prediction.OverlayPath,
		ReportPath:      reportPath,
		IsFallback:      prediction.IsFallback,
		Timestamp:       analysis.CreatedAt.Format(time.RFC3339),
	}, nil
}

// storeImage writes the upload under a collision-resistant name before any
// further processing happens.
func (s *analysisService) storeImage(name string, src io.Reader) (string, error) {
	filename := fmt.Sprintf("%d_%s_%s",
		time.Now().UnixNano(),
		uuid.New().String()[:8],
		filepath.Base(name))
	path := filepath.Join(s.uploadDir, filename)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// lookupOrCreatePatient resolves the patient by name, creating the record
// lazily on the first analysis that references it. The name is a soft
// natural key: same-named patients share one record.
func (s *analysisService) lookupOrCreatePatient(ctx context.Context, req *AnalysisRequest) (*models.Patient, error) {
	patient, err := s.patients.GetByName(ctx, req.PatientName)
	if err != nil {
		return nil, err
	}
	if patient != nil {
		return patient, nil
	}

	patient = &models.Patient{
		Name:           req.PatientName,
		Age:            req.PatientAge,
		Gender:         req.PatientGender,
		MedicalHistory: req.MedicalHistory,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// generateReport runs the second persistence phase. Any failure here is
// logged and swallowed: the analysis row already exists and stays
// retrievable with report_available=false.
func (s *analysisService) generateReport(ctx context.Context, analysis *models.Analysis, patient *models.Patient, prediction *models.Prediction) string {
	doctor, err := s.doctors.GetByID(ctx, analysis.DoctorID)
	if err != nil || doctor == nil {
		log.Printf("Report skipped, doctor lookup failed: %v", err)
		return ""
	}

	reportPath, err := s.reports.Generate(analysis, patient, doctor, prediction)
	if err != nil {
		log.Printf("Report generation failed for analysis %d: %v", analysis.ID, err)
		return ""
	}

	if err := s.analyses.UpdateReportPath(ctx, analysis.ID, reportPath); err != nil {
		log.Printf("Report path update failed for analysis %d: %v", analysis.ID, err)
		return ""
	}

	analysis.ReportPath = reportPath
	return reportPath
}

func (s *analysisService) cleanupArtifacts(imagePath, overlayPath string) {
	if imagePath != "" {
		if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove stored image %s: %v", imagePath, err)
		}
	}
	if overlayPath != "" && overlayPath != imagePath {
		if err := os.Remove(overlayPath); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove overlay %s: %v", overlayPath, err)
		}
	}
}

func (s *analysisService) ListForDoctor(ctx context.Context, doctorID int64) ([]RecordSummary, error) {
	analyses, err := s.analyses.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	records := make([]RecordSummary, 0, len(analyses))
	for i := range analyses {
		a := &analyses[i]
		summary := RecordSummary{
			ID:              a.ID,
			Disease:         a.Disease,
			Severity:        a.Severity,
			Confidence:      a.Confidence,
			Timestamp:       a.CreatedAt.Format(time.RFC3339),
			ReportAvailable: a.ReportAvailable(),
		}
		patient, err := s.patients.GetByID(ctx, a.PatientID)
		if err != nil {
			return nil, err
		}
		if patient != nil {
			summary.PatientName = patient.Name
			summary.PatientAge = patient.Age
			summary.PatientGender = patient.Gender
		}
		records = append(records, summary)
	}
	return records, nil
}

// getOwned fetches an analysis and enforces ownership at the data-access
// boundary. Absence and foreign ownership collapse into ErrNotFound so the
// response does not leak whether the resource exists.
func (s *analysisService) getOwned(ctx context.Context, doctorID, analysisID int64) (*models.Analysis, error) {
	analysis, err := s.analyses.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, models.ErrNotFound
	}
	if err := utils.AuthorizeOwns(doctorID, analysis.DoctorID); err != nil {
		log.Printf("Doctor %d denied access to analysis %d owned by %d", doctorID, analysisID, analysis.DoctorID)
		return nil, models.ErrNotFound
	}
	return analysis, nil
}

func (s *analysisService) GetDetail(ctx context.Context, doctorID, analysisID int64) (*AnalysisDetail, error) {
	analysis, err := s.getOwned(ctx, doctorID, analysisID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.GetByID(ctx, analysis.PatientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, models.ErrNotFound
	}

	detail := &AnalysisDetail{}
	detail.Patient.Name = patient.Name
	detail.Patient.Age = patient.Age
	detail.Patient.Gender = patient.Gender
	detail.Patient.MedicalHistory = patient.MedicalHistory
	detail.Analysis.Disease = analysis.Disease
	detail.Analysis.Severity = analysis.Severity
	detail.Analysis.Confidence = analysis.Confidence
	detail.Analysis.Symptoms = analysis.Symptoms
	detail.Analysis.VitalSigns = VitalSigns{
		Temperature:      analysis.Temperature,
		OxygenSaturation: analysis.OxygenSaturation,
		HeartRate:        analysis.HeartRate,
		RespiratoryRate:  analysis.RespiratoryRate,
	}
	detail.Analysis.Recommendations = analysis.Recommendations
	detail.Analysis.Timestamp = analysis.CreatedAt.Format(time.RFC3339)
	detail.Analysis.GradcamAvailable = analysis.OverlayPath != ""
	detail.Analysis.ReportAvailable = analysis.ReportAvailable()
	detail.Analysis.IsFallback = analysis.IsFallback
	return detail, nil
}

func (s *analysisService) ReportFile(ctx context.Context, doctorID, analysisID int64) (string, string, error) {
	analysis, err := s.getOwned(ctx, doctorID, analysisID)
	if err != nil {
		return "", "", err
	}
	if analysis.ReportPath == "" {
		return "", "", models.ErrNotFound
	}
	if _, err := os.Stat(analysis.ReportPath); err != nil {
		return "", "", models.ErrNotFound
	}

	downloadName := fmt.Sprintf("report_%d.pdf", analysis.ID)
	patient, err := s.patients.GetByID(ctx, analysis.PatientID)
	if err == nil && patient != nil {
		downloadName = fmt.Sprintf("report_%s_%s.pdf",
			strings.ReplaceAll(patient.Name, " ", "_"),
			analysis.CreatedAt.Format("20060102"))
	}
	return analysis.ReportPath, downloadName, nil
}

func (s *analysisService) ImageFile(ctx context.Context, doctorID, analysisID int64, kind string) (string, error) {
	analysis, err := s.getOwned(ctx, doctorID, analysisID)
	if err != nil {
		return "", err
	}

	var path string
	switch kind {
	case ImageKindOriginal:
		path = analysis.ImagePath
	case ImageKindGradcam:
		path = analysis.OverlayPath
	default:
		return "", models.ErrNotFound
	}

	if path == "" {
		return "", models.ErrNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return "", models.ErrNotFound
	}
	return path, nil
}

func (s *analysisService) GetStats(ctx context.Context, doctorID int64) (*Stats, error) {
	total, err := s.analyses.CountByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	counts, err := s.analyses.DiseaseCountsByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	distribution := make(map[string]int64, len(counts))
	for _, c := range counts {
		distribution[c.Disease] = c.Count
	}

	recent, err := s.analyses.RecentByDoctor(ctx, doctorID, recentAnalysesLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalAnalyses:       total,
		DiseaseDistribution: distribution,
		RecentCount:         len(recent),
	}, nil
}
