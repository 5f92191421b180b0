package handlers

import (
	"PulmoScan/middlewares"
	"PulmoScan/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	service services.AnalysisService
}

func NewAnalysisHandler(service services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// Analyze accepts the multipart upload, runs the analysis pipeline, and
// returns the unified result.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Authentication required", http.StatusUnauthorized, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		middlewares.HttpError(c, "Image file is required", http.StatusBadRequest, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		middlewares.HttpError(c, "Failed to read uploaded image", http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	age, err := strconv.Atoi(c.PostForm("patient_age"))
	if err != nil {
		middlewares.HttpError(c, "Invalid patient_age", http.StatusBadRequest, err)
		return
	}

	req := &services.AnalysisRequest{
		DoctorID:         doctorID,
		PatientName:      c.PostForm("patient_name"),
		PatientAge:       age,
		PatientGender:    c.PostForm("patient_gender"),
		Symptoms:         c.PostForm("symptoms"),
		MedicalHistory:   c.PostForm("medical_history"),
		Temperature:      optionalFloat(c.PostForm("temperature")),
		OxygenSaturation: optionalInt(c.PostForm("oxygen_saturation")),
		HeartRate:        optionalInt(c.PostForm("heart_rate")),
		RespiratoryRate:  optionalInt(c.PostForm("respiratory_rate")),
		ImageName:        fileHeader.Filename,
		Image:            file,
	}

	result, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, result, http.StatusOK)
}

// GetRecords lists the calling doctor's analyses, newest first.
func (h *AnalysisHandler) GetRecords(c *gin.Context) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Authentication required", http.StatusUnauthorized, err)
		return
	}

	records, err := h.service.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, gin.H{"records": records}, http.StatusOK)
}

// GetRecordDetail returns the full patient + analysis view for one record.
func (h *AnalysisHandler) GetRecordDetail(c *gin.Context) {
	doctorID, analysisID, ok := h.idAddressedRequest(c)
	if !ok {
		return
	}

	detail, err := h.service.GetDetail(c.Request.Context(), doctorID, analysisID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, detail, http.StatusOK)
}

// DownloadReport streams the PDF report.
func (h *AnalysisHandler) DownloadReport(c *gin.Context) {
	doctorID, analysisID, ok := h.idAddressedRequest(c)
	if !ok {
		return
	}

	path, downloadName, err := h.service.ReportFile(c.Request.Context(), doctorID, analysisID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(path, downloadName)
}

// GetImage streams the original X-ray or the saliency overlay.
func (h *AnalysisHandler) GetImage(c *gin.Context) {
	doctorID, analysisID, ok := h.idAddressedRequest(c)
	if !ok {
		return
	}

	path, err := h.service.ImageFile(c.Request.Context(), doctorID, analysisID, c.Param("type"))
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	c.File(path)
}

// GetStats returns the calling doctor's dashboard aggregate.
func (h *AnalysisHandler) GetStats(c *gin.Context) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Authentication required", http.StatusUnauthorized, err)
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), doctorID)
	if err != nil {
		middlewares.RespondError(c, err)
		return
	}
	middlewares.RespondJSON(c, stats, http.StatusOK)
}

func (h *AnalysisHandler) idAddressedRequest(c *gin.Context) (doctorID, analysisID int64, ok bool) {
	doctorID, err := middlewares.ExtractDoctorIDFromContext(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, "Authentication required", http.StatusUnauthorized, err)
		return 0, 0, false
	}

	analysisID, err = strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middlewares.HttpError(c, "Invalid analysis ID", http.StatusBadRequest, err)
		return 0, 0, false
	}
	return doctorID, analysisID, true
}

func optionalFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func optionalInt(value string) *int {
	if value == "" {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &i
}
