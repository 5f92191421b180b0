// Package report renders the clinical PDF report for a completed analysis.
package report

import (
	"PulmoScan/models"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders an analysis snapshot into a paginated document and
// returns the path of the written artifact.
type Generator interface {
	Generate(analysis *models.Analysis, patient *models.Patient, doctor *models.Doctor, prediction *models.Prediction) (string, error)
}

// PDFGenerator writes reports under a fixed directory.
type PDFGenerator struct {
	reportDir string
}

func NewPDFGenerator(reportDir string) *PDFGenerator {
	return &PDFGenerator{reportDir: reportDir}
}

type rgb struct{ r, g, b int }

var severityColors = map[models.Severity]rgb{
	models.SeverityMild:     {16, 185, 129},
	models.SeverityModerate: {245, 158, 11},
	models.SeveritySevere:   {239, 68, 68},
	models.SeverityNone:     {107, 114, 128},
}

var (
	headingBlue = rgb{30, 64, 175}
	labelFill   = rgb{224, 231, 255}
)

func (g *PDFGenerator) Generate(analysis *models.Analysis, patient *models.Patient, doctor *models.Doctor, prediction *models.Prediction) (string, error) {
	now := time.Now()
	filename := fmt.Sprintf("report_%s_%s.pdf",
		strings.ReplaceAll(patient.Name, " ", "_"),
		now.Format("20060102_150405"))
	path := filepath.Join(g.reportDir, filename)

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(headingBlue.r, headingBlue.g, headingBlue.b)
	pdf.CellFormat(0, 12, "AI-ASSISTED CHEST X-RAY ANALYSIS REPORT", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Header block
	g.keyValueTable(pdf, [][2]string{
		{"Report Date:", now.Format("January 2, 2006 3:04 PM")},
		{"Report ID:", fmt.Sprintf("RPT-%06d", analysis.ID)},
		{"Analyzing Physician:", doctor.Name},
		{"Specialty:", doctor.Specialty},
		{"License Number:", doctor.LicenseNumber},
	})
	pdf.Ln(6)

	// Patient information
	g.sectionHeading(pdf, "PATIENT INFORMATION")
	g.keyValueTable(pdf, [][2]string{
		{"Name:", patient.Name},
		{"Age:", fmt.Sprintf("%d years", patient.Age)},
		{"Gender:", patient.Gender},
		{"Patient ID:", fmt.Sprintf("PAT-%06d", patient.ID)},
	})
	pdf.Ln(4)

	// Clinical indication
	g.sectionHeading(pdf, "CLINICAL INDICATION")
	g.paragraph(pdf, "Symptoms: "+analysis.Symptoms)
	if patient.MedicalHistory != "" {
		g.paragraph(pdf, "Medical History: "+patient.MedicalHistory)
	}
	pdf.Ln(4)

	// Vital signs, only the ones recorded
	var vitals [][2]string
	if analysis.Temperature != nil {
		vitals = append(vitals, [2]string{"Temperature:", fmt.Sprintf("%.1f C", *analysis.Temperature)})
	}
	if analysis.OxygenSaturation != nil {
		vitals = append(vitals, [2]string{"Oxygen Saturation:", fmt.Sprintf("%d%%", *analysis.OxygenSaturation)})
	}
	if analysis.HeartRate != nil {
		vitals = append(vitals, [2]string{"Heart Rate:", fmt.Sprintf("%d bpm", *analysis.HeartRate)})
	}
	if analysis.RespiratoryRate != nil {
		vitals = append(vitals, [2]string{"Respiratory Rate:", fmt.Sprintf("%d breaths/min", *analysis.RespiratoryRate)})
	}
	if len(vitals) > 0 {
		g.sectionHeading(pdf, "VITAL SIGNS")
		g.keyValueTable(pdf, vitals)
		pdf.Ln(4)
	}

	// AI analysis results
	g.sectionHeading(pdf, "AI ANALYSIS RESULTS")
	regions := "N/A"
	if len(prediction.AffectedRegions) > 0 {
		regions = strings.Join(prediction.AffectedRegions, ", ")
	}
	g.keyValueTable(pdf, [][2]string{
		{"Detected Condition:", prediction.Disease},
		{"Confidence Level:", fmt.Sprintf("%.1f%%", prediction.Confidence)},
	})
	g.severityRow(pdf, prediction.Severity)
	g.keyValueTable(pdf, [][2]string{
		{"Affected Regions:", regions},
	})
	if prediction.IsFallback {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(239, 68, 68)
		pdf.MultiCell(0, 5, "NOTE: The AI model was unavailable for this analysis; the result above is a demonstration placeholder and must not inform clinical decisions.", "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	// Imaging
	g.embedImages(pdf, analysis.ImagePath, prediction.OverlayPath)

	// Findings
	g.sectionHeading(pdf, "FINDINGS")
	var findings string
	if prediction.Disease != "Normal" {
		area := "the lung fields"
		if len(prediction.AffectedRegions) > 0 {
			area = strings.Join(prediction.AffectedRegions, ", ")
		}
		findings = fmt.Sprintf(
			"The chest X-ray demonstrates findings consistent with %s. AI analysis identified abnormalities in %s with %.1f%% confidence. The severity is assessed as %s.",
			prediction.Disease, area, prediction.Confidence, strings.ToLower(string(prediction.Severity)))
	} else {
		findings = "The chest X-ray demonstrates clear lung fields with no acute abnormalities detected. Cardiac silhouette is within normal limits."
	}
	g.paragraph(pdf, findings)
	pdf.Ln(4)

	// Impression
	g.sectionHeading(pdf, "IMPRESSION")
	g.paragraph(pdf, fmt.Sprintf("%s - %s severity", prediction.Disease, prediction.Severity))
	pdf.Ln(4)

	// Recommendations
	g.sectionHeading(pdf, "CLINICAL RECOMMENDATIONS")
	for i, rec := range prediction.Recommendations {
		g.paragraph(pdf, fmt.Sprintf("%d. %s", i+1, rec))
	}
	pdf.Ln(6)

	// Disclaimer
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.SetDrawColor(150, 150, 150)
	pdf.MultiCell(0, 5,
		"IMPORTANT DISCLAIMER: This report has been generated with AI assistance and represents a preliminary analysis. "+
			"All findings must be reviewed and confirmed by a qualified radiologist or physician before making any clinical decisions. "+
			"This AI system is designed to assist healthcare professionals, not replace clinical judgment. "+
			"The final diagnosis and treatment plan should be determined by the attending physician based on complete clinical context.",
		"1", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(8)

	// Signature block
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 7, "Physician Signature:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, strings.Repeat("_", 40), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(50, 7, "Date:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 7, now.Format("January 2, 2006"), "", 1, "L", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF report: %w", err)
	}

	return path, nil
}

func (g *PDFGenerator) sectionHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(headingBlue.r, headingBlue.g, headingBlue.b)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

func (g *PDFGenerator) paragraph(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, text, "", "L", false)
	pdf.Ln(1)
}

func (g *PDFGenerator) keyValueTable(pdf *gofpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(labelFill.r, labelFill.g, labelFill.b)
		pdf.CellFormat(55, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 8, row[1], "1", 1, "L", false, 0, "")
	}
}

// severityRow renders the severity grade with its color code.
func (g *PDFGenerator) severityRow(pdf *gofpdf.Fpdf, severity models.Severity) {
	c, ok := severityColors[severity]
	if !ok {
		c = rgb{128, 128, 128}
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(labelFill.r, labelFill.g, labelFill.b)
	pdf.CellFormat(55, 8, "Severity Grade:", "1", 0, "L", true, 0, "")
	pdf.SetFillColor(c.r, c.g, c.b)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 8, string(severity), "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// embedImages places the original X-ray and the saliency overlay side by
// side when the files are readable; a missing artifact just skips its slot.
func (g *PDFGenerator) embedImages(pdf *gofpdf.Fpdf, imagePath, overlayPath string) {
	images := [][2]string{
		{"Original X-Ray", imagePath},
		{"Saliency Overlay", overlayPath},
	}

	x := pdf.GetX()
	placed := false
	for _, entry := range images {
		label, path := entry[0], entry[1]
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		imgType := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if imgType == "jpg" {
			imgType = "jpeg"
		}
		if imgType != "jpeg" && imgType != "png" {
			continue
		}
		if !placed {
			g.sectionHeading(pdf, "IMAGING")
			placed = true
		}
		pdf.SetFont("Helvetica", "B", 9)
		pdf.Text(x, pdf.GetY()+4, label)
		pdf.ImageOptions(path, x, pdf.GetY()+6, 80, 0, false,
			gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}, 0, "")
		x += 90
	}
	if placed {
		pdf.Ln(70)
	}
}
