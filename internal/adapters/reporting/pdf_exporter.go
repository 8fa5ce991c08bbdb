// Package reporting exports session reports to distributable formats.
package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/lcalzada-xor/crowdwatch/internal/core/domain"
)

// PDFExporter exports session reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export generates a PDF document from a session report.
func (e *PDFExporter) Export(report domain.SessionReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addEngagementBanner(pdf, report)
	e.addStatistics(pdf, report)
	e.addHourlyBreakdown(pdf, report)
	e.addRecommendations(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 15, "CrowdWatch Session Report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Session: started %s, %.1f hours",
		report.SessionStart.Format("2006-01-02 15:04"), report.DurationHours), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (e *PDFExporter) addEngagementBanner(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	r, g, b := e.engagementColor(report.Engagement)
	pdf.SetFillColor(r, g, b)
	pdf.Rect(20, pdf.GetY(), 170, 30, "F")

	y := pdf.GetY()

	pdf.SetFont("Arial", "B", 36)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(25, y+5)
	pdf.CellFormat(80, 20, fmt.Sprintf("%.1f%%", report.ConnectionRate), "", 0, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 18)
	pdf.SetXY(110, y+8)
	pdf.CellFormat(80, 14, fmt.Sprintf("%s engagement", capitalize(string(report.Engagement))), "", 0, "L", false, 0, "")

	pdf.SetY(y + 35)
	pdf.Ln(5)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (e *PDFExporter) engagementColor(tier domain.EngagementTier) (r, g, b int) {
	switch tier {
	case domain.EngagementHigh:
		return 40, 167, 69 // Green
	case domain.EngagementModerate:
		return 255, 149, 0 // Orange
	default:
		return 220, 53, 69 // Red
	}
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Session Statistics", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := [][2]string{
		{"Unique devices", fmt.Sprintf("%d", report.UniqueDevices)},
		{"Total probes", fmt.Sprintf("%d", report.TotalProbes)},
		{"Total connections", fmt.Sprintf("%d", report.TotalConnections)},
		{"Average devices present", fmt.Sprintf("%.1f", report.AvgDevices)},
		{"Peak concurrent devices", fmt.Sprintf("%d", report.PeakConcurrent)},
		{"Average dwell", fmt.Sprintf("%.0f s", report.AvgDwellSeconds)},
		{"Maximum dwell", fmt.Sprintf("%.0f s", report.MaxDwellSeconds)},
		{"Average signal", fmt.Sprintf("%.1f dBm", report.AvgRSSI)},
	}
	if report.PeakHour != "" {
		stats = append(stats, [2]string{"Peak hour", fmt.Sprintf("%s (%d detections)", report.PeakHour, report.PeakHourCount)})
	}

	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(60, 60, 60)
	for _, row := range stats {
		pdf.CellFormat(70, 7, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addHourlyBreakdown(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	if len(report.HourlyBreakdown) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Hourly Activity", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(80, 8, "Hour", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Detections", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range report.HourlyBreakdown {
		pdf.CellFormat(80, 7, row.Hour, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", row.Count), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addRecommendations(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	if len(report.Recommendations) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Recommendations", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for i, rec := range report.Recommendations {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(40, 40, 40)
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. [%s] %s", i+1, strings.ToUpper(rec.Priority), rec.Title), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.MultiCell(0, 5, rec.Description, "", "L", false)
		for _, action := range rec.Actions {
			pdf.CellFormat(0, 5, "  - "+action, "", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report domain.SessionReport) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 5, fmt.Sprintf("CrowdWatch report %s", report.ID), "", 1, "C", false, 0, "")
}
