// Package render превращает собранный отчёт в PDF-документ.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"derma-bot/internal/domain/entity"
	"derma-bot/internal/domain/port"
)

const overlayImageName = "saliency-overlay"

// PDFRenderer рендерер отчёта в A4 PDF
type PDFRenderer struct {
	Title string
}

// NewPDFRenderer создаёт рендерер с заголовком по умолчанию
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Title: "AI Dermatology Report"}
}

// ContentType MIME-тип результата
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render раскладывает поля отчёта по странице и возвращает байты документа
func (r *PDFRenderer) Render(ctx context.Context, report *entity.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	if !report.CreatedAt.IsZero() {
		pdf.SetCreationDate(report.CreatedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.Ln(4)
	line := func(text string) {
		pdf.CellFormat(0, 8, tr(text), "", 1, "L", false, 0, "")
	}

	if report.ID != "" {
		line("Report ID: " + report.ID)
	}
	line("Patient Name: " + report.Patient.Name)
	line(fmt.Sprintf("Age: %d", report.Patient.Age))
	line("Disease: " + report.Outcome.Label)
	line(fmt.Sprintf("Confidence: %.2f%%", report.Outcome.ConfidencePercent))
	line("Severity: " + string(report.Outcome.Severity))
	if report.ReferenceLabel != "" {
		agreement := "disagrees"
		if report.ReferenceAgrees {
			agreement = "agrees"
		}
		line(fmt.Sprintf("Reference label: %s (%s)", report.ReferenceLabel, agreement))
	}

	if len(report.Outcome.TopK) > 0 {
		pdf.Ln(2)
		line("Top predictions:")
		for i, p := range report.Outcome.TopK {
			line(fmt.Sprintf("  %d. %s - %.2f%%", i+1, p.Label, p.ConfidencePercent))
		}
	}

	pdf.Ln(3)
	pdf.MultiCell(0, 8, tr("Symptoms: "+report.Disease.Symptoms), "", "L", false)

	pdf.Ln(2)
	line("Medicines:")
	for _, m := range report.Disease.Medicines {
		line("- " + m)
	}

	pdf.Ln(2)
	line("Recommended specialist: " + report.Disease.Specialist)

	if report.HasOverlay() {
		if err := r.drawOverlay(pdf, report); err != nil {
			return nil, err
		}
	} else if report.ExplanationNote != "" {
		pdf.Ln(2)
		line(report.ExplanationNote)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "", 9)
	disclaimer := report.Disclaimer
	if strings.TrimSpace(disclaimer) == "" {
		disclaimer = entity.Disclaimer
	}
	pdf.MultiCell(0, 7, tr("Disclaimer: "+disclaimer), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) drawOverlay(pdf *gofpdf.Fpdf, report *entity.Report) error {
	var img bytes.Buffer
	if err := png.Encode(&img, report.Overlay); err != nil {
		return fmt.Errorf("encode overlay: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader(overlayImageName, opts, &img)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("register overlay: %w", err)
	}

	pdf.Ln(4)
	pdf.CellFormat(0, 8, "Regions that influenced the prediction:", "", 1, "L", false, 0, "")
	pdf.ImageOptions(overlayImageName, pdf.GetX(), pdf.GetY(), 70, 70, true, opts, 0, "")
	return nil
}

// Проверка реализации интерфейса
var _ port.ReportRenderer = (*PDFRenderer)(nil)
