package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/agenthands/gypsum/internal/core/model"
)

// RenderPDF writes the report as an A4 PDF. Core fonts are latin-1, so
// text runs through the cp1252 translator.
func RenderPDF(r model.Report, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(r.PropertyName, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	w := pdfWriter{pdf: pdf, tr: tr}

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.PropertyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr("Report Date: "+r.ReportDate), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	s := r.Summary
	w.section("1. Property Issue Summary")
	w.line(fmt.Sprintf("Total Areas Inspected: %d", s.TotalAreasInspected))
	w.line(fmt.Sprintf("Areas with Issues: %d", s.AreasWithIssues))
	w.line(fmt.Sprintf("Overall Risk Level: %s", s.OverallRiskLevel))
	w.line(fmt.Sprintf("Severity Breakdown: Critical %d, High %d, Medium %d, Low %d",
		s.CriticalCount, s.HighCount, s.MediumCount, s.LowCount))
	for _, finding := range s.KeyFindings {
		w.bullet(finding)
	}

	w.section("2. Area-wise Observations")
	for _, obs := range r.AreaObservations {
		w.subheading(obs.AreaName)
		w.line("Inspection Findings: " + obs.InspectionSummary)
		w.line("Thermal Findings: " + obs.ThermalSummary)
		if obs.HasConflict {
			w.line("CONFLICT DETECTED: " + obs.ConflictDescription)
		}
	}

	w.section("3. Probable Root Cause")
	if len(r.RootCauses) == 0 {
		w.line(model.NotAvailable)
	}
	for _, rc := range r.RootCauses {
		w.subheading(rc.AreaName)
		w.line("Probable Cause: " + rc.ProbableCause)
		w.line("Reasoning: " + rc.Reasoning)
		w.line("Confidence Level: " + rc.Confidence)
		for _, ev := range rc.SupportingEvidence {
			w.bullet(ev)
		}
	}

	w.section("4. Severity Assessment")
	if len(r.SeverityAssessments) == 0 {
		w.line(model.NotAvailable)
	}
	for _, sev := range r.SeverityAssessments {
		w.subheading(sev.AreaName)
		w.line("Severity Level: " + sev.SeverityLevel)
		w.line("Reasoning: " + sev.Reasoning)
		for _, factor := range sev.RiskFactors {
			w.bullet(factor)
		}
	}

	w.section("5. Recommended Actions")
	if len(r.RecommendedActions) == 0 {
		w.line(model.NotAvailable)
	}
	for _, a := range r.RecommendedActions {
		w.subheading(fmt.Sprintf("%s: %s", a.Priority, a.Area))
		w.line("Action: " + a.Action)
		w.line("Rationale: " + a.Rationale)
	}

	w.section("6. Additional Notes")
	for _, note := range r.AdditionalNotes {
		w.line(strings.TrimSpace(note))
	}

	w.section("7. Missing or Unclear Information")
	if len(r.MissingInformation) == 0 {
		w.line(model.NotAvailable)
	}
	for _, missing := range r.MissingInformation {
		w.subheading(missing.Category)
		w.line("Description: " + missing.Description)
		w.line("Impact: " + missing.Impact)
		if len(missing.AffectedAreas) > 0 {
			w.line("Affected Areas: " + strings.Join(missing.AffectedAreas, ", "))
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf report: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w pdfWriter) section(title string) {
	w.pdf.Ln(3)
	w.pdf.SetFont("Helvetica", "B", 13)
	w.pdf.CellFormat(0, 8, w.tr(title), "", 1, "L", false, 0, "")
	w.pdf.SetFont("Helvetica", "", 10)
}

func (w pdfWriter) subheading(text string) {
	w.pdf.SetFont("Helvetica", "B", 11)
	w.pdf.CellFormat(0, 7, w.tr(text), "", 1, "L", false, 0, "")
	w.pdf.SetFont("Helvetica", "", 10)
}

func (w pdfWriter) line(text string) {
	w.pdf.MultiCell(0, 5, w.tr(text), "", "L", false)
}

func (w pdfWriter) bullet(text string) {
	w.pdf.MultiCell(0, 5, w.tr("- "+text), "", "L", false)
}
