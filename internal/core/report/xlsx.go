package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/agenthands/gypsum/internal/core/model"
)

const (
	summarySheet = "Summary"
	areasSheet   = "Areas"
)

// RenderXLSX writes the report as a workbook with a Summary sheet and a
// per-area Areas sheet.
func RenderXLSX(r model.Report, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	s := r.Summary
	summaryRows := [][]any{
		{"Property Name", r.PropertyName},
		{"Report Date", r.ReportDate},
		{"Total Areas Inspected", s.TotalAreasInspected},
		{"Areas with Issues", s.AreasWithIssues},
		{"Overall Risk Level", s.OverallRiskLevel},
		{"Critical", s.CriticalCount},
		{"High", s.HighCount},
		{"Medium", s.MediumCount},
		{"Low", s.LowCount},
	}
	for i, row := range summaryRows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	for i, finding := range s.KeyFindings {
		row := []any{"Key Finding", finding}
		cell := fmt.Sprintf("A%d", len(summaryRows)+1+i)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write key finding row: %w", err)
		}
	}

	if _, err := f.NewSheet(areasSheet); err != nil {
		return fmt.Errorf("create areas sheet: %w", err)
	}
	header := []any{"Area", "Severity", "Confidence", "Probable Cause", "Conflict"}
	if err := f.SetSheetRow(areasSheet, "A1", &header); err != nil {
		return fmt.Errorf("write areas header: %w", err)
	}

	severityByArea := map[string]string{}
	for _, sev := range r.SeverityAssessments {
		severityByArea[sev.AreaName] = sev.SeverityLevel
	}
	confidenceByArea := map[string]string{}
	causeByArea := map[string]string{}
	for _, rc := range r.RootCauses {
		confidenceByArea[rc.AreaName] = rc.Confidence
		causeByArea[rc.AreaName] = rc.ProbableCause
	}

	for i, obs := range r.AreaObservations {
		conflict := "no"
		if obs.HasConflict {
			conflict = "yes"
		}
		row := []any{
			obs.AreaName,
			valueOr(severityByArea[obs.AreaName], model.NotAvailable),
			valueOr(confidenceByArea[obs.AreaName], model.NotAvailable),
			valueOr(causeByArea[obs.AreaName], model.NotAvailable),
			conflict,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(areasSheet, cell, &row); err != nil {
			return fmt.Errorf("write area row: %w", err)
		}
	}

	if err := f.SetColWidth(areasSheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(areasSheet, "D", "D", 48); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx report: %w", err)
	}
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
