package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/gypsum/internal/core/model"
)

const textWidth = 80

// RenderText renders the report as fixed-width plain text.
func RenderText(r model.Report) string {
	var lines []string
	rule := strings.Repeat("=", textWidth)
	thin := strings.Repeat("-", textWidth)

	lines = append(lines,
		rule,
		center(r.PropertyName, textWidth),
		center("Report Date: "+r.ReportDate, textWidth),
		rule,
		"")

	s := r.Summary
	lines = append(lines,
		"1. PROPERTY ISSUE SUMMARY",
		thin,
		fmt.Sprintf("Total Areas Inspected: %d", s.TotalAreasInspected),
		fmt.Sprintf("Areas with Issues: %d", s.AreasWithIssues),
		fmt.Sprintf("Overall Risk Level: %s", s.OverallRiskLevel),
		"",
		"Severity Breakdown:",
		fmt.Sprintf("  Critical: %d", s.CriticalCount),
		fmt.Sprintf("  High: %d", s.HighCount),
		fmt.Sprintf("  Medium: %d", s.MediumCount),
		fmt.Sprintf("  Low: %d", s.LowCount),
		"")
	if len(s.KeyFindings) > 0 {
		lines = append(lines, "Key Findings:")
		for _, finding := range s.KeyFindings {
			lines = append(lines, fmt.Sprintf("  - %s", finding))
		}
	}
	lines = append(lines, "")

	lines = append(lines, "2. AREA-WISE OBSERVATIONS", thin)
	for _, obs := range r.AreaObservations {
		lines = append(lines,
			"\n"+obs.AreaName,
			fmt.Sprintf("  Inspection Findings: %s", obs.InspectionSummary),
			fmt.Sprintf("  Thermal Findings: %s", obs.ThermalSummary))
		if obs.HasConflict {
			lines = append(lines, fmt.Sprintf("  *** CONFLICT DETECTED: %s", obs.ConflictDescription))
		}
		lines = append(lines, "")
	}

	lines = append(lines, "3. PROBABLE ROOT CAUSE", thin)
	if len(r.RootCauses) > 0 {
		for _, rc := range r.RootCauses {
			lines = append(lines,
				"\n"+rc.AreaName,
				fmt.Sprintf("  Probable Cause: %s", rc.ProbableCause),
				fmt.Sprintf("  Reasoning: %s", rc.Reasoning),
				fmt.Sprintf("  Confidence Level: %s", rc.Confidence))
			if len(rc.SupportingEvidence) > 0 {
				lines = append(lines, "  Supporting Evidence:")
				for _, ev := range rc.SupportingEvidence {
					lines = append(lines, fmt.Sprintf("    - %s", ev))
				}
			}
			if len(rc.EvidenceGaps) > 0 {
				lines = append(lines, "  Evidence Gaps:")
				for _, gap := range rc.EvidenceGaps {
					lines = append(lines, fmt.Sprintf("    - %s", gap))
				}
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, model.NotAvailable)
	}
	lines = append(lines, "")

	lines = append(lines, "4. SEVERITY ASSESSMENT (WITH REASONING)", thin)
	if len(r.SeverityAssessments) > 0 {
		for _, sev := range r.SeverityAssessments {
			lines = append(lines,
				"\n"+sev.AreaName,
				fmt.Sprintf("  Severity Level: %s", sev.SeverityLevel),
				fmt.Sprintf("  Reasoning: %s", sev.Reasoning))
			if len(sev.RiskFactors) > 0 {
				lines = append(lines, "  Risk Factors:")
				for _, factor := range sev.RiskFactors {
					lines = append(lines, fmt.Sprintf("    - %s", factor))
				}
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, model.NotAvailable)
	}
	lines = append(lines, "")

	lines = append(lines, "5. RECOMMENDED ACTIONS", thin)
	if len(r.RecommendedActions) > 0 {
		for _, priority := range []string{"Immediate", "Short-term", "Medium-term", "Monitoring"} {
			var group []model.RecommendedAction
			for _, a := range r.RecommendedActions {
				if a.Priority == priority {
					group = append(group, a)
				}
			}
			if len(group) == 0 {
				continue
			}
			lines = append(lines, fmt.Sprintf("\n%s Actions:", priority))
			for _, a := range group {
				lines = append(lines,
					fmt.Sprintf("  %s", a.Area),
					fmt.Sprintf("    Action: %s", a.Action),
					fmt.Sprintf("    Rationale: %s", a.Rationale),
					"")
			}
		}
	} else {
		lines = append(lines, model.NotAvailable)
	}
	lines = append(lines, "")

	lines = append(lines, "6. ADDITIONAL NOTES", thin)
	if len(r.AdditionalNotes) > 0 {
		for _, note := range r.AdditionalNotes {
			lines = append(lines, note, "")
		}
	} else {
		lines = append(lines, model.NotAvailable)
	}
	lines = append(lines, "")

	lines = append(lines, "7. MISSING OR UNCLEAR INFORMATION", thin)
	if len(r.MissingInformation) > 0 {
		for _, missing := range r.MissingInformation {
			lines = append(lines,
				"\n"+missing.Category,
				fmt.Sprintf("  Description: %s", missing.Description),
				fmt.Sprintf("  Impact: %s", missing.Impact))
			if len(missing.AffectedAreas) > 0 {
				lines = append(lines, fmt.Sprintf("  Affected Areas: %s", strings.Join(missing.AffectedAreas, ", ")))
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, model.NotAvailable)
	}

	lines = append(lines, "", rule, center("END OF REPORT", textWidth), rule)
	return strings.Join(lines, "\n")
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}
