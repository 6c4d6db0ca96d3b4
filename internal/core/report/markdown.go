package report

import (
	"fmt"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agenthands/gypsum/internal/core/model"
)

// RenderMarkdown renders the seven numbered report sections as Markdown.
func RenderMarkdown(r model.Report) (string, error) {
	var sb strings.Builder
	doc := md.NewMarkdown(&sb)

	doc.H1(r.PropertyName).
		PlainText(md.Bold("Report Date:") + " " + r.ReportDate).LF().
		HorizontalRule().LF()

	s := r.Summary
	doc.H2("1. Property Issue Summary").LF().
		BulletList(
			md.Bold("Total Areas Inspected:")+fmt.Sprintf(" %d", s.TotalAreasInspected),
			md.Bold("Areas with Issues:")+fmt.Sprintf(" %d", s.AreasWithIssues),
			md.Bold("Overall Risk Level:")+" "+s.OverallRiskLevel,
		).LF().
		PlainText(md.Bold("Severity Breakdown:")).
		BulletList(
			fmt.Sprintf("Critical: %d", s.CriticalCount),
			fmt.Sprintf("High: %d", s.HighCount),
			fmt.Sprintf("Medium: %d", s.MediumCount),
			fmt.Sprintf("Low: %d", s.LowCount),
		).LF()
	if len(s.KeyFindings) > 0 {
		doc.PlainText(md.Bold("Key Findings:")).BulletList(s.KeyFindings...).LF()
	}
	doc.HorizontalRule().LF()

	doc.H2("2. Area-wise Observations").LF()
	for _, obs := range r.AreaObservations {
		doc.H3(obs.AreaName).LF().
			PlainText(md.Bold("Inspection Findings:") + " " + obs.InspectionSummary).LF().
			PlainText(md.Bold("Thermal Findings:") + " " + obs.ThermalSummary).LF()
		if obs.HasConflict {
			doc.PlainText(md.Bold("⚠️ CONFLICT DETECTED:") + " " + obs.ConflictDescription).LF()
		}
	}
	doc.HorizontalRule().LF()

	doc.H2("3. Probable Root Cause").LF()
	if len(r.RootCauses) == 0 {
		doc.PlainText(model.NotAvailable).LF()
	}
	for _, rc := range r.RootCauses {
		doc.H3(rc.AreaName).LF().
			PlainText(md.Bold("Probable Cause:") + " " + rc.ProbableCause).LF().
			PlainText(md.Bold("Reasoning:") + " " + rc.Reasoning).LF().
			PlainText(md.Bold("Confidence Level:") + " " + rc.Confidence).LF()
		if len(rc.SupportingEvidence) > 0 {
			doc.PlainText(md.Bold("Supporting Evidence:")).BulletList(rc.SupportingEvidence...).LF()
		}
		if len(rc.EvidenceGaps) > 0 {
			doc.PlainText(md.Bold("Evidence Gaps:")).BulletList(rc.EvidenceGaps...).LF()
		}
	}
	doc.HorizontalRule().LF()

	doc.H2("4. Severity Assessment (with Reasoning)").LF()
	if len(r.SeverityAssessments) == 0 {
		doc.PlainText(model.NotAvailable).LF()
	}
	for _, sev := range r.SeverityAssessments {
		doc.H3(sev.AreaName).LF().
			PlainText(md.Bold("Severity Level:") + " " + sev.SeverityLevel).LF().
			PlainText(md.Bold("Reasoning:") + " " + sev.Reasoning).LF()
		if len(sev.RiskFactors) > 0 {
			doc.PlainText(md.Bold("Risk Factors:")).BulletList(sev.RiskFactors...).LF()
		}
	}
	doc.HorizontalRule().LF()

	doc.H2("5. Recommended Actions").LF()
	if len(r.RecommendedActions) == 0 {
		doc.PlainText(model.NotAvailable).LF()
	}
	writeActionGroup(doc, r.RecommendedActions, "Immediate", "Immediate Actions (Critical Priority)")
	writeActionGroup(doc, r.RecommendedActions, "Short-term", "Short-term Actions (High Priority)")
	writeActionGroup(doc, r.RecommendedActions, "Medium-term", "Medium-term Actions")
	writeActionGroup(doc, r.RecommendedActions, "Monitoring", "Monitoring Recommendations")
	doc.HorizontalRule().LF()

	doc.H2("6. Additional Notes").LF()
	if len(r.AdditionalNotes) == 0 {
		doc.PlainText(model.NotAvailable).LF()
	}
	for _, note := range r.AdditionalNotes {
		doc.PlainText(note).LF()
	}
	doc.HorizontalRule().LF()

	doc.H2("7. Missing or Unclear Information").LF()
	if len(r.MissingInformation) == 0 {
		doc.PlainText(model.NotAvailable).LF()
	}
	for _, missing := range r.MissingInformation {
		doc.H3(missing.Category).LF().
			PlainText(md.Bold("Description:") + " " + missing.Description).LF().
			PlainText(md.Bold("Impact:") + " " + missing.Impact).LF()
		if len(missing.AffectedAreas) > 0 {
			doc.PlainText(md.Bold("Affected Areas:") + " " + strings.Join(missing.AffectedAreas, ", ")).LF()
		}
	}

	if err := doc.Build(); err != nil {
		return "", fmt.Errorf("build markdown report: %w", err)
	}
	return sb.String(), nil
}

func writeActionGroup(doc *md.Markdown, actions []model.RecommendedAction, priority, heading string) {
	var group []model.RecommendedAction
	for _, a := range actions {
		if a.Priority == priority {
			group = append(group, a)
		}
	}
	if len(group) == 0 {
		return
	}
	doc.H3(heading).LF()
	for _, a := range group {
		doc.PlainText(md.Bold(a.Area)).
			BulletList(
				"Action: "+a.Action,
				"Rationale: "+a.Rationale,
			).LF()
	}
}
