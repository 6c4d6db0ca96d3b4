// Package report assembles the client-facing diagnostic report from the
// analytical reasoning output and renders it in several formats.
package report

import (
	"fmt"
	"sort"
	"time"
	"unicode"

	"github.com/agenthands/gypsum/internal/core/model"
)

const maxKeyFindings = 5

const rationaleReasoningLimit = 200

// Build assembles the complete report from a reasoning document.
func Build(analysis model.AnalysisDoc, propertyName string) model.Report {
	return model.Report{
		PropertyName:        propertyName,
		ReportDate:          time.Now().Format("2006-01-02"),
		Summary:             buildSummary(analysis),
		AreaObservations:    buildAreaObservations(analysis),
		RootCauses:          buildRootCauses(analysis),
		SeverityAssessments: buildSeverityAssessments(analysis),
		RecommendedActions:  buildRecommendations(analysis),
		AdditionalNotes:     buildAdditionalNotes(analysis),
		MissingInformation:  buildMissingInformation(analysis),
	}
}

func buildSummary(analysis model.AnalysisDoc) model.PropertySummary {
	s := model.PropertySummary{
		TotalAreasInspected: len(analysis.Areas),
		KeyFindings:         []string{},
	}

	for _, area := range analysis.Areas {
		severity := area.Severity.SeverityLevel
		if severity != model.SeverityNotAvailable {
			s.AreasWithIssues++
		}
		switch severity {
		case model.SeverityCritical:
			s.CriticalCount++
			s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("%s: %s", area.Area, area.RootCause.ProbableCause))
		case model.SeverityHigh:
			s.HighCount++
			s.KeyFindings = append(s.KeyFindings, fmt.Sprintf("%s: %s", area.Area, area.RootCause.ProbableCause))
		case model.SeverityMedium:
			s.MediumCount++
		case model.SeverityLow:
			s.LowCount++
		}
	}

	if len(s.KeyFindings) > maxKeyFindings {
		s.KeyFindings = s.KeyFindings[:maxKeyFindings]
	}

	switch {
	case s.CriticalCount > 0:
		s.OverallRiskLevel = "Critical"
	case s.HighCount > 0:
		s.OverallRiskLevel = "High"
	case s.MediumCount > 0:
		s.OverallRiskLevel = "Medium"
	case s.LowCount > 0:
		s.OverallRiskLevel = "Low"
	default:
		s.OverallRiskLevel = model.NotAvailable
	}
	return s
}

func buildAreaObservations(analysis model.AnalysisDoc) []model.AreaObservationSection {
	out := make([]model.AreaObservationSection, 0, len(analysis.Areas))
	for _, area := range analysis.Areas {
		desc := model.NotAvailable
		if area.HasConflict {
			desc = area.ConflictSummary
		}
		out = append(out, model.AreaObservationSection{
			AreaName:            area.Area,
			InspectionSummary:   area.InspectionSummary,
			ThermalSummary:      area.ThermalSummary,
			HasConflict:         area.HasConflict,
			ConflictDescription: desc,
		})
	}
	return out
}

func buildRootCauses(analysis model.AnalysisDoc) []model.RootCauseSection {
	var out []model.RootCauseSection
	for _, area := range analysis.Areas {
		if area.RootCause.ProbableCause == model.NotAvailable {
			continue
		}
		out = append(out, model.RootCauseSection{
			AreaName:           area.Area,
			ProbableCause:      area.RootCause.ProbableCause,
			Reasoning:          area.RootCause.Reasoning,
			Confidence:         titleWords(area.RootCause.Confidence),
			SupportingEvidence: area.RootCause.SupportingEvidence,
			EvidenceGaps:       area.RootCause.EvidenceGaps,
		})
	}
	return out
}

func buildSeverityAssessments(analysis model.AnalysisDoc) []model.SeveritySection {
	var out []model.SeveritySection
	for _, area := range analysis.Areas {
		if area.Severity.SeverityLevel == model.SeverityNotAvailable {
			continue
		}
		out = append(out, model.SeveritySection{
			AreaName:      area.Area,
			SeverityLevel: titleWords(area.Severity.SeverityLevel),
			Reasoning:     area.Severity.Reasoning,
			RiskFactors:   area.Severity.RiskFactors,
		})
	}
	return out
}

var severityRank = map[string]int{
	model.SeverityCritical:     0,
	model.SeverityHigh:         1,
	model.SeverityMedium:       2,
	model.SeverityLow:          3,
	model.SeverityNotAvailable: 4,
}

func buildRecommendations(analysis model.AnalysisDoc) []model.RecommendedAction {
	areas := make([]model.AreaAnalysis, len(analysis.Areas))
	copy(areas, analysis.Areas)
	sort.SliceStable(areas, func(i, j int) bool {
		return rankOf(areas[i].Severity.SeverityLevel) < rankOf(areas[j].Severity.SeverityLevel)
	})

	var actions []model.RecommendedAction
	for _, area := range areas {
		reasoning := truncateRunes(area.Severity.Reasoning, rationaleReasoningLimit)
		var a model.RecommendedAction
		switch area.Severity.SeverityLevel {
		case model.SeverityCritical:
			a = model.RecommendedAction{
				Priority:  "Immediate",
				Action:    fmt.Sprintf("Urgent investigation and remediation required for %s", area.Area),
				Rationale: fmt.Sprintf("Critical severity: %s...", reasoning),
			}
		case model.SeverityHigh:
			a = model.RecommendedAction{
				Priority:  "Short-term",
				Action:    fmt.Sprintf("Schedule professional inspection and repair for %s", area.Area),
				Rationale: fmt.Sprintf("High severity: %s...", reasoning),
			}
		case model.SeverityMedium:
			a = model.RecommendedAction{
				Priority:  "Medium-term",
				Action:    fmt.Sprintf("Monitor and plan remediation for %s", area.Area),
				Rationale: fmt.Sprintf("Medium severity: %s...", reasoning),
			}
		case model.SeverityLow:
			a = model.RecommendedAction{
				Priority:  "Monitoring",
				Action:    fmt.Sprintf("Continue monitoring %s", area.Area),
				Rationale: fmt.Sprintf("Low severity: %s...", reasoning),
			}
		default:
			continue
		}
		a.Area = area.Area
		actions = append(actions, a)
	}
	return actions
}

func rankOf(severity string) int {
	if r, ok := severityRank[severity]; ok {
		return r
	}
	return 4
}

func buildMissingInformation(analysis model.AnalysisDoc) []model.MissingInfoSection {
	var order []string
	byCategory := map[string]*model.MissingInfoSection{}

	for _, area := range analysis.Areas {
		for _, missing := range area.MissingInformation {
			sec, ok := byCategory[missing.Category]
			if !ok {
				byCategory[missing.Category] = &model.MissingInfoSection{
					Category:      missing.Category,
					Description:   missing.Description,
					Impact:        missing.Impact,
					AffectedAreas: []string{area.Area},
				}
				order = append(order, missing.Category)
				continue
			}
			if !containsString(sec.AffectedAreas, area.Area) {
				sec.AffectedAreas = append(sec.AffectedAreas, area.Area)
			}
		}
	}

	out := make([]model.MissingInfoSection, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCategory[cat])
	}
	return out
}

func buildAdditionalNotes(analysis model.AnalysisDoc) []string {
	var notes []string

	if len(analysis.OverallMissingInformation) > 0 {
		notes = append(notes, "Cross-cutting information gaps identified:")
		for _, info := range analysis.OverallMissingInformation {
			notes = append(notes, fmt.Sprintf("  - %s", info))
		}
	}

	conflictCount := 0
	for _, area := range analysis.Areas {
		if area.HasConflict {
			conflictCount++
		}
	}
	if conflictCount > 0 {
		notes = append(notes, fmt.Sprintf(
			"\nNote: %d area(s) have conflicts between inspection and thermal data. "+
				"See Area-wise Observations for details.", conflictCount))
	}

	notes = append(notes,
		"\nThis report is based on available inspection and thermal imaging data. "+
			"Additional investigation may be required for areas with insufficient evidence or missing information.")
	return notes
}

// titleWords uppercases the first letter of every alphabetic run, so
// "insufficient_evidence" becomes "Insufficient_Evidence".
func titleWords(s string) string {
	out := []rune(s)
	prevLetter := false
	for i, r := range out {
		if unicode.IsLetter(r) {
			if prevLetter {
				out[i] = unicode.ToLower(r)
			} else {
				out[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(out)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
