package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/gypsum/internal/core/model"
)

func sampleAnalysis() model.AnalysisDoc {
	return model.AnalysisDoc{
		Areas: []model.AreaAnalysis{
			{
				Area:            "Bathroom ceiling",
				HasConflict:     true,
				ConflictSummary: "inspection_no_moisture_vs_thermal_moisture_anomaly: no moisture vs anomaly",
				RootCause: model.RootCause{
					ProbableCause:      "Leaking pipe above ceiling",
					Reasoning:          "Thermal anomaly aligned with staining",
					SupportingEvidence: []string{"page 2: anomaly"},
					Confidence:         model.ConfidenceHigh,
					EvidenceGaps:       []string{"no plumbing survey"},
				},
				Severity: model.SeverityAssessment{
					SeverityLevel: model.SeverityCritical,
					Reasoning:     "Active leak risk",
					RiskFactors:   []string{"water damage"},
				},
				MissingInformation: []model.MissingInformation{
					{Category: "moisture measurements", Description: "No readings", Impact: "Extent unknown"},
				},
				InspectionSummary: "Staining on ceiling",
				ThermalSummary:    "Cold spot above shower",
			},
			{
				Area: "Bedroom 1",
				RootCause: model.RootCause{
					ProbableCause: "Condensation on cold wall",
					Reasoning:     "North facing wall with poor airflow",
					Confidence:    model.ConfidenceMedium,
				},
				Severity: model.SeverityAssessment{
					SeverityLevel: model.SeverityHigh,
					Reasoning:     "Recurring damp",
				},
				MissingInformation: []model.MissingInformation{
					{Category: "moisture measurements", Description: "No readings here either", Impact: "Extent unknown"},
				},
				InspectionSummary: "Damp patch on wall",
				ThermalSummary:    "Mild anomaly",
			},
			{
				Area:              "Kitchen",
				RootCause:         model.RootCause{ProbableCause: model.NotAvailable, Confidence: model.ConfidenceInsufficient},
				Severity:          model.SeverityAssessment{SeverityLevel: model.SeverityNotAvailable},
				InspectionSummary: "No issues found",
				ThermalSummary:    model.NotAvailable,
			},
		},
		OverallMissingInformation: []string{"moisture measurements: affects 2 areas"},
		AnalysisMetadata:          map[string]string{"model": "test"},
	}
}

func TestBuildSummary(t *testing.T) {
	s := buildSummary(sampleAnalysis())

	assert.Equal(t, 3, s.TotalAreasInspected)
	assert.Equal(t, 2, s.AreasWithIssues)
	assert.Equal(t, 1, s.CriticalCount)
	assert.Equal(t, 1, s.HighCount)
	assert.Equal(t, 0, s.MediumCount)
	assert.Equal(t, "Critical", s.OverallRiskLevel)
	assert.Equal(t, []string{
		"Bathroom ceiling: Leaking pipe above ceiling",
		"Bedroom 1: Condensation on cold wall",
	}, s.KeyFindings)
}

func TestBuildSummaryCapsKeyFindings(t *testing.T) {
	doc := model.AnalysisDoc{}
	for i := 0; i < 7; i++ {
		doc.Areas = append(doc.Areas, model.AreaAnalysis{
			Area:      "Area",
			RootCause: model.RootCause{ProbableCause: "cause"},
			Severity:  model.SeverityAssessment{SeverityLevel: model.SeverityCritical},
		})
	}
	s := buildSummary(doc)
	assert.Len(t, s.KeyFindings, 5)
	assert.Equal(t, 7, s.CriticalCount)
}

func TestBuildSummaryRiskLadder(t *testing.T) {
	mk := func(levels ...string) model.AnalysisDoc {
		var doc model.AnalysisDoc
		for _, l := range levels {
			doc.Areas = append(doc.Areas, model.AreaAnalysis{Severity: model.SeverityAssessment{SeverityLevel: l}})
		}
		return doc
	}
	assert.Equal(t, "High", buildSummary(mk(model.SeverityLow, model.SeverityHigh)).OverallRiskLevel)
	assert.Equal(t, "Medium", buildSummary(mk(model.SeverityMedium, model.SeverityLow)).OverallRiskLevel)
	assert.Equal(t, "Low", buildSummary(mk(model.SeverityLow)).OverallRiskLevel)
	assert.Equal(t, model.NotAvailable, buildSummary(mk(model.SeverityNotAvailable)).OverallRiskLevel)
}

func TestBuildRootCauses(t *testing.T) {
	causes := buildRootCauses(sampleAnalysis())

	require.Len(t, causes, 2)
	assert.Equal(t, "Bathroom ceiling", causes[0].AreaName)
	assert.Equal(t, "High", causes[0].Confidence)
	assert.Equal(t, "Medium", causes[1].Confidence)
}

func TestTitleWords(t *testing.T) {
	assert.Equal(t, "High", titleWords("high"))
	assert.Equal(t, "Insufficient_Evidence", titleWords("insufficient_evidence"))
	assert.Equal(t, "Not Available", titleWords("not available"))
}

func TestBuildSeverityAssessmentsSkipsNotAvailable(t *testing.T) {
	sections := buildSeverityAssessments(sampleAnalysis())
	require.Len(t, sections, 2)
	assert.Equal(t, "Critical", sections[0].SeverityLevel)
	assert.Equal(t, "High", sections[1].SeverityLevel)
}

func TestBuildRecommendationsOrderAndPhrases(t *testing.T) {
	doc := model.AnalysisDoc{Areas: []model.AreaAnalysis{
		{Area: "Garage", Severity: model.SeverityAssessment{SeverityLevel: model.SeverityLow, Reasoning: "minor"}},
		{Area: "Bathroom", Severity: model.SeverityAssessment{SeverityLevel: model.SeverityCritical, Reasoning: "active leak"}},
		{Area: "Porch", Severity: model.SeverityAssessment{SeverityLevel: model.SeverityNotAvailable}},
	}}
	actions := buildRecommendations(doc)

	require.Len(t, actions, 2)
	assert.Equal(t, "Immediate", actions[0].Priority)
	assert.Equal(t, "Bathroom", actions[0].Area)
	assert.Equal(t, "Urgent investigation and remediation required for Bathroom", actions[0].Action)
	assert.Equal(t, "Critical severity: active leak...", actions[0].Rationale)
	assert.Equal(t, "Monitoring", actions[1].Priority)
	assert.Equal(t, "Continue monitoring Garage", actions[1].Action)
}

func TestBuildRecommendationsTruncatesLongReasoning(t *testing.T) {
	long := strings.Repeat("x", 250)
	doc := model.AnalysisDoc{Areas: []model.AreaAnalysis{
		{Area: "Loft", Severity: model.SeverityAssessment{SeverityLevel: model.SeverityHigh, Reasoning: long}},
	}}
	actions := buildRecommendations(doc)

	require.Len(t, actions, 1)
	assert.Equal(t, "High severity: "+strings.Repeat("x", 200)+"...", actions[0].Rationale)
}

func TestBuildMissingInformationGroupsByCategory(t *testing.T) {
	sections := buildMissingInformation(sampleAnalysis())

	require.Len(t, sections, 1)
	assert.Equal(t, "moisture measurements", sections[0].Category)
	assert.Equal(t, "No readings", sections[0].Description)
	assert.Equal(t, []string{"Bathroom ceiling", "Bedroom 1"}, sections[0].AffectedAreas)
}

func TestBuildAdditionalNotes(t *testing.T) {
	notes := buildAdditionalNotes(sampleAnalysis())

	require.GreaterOrEqual(t, len(notes), 4)
	assert.Equal(t, "Cross-cutting information gaps identified:", notes[0])
	assert.Equal(t, "  - moisture measurements: affects 2 areas", notes[1])
	assert.Contains(t, notes[2], "1 area(s) have conflicts")
	assert.Contains(t, notes[len(notes)-1], "Additional investigation may be required")
}

func TestBuildReportDate(t *testing.T) {
	r := Build(sampleAnalysis(), "Test Property")
	assert.Equal(t, "Test Property", r.PropertyName)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, r.ReportDate)
}
