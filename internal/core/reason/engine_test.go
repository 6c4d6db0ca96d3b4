package reason

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/gypsum/internal/config"
	"github.com/agenthands/gypsum/internal/core/model"
)

const bedroomAnalysisJSON = `{
  "root_cause": {
    "probable_cause": "Water ingress through external wall",
    "reasoning": "Inspection notes damp staining (page 3) and thermal imaging shows a cold anomaly (page 2)",
    "supporting_evidence": ["page 3: damp staining", "page 2: cold anomaly"],
    "confidence": "medium",
    "evidence_gaps": ["moisture meter readings"]
  },
  "severity": {
    "severity_level": "high",
    "reasoning": "Active moisture with thermal confirmation",
    "risk_factors": ["ongoing ingress"],
    "supporting_evidence": ["page 3"]
  },
  "missing_information": [
    {"category": "moisture measurements", "description": "No meter readings", "impact": "Cannot quantify extent"}
  ],
  "inspection_summary": "Damp staining on north wall",
  "thermal_summary": "Cold spot consistent with moisture",
  "conflict_summary": "Not Available",
  "has_conflict": true
}`

func bedroomRecord() model.AreaRecord {
	return model.AreaRecord{
		Area: "Bedroom 1",
		InspectionObservations: []model.Observation{
			{Area: "Bedroom 1", Source: model.SourceInspection, Text: "Damp staining on north wall",
				Evidence: []model.Evidence{{Page: 3, Quote: "damp staining visible"}}},
		},
		ThermalObservations: []model.Observation{
			{Area: "Bedroom 1", Source: model.SourceThermal, Text: "Cold anomaly on north wall | thermal_anomaly=yes",
				Evidence: []model.Evidence{{Page: 2, Quote: "anomaly detected"}}},
		},
	}
}

func TestAnalyzeArea(t *testing.T) {
	mock := &MockLLM{Response: bedroomAnalysisJSON}
	e := NewEngine(mock, config.ReasonConfig{Temperature: 0.1, MaxTokens: 2000}, "llama-3.3-70b-versatile", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "merged_area_data.json")
	require.NoError(t, err)
	require.Len(t, doc.Areas, 1)

	a := doc.Areas[0]
	assert.Equal(t, "Bedroom 1", a.Area)
	assert.Equal(t, "Water ingress through external wall", a.RootCause.ProbableCause)
	assert.Equal(t, model.ConfidenceMedium, a.RootCause.Confidence)
	assert.Equal(t, model.SeverityHigh, a.Severity.SeverityLevel)
	assert.Equal(t, "Damp staining on north wall", a.InspectionSummary)

	assert.Equal(t, "llama-3.3-70b-versatile", doc.AnalysisMetadata["model"])
	assert.Equal(t, "merged_area_data.json", doc.AnalysisMetadata["input_file"])
	assert.Equal(t, "1", doc.AnalysisMetadata["areas_analyzed"])
	assert.NotEmpty(t, doc.AnalysisMetadata["timestamp"])
}

func TestAnalyzePromptContainsObservationsAndConstraints(t *testing.T) {
	mock := &MockLLM{Response: bedroomAnalysisJSON}
	e := NewEngine(mock, config.ReasonConfig{Temperature: 0.1, MaxTokens: 2000}, "m", nil)

	_, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	require.NoError(t, err)

	require.Len(t, mock.Prompts, 1)
	p := mock.Prompts[0]
	assert.Contains(t, p, "CRITICAL CONSTRAINTS:")
	assert.Contains(t, p, "AREA: Bedroom 1")
	assert.Contains(t, p, "Inspection Observation #1:")
	assert.Contains(t, p, "Damp staining on north wall")
	assert.Contains(t, p, "Thermal Observation #1:")
	assert.Contains(t, p, `Page 3, Quote: "damp staining visible"`)
	assert.Contains(t, p, "CONFLICTS DETECTED:\nNONE")

	require.Len(t, mock.Opts, 1)
	require.NotNil(t, mock.Opts[0].Temperature)
	assert.InDelta(t, 0.1, float64(*mock.Opts[0].Temperature), 1e-6)
	assert.Equal(t, 2000, mock.Opts[0].MaxTokens)
	assert.True(t, mock.Opts[0].JSONOnly)
}

func TestAnalyzeConflictFlagComesFromMergeNotModel(t *testing.T) {
	// The response claims has_conflict=true, but the merged record has no
	// conflicts, so the flag must stay false.
	mock := &MockLLM{Response: bedroomAnalysisJSON}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	require.NoError(t, err)
	assert.False(t, doc.Areas[0].HasConflict)
}

func TestAnalyzeConflictSummaryOverwritten(t *testing.T) {
	rec := bedroomRecord()
	rec.ConflictDetected = true
	rec.Conflicts = []model.ConflictFlag{
		{
			Type:                "inspection_no_moisture_vs_thermal_moisture_anomaly",
			InspectionStatement: "No moisture staining observed",
			ThermalStatement:    "Moisture anomaly detected | thermal_anomaly=yes",
			ConflictDetected:    true,
		},
	}

	mock := &MockLLM{Response: bedroomAnalysisJSON}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{rec}}, "in.json")
	require.NoError(t, err)

	a := doc.Areas[0]
	assert.True(t, a.HasConflict)
	assert.Equal(t,
		"inspection_no_moisture_vs_thermal_moisture_anomaly: No moisture staining observed vs Moisture anomaly detected | thermal_anomaly=yes",
		a.ConflictSummary)
}

func TestAnalyzeUnparseableResponseDegrades(t *testing.T) {
	mock := &MockLLM{Response: "I cannot answer that."}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	require.NoError(t, err)

	a := doc.Areas[0]
	assert.Equal(t, model.NotAvailable, a.RootCause.ProbableCause)
	assert.Contains(t, a.RootCause.Reasoning, "Failed to parse LLM response")
	assert.Equal(t, model.ConfidenceInsufficient, a.RootCause.Confidence)
	assert.Equal(t, model.SeverityNotAvailable, a.Severity.SeverityLevel)
}

func TestAnalyzeLLMErrorDegrades(t *testing.T) {
	mock := &MockLLM{Err: errors.New("rate limited")}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	require.NoError(t, err)
	assert.Equal(t, model.SeverityNotAvailable, doc.Areas[0].Severity.SeverityLevel)
}

func TestAnalyzeInvalidEnumsClamped(t *testing.T) {
	resp := `{"root_cause": {"probable_cause": "x", "confidence": "certain"}, "severity": {"severity_level": "catastrophic"}}`
	mock := &MockLLM{Response: resp}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	doc, err := e.Analyze(context.Background(), model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceInsufficient, doc.Areas[0].RootCause.Confidence)
	assert.Equal(t, model.SeverityNotAvailable, doc.Areas[0].Severity.SeverityLevel)
}

func TestAnalyzeCrossCuttingGaps(t *testing.T) {
	resps := []string{
		`{"missing_information": [{"category": "moisture measurements", "description": "a"}]}`,
		`{"missing_information": [{"category": "moisture measurements", "description": "b"}, {"category": "access", "description": "c"}]}`,
		`{"missing_information": [{"category": "access", "description": "d"}]}`,
	}
	mock := &MockLLM{ResponseQueue: resps}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	merged := model.MergedDoc{Areas: []model.AreaRecord{
		{Area: "Bedroom 1"}, {Area: "Bedroom 2"}, {Area: "Kitchen"},
	}}
	doc, err := e.Analyze(context.Background(), merged, "in.json")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"moisture measurements: affects 2 areas",
		"access: affects 2 areas",
	}, doc.OverallMissingInformation)
}

func TestAnalyzeCancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &MockLLM{Response: bedroomAnalysisJSON}
	e := NewEngine(mock, config.ReasonConfig{}, "m", nil)

	_, err := e.Analyze(ctx, model.MergedDoc{Areas: []model.AreaRecord{bedroomRecord()}}, "in.json")
	assert.Error(t, err)
}
