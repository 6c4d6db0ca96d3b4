package reason

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agenthands/gypsum/internal/core/common"
	"github.com/agenthands/gypsum/internal/core/model"
)

var validConfidence = map[string]bool{
	model.ConfidenceHigh:         true,
	model.ConfidenceMedium:       true,
	model.ConfidenceLow:          true,
	model.ConfidenceInsufficient: true,
}

var validSeverity = map[string]bool{
	model.SeverityCritical:     true,
	model.SeverityHigh:         true,
	model.SeverityMedium:       true,
	model.SeverityLow:          true,
	model.SeverityNotAvailable: true,
}

// parseAnalysis reads the LLM response leniently: every missing or invalid
// field falls back to its sentinel. An unparseable response degrades to a
// Not Available analysis carrying the parse error, never an error return.
func parseAnalysis(responseText, areaName string) model.AreaAnalysis {
	raw, err := common.ExtractJSON(responseText)
	if err == nil {
		var data map[string]any
		if jsonErr := json.Unmarshal([]byte(raw), &data); jsonErr == nil {
			return analysisFromMap(data, areaName)
		} else {
			err = jsonErr
		}
	}
	return fallbackAnalysis(areaName, err)
}

func analysisFromMap(data map[string]any, areaName string) model.AreaAnalysis {
	rc := getMap(data, "root_cause")
	confidence := getString(rc, "confidence", model.ConfidenceInsufficient)
	if !validConfidence[confidence] {
		confidence = model.ConfidenceInsufficient
	}
	rootCause := model.RootCause{
		ProbableCause:      getString(rc, "probable_cause", model.NotAvailable),
		Reasoning:          getString(rc, "reasoning", model.NotAvailable),
		SupportingEvidence: getStringList(rc, "supporting_evidence"),
		Confidence:         confidence,
		EvidenceGaps:       getStringList(rc, "evidence_gaps"),
	}

	sv := getMap(data, "severity")
	level := getString(sv, "severity_level", model.SeverityNotAvailable)
	if !validSeverity[level] {
		level = model.SeverityNotAvailable
	}
	severity := model.SeverityAssessment{
		SeverityLevel:      level,
		Reasoning:          getString(sv, "reasoning", model.NotAvailable),
		RiskFactors:        getStringList(sv, "risk_factors"),
		SupportingEvidence: getStringList(sv, "supporting_evidence"),
	}

	missing := []model.MissingInformation{}
	if items, ok := data["missing_information"].([]any); ok {
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			missing = append(missing, model.MissingInformation{
				Category:    getString(m, "category", model.NotAvailable),
				Description: getString(m, "description", model.NotAvailable),
				Impact:      getString(m, "impact", model.NotAvailable),
			})
		}
	}

	return model.AreaAnalysis{
		Area:               areaName,
		ConflictSummary:    getString(data, "conflict_summary", model.NotAvailable),
		RootCause:          rootCause,
		Severity:           severity,
		MissingInformation: missing,
		InspectionSummary:  getString(data, "inspection_summary", model.NotAvailable),
		ThermalSummary:     getString(data, "thermal_summary", model.NotAvailable),
	}
}

func fallbackAnalysis(areaName string, parseErr error) model.AreaAnalysis {
	return model.AreaAnalysis{
		Area:            areaName,
		ConflictSummary: model.NotAvailable,
		RootCause: model.RootCause{
			ProbableCause:      model.NotAvailable,
			Reasoning:          fmt.Sprintf("Failed to parse LLM response: %v", parseErr),
			SupportingEvidence: []string{},
			Confidence:         model.ConfidenceInsufficient,
			EvidenceGaps:       []string{},
		},
		Severity: model.SeverityAssessment{
			SeverityLevel:      model.SeverityNotAvailable,
			Reasoning:          model.NotAvailable,
			RiskFactors:        []string{},
			SupportingEvidence: []string{},
		},
		MissingInformation: []model.MissingInformation{},
		InspectionSummary:  model.NotAvailable,
		ThermalSummary:     model.NotAvailable,
	}
}

func getMap(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func getString(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getStringList(m map[string]any, key string) []string {
	out := []string{}
	if vs, ok := m[key].([]any); ok {
		for _, v := range vs {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
