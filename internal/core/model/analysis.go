package model

// Confidence levels for root-cause inference.
const (
	ConfidenceHigh         = "high"
	ConfidenceMedium       = "medium"
	ConfidenceLow          = "low"
	ConfidenceInsufficient = "insufficient_evidence"
)

// Severity levels, ordered critical > high > medium > low > not_available.
const (
	SeverityCritical     = "critical"
	SeverityHigh         = "high"
	SeverityMedium       = "medium"
	SeverityLow          = "low"
	SeverityNotAvailable = "not_available"
)

type RootCause struct {
	ProbableCause      string   `json:"probable_cause"`
	Reasoning          string   `json:"reasoning"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Confidence         string   `json:"confidence"`
	EvidenceGaps       []string `json:"evidence_gaps"`
}

type SeverityAssessment struct {
	SeverityLevel      string   `json:"severity_level"`
	Reasoning          string   `json:"reasoning"`
	RiskFactors        []string `json:"risk_factors"`
	SupportingEvidence []string `json:"supporting_evidence"`
}

type MissingInformation struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

type AreaAnalysis struct {
	Area               string               `json:"area"`
	HasConflict        bool                 `json:"has_conflict"`
	ConflictSummary    string               `json:"conflict_summary"`
	RootCause          RootCause            `json:"root_cause"`
	Severity           SeverityAssessment   `json:"severity"`
	MissingInformation []MissingInformation `json:"missing_information"`
	InspectionSummary  string               `json:"inspection_summary"`
	ThermalSummary     string               `json:"thermal_summary"`
}

// AnalysisDoc is the analytical_reasoning.json artifact.
type AnalysisDoc struct {
	Areas                     []AreaAnalysis    `json:"areas"`
	OverallMissingInformation []string          `json:"overall_missing_information"`
	AnalysisMetadata          map[string]string `json:"analysis_metadata"`
}
