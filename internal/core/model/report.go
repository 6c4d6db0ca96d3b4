package model

type PropertySummary struct {
	TotalAreasInspected int      `json:"total_areas_inspected"`
	AreasWithIssues     int      `json:"areas_with_issues"`
	CriticalCount       int      `json:"critical_count"`
	HighCount           int      `json:"high_count"`
	MediumCount         int      `json:"medium_count"`
	LowCount            int      `json:"low_count"`
	KeyFindings         []string `json:"key_findings"`
	OverallRiskLevel    string   `json:"overall_risk_level"`
}

type AreaObservationSection struct {
	AreaName            string `json:"area_name"`
	InspectionSummary   string `json:"inspection_summary"`
	ThermalSummary      string `json:"thermal_summary"`
	HasConflict         bool   `json:"has_conflict"`
	ConflictDescription string `json:"conflict_description"`
}

type RootCauseSection struct {
	AreaName           string   `json:"area_name"`
	ProbableCause      string   `json:"probable_cause"`
	Reasoning          string   `json:"reasoning"`
	Confidence         string   `json:"confidence"`
	SupportingEvidence []string `json:"supporting_evidence"`
	EvidenceGaps       []string `json:"evidence_gaps"`
}

type SeveritySection struct {
	AreaName      string   `json:"area_name"`
	SeverityLevel string   `json:"severity_level"`
	Reasoning     string   `json:"reasoning"`
	RiskFactors   []string `json:"risk_factors"`
}

type RecommendedAction struct {
	Priority  string `json:"priority"`
	Area      string `json:"area"`
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

type MissingInfoSection struct {
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Impact        string   `json:"impact"`
	AffectedAreas []string `json:"affected_areas"`
}

// Report is the complete client-facing defect-and-diagnosis report.
type Report struct {
	PropertyName        string                   `json:"property_name"`
	ReportDate          string                   `json:"report_date"` // YYYY-MM-DD
	Summary             PropertySummary          `json:"property_issue_summary"`
	AreaObservations    []AreaObservationSection `json:"area_observations"`
	RootCauses          []RootCauseSection       `json:"root_causes"`
	SeverityAssessments []SeveritySection        `json:"severity_assessments"`
	RecommendedActions  []RecommendedAction      `json:"recommended_actions"`
	AdditionalNotes     []string                 `json:"additional_notes"`
	MissingInformation  []MissingInfoSection     `json:"missing_information"`
}
