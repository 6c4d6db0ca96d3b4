package model

// Source identifies which document an observation came from.
type Source string

const (
	SourceInspection Source = "inspection"
	SourceThermal    Source = "thermal"
)

// Observation is one factual statement about a building area. Observations
// are created by fact extraction and read-only thereafter; the merge engine
// groups and annotates them but never mutates them.
type Observation struct {
	Area     string     `json:"area"`
	Source   Source     `json:"source"`
	Text     string     `json:"text"`
	Evidence []Evidence `json:"evidence"`
}

// ConflictFlag pairs two observations, one per source, judged to assert
// incompatible facts about the same area. Both statements are retained
// verbatim alongside their evidence; nothing is resolved or discarded.
type ConflictFlag struct {
	Type                string     `json:"type"`
	InspectionStatement string     `json:"inspection_statement"`
	ThermalStatement    string     `json:"thermal_statement"`
	InspectionEvidence  []Evidence `json:"inspection_evidence"`
	ThermalEvidence     []Evidence `json:"thermal_evidence"`
	ConflictDetected    bool       `json:"conflict_detected"`
}

// AreaRecord is the merge output for one building area. ConflictDetected is
// true iff Conflicts is non-empty.
type AreaRecord struct {
	Area                   string         `json:"area"`
	InspectionObservations []Observation  `json:"inspection_observations"`
	ThermalObservations    []Observation  `json:"thermal_observations"`
	Conflicts              []ConflictFlag `json:"conflicts"`
	ConflictDetected       bool           `json:"conflict_detected"`
}

type MergeStats struct {
	InspectionIn     int `json:"inspection_in"`
	ThermalIn        int `json:"thermal_in"`
	InspectionKept   int `json:"inspection_kept"`
	ThermalKept      int `json:"thermal_kept"`
	SkippedMalformed int `json:"skipped_malformed"`
	Conflicts        int `json:"conflicts"`
}

// MergedDoc is the merged_area_data.json artifact. Areas are sorted by
// their normalized area key.
type MergedDoc struct {
	Areas []AreaRecord `json:"areas"`
	Stats MergeStats   `json:"stats"`
}
