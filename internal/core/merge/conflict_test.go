package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/gypsum/internal/core/model"
)

func moistureRule() Rule {
	return DefaultRules()[0]
}

func TestClassifyPolarity(t *testing.T) {
	rule := moistureRule()

	tests := []struct {
		name string
		text string
		want polarity
	}{
		{"negated subject", "No visible moisture staining", absent},
		{"plain subject", "Thermal anomaly consistent with moisture", present},
		{"absent phrase", "Surfaces dry throughout", absent},
		{"marker token no", "Paint intact | moisture_signs=no", absent},
		{"marker token yes", "thermal_anomaly=yes | damp patch likely", present},
		{"negator outside window", "no cracking was found although moisture was observed", present},
		{"unrelated subject", "Peeling paint near the skirting", unaddressed},
		{"empty", "", unaddressed},
		{"sentinel", "Not Available", unaddressed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.classify(tt.text))
		})
	}
}

func TestDetectConflictsOppositePolarity(t *testing.T) {
	inspection := []model.Observation{{
		Area:     "Bedroom wall",
		Source:   model.SourceInspection,
		Text:     "no moisture detected",
		Evidence: []model.Evidence{{Page: 3, Quote: "no moisture detected"}},
	}}
	thermal := []model.Observation{{
		Area:     "Bedroom wall",
		Source:   model.SourceThermal,
		Text:     "moisture anomaly detected",
		Evidence: []model.Evidence{{Page: 2, Quote: "moisture anomaly"}},
	}}

	conflicts := detectConflicts(DefaultRules(), inspection, thermal)
	require.Len(t, conflicts, 1)

	c := conflicts[0]
	assert.Equal(t, "inspection_no_moisture_vs_thermal_moisture_anomaly", c.Type)
	assert.Equal(t, "no moisture detected", c.InspectionStatement)
	assert.Equal(t, "moisture anomaly detected", c.ThermalStatement)
	assert.Equal(t, inspection[0].Evidence, c.InspectionEvidence)
	assert.Equal(t, thermal[0].Evidence, c.ThermalEvidence)
	assert.True(t, c.ConflictDetected)
}

func TestDetectConflictsReversedDirection(t *testing.T) {
	// Inspection asserts presence, thermal asserts absence. Still a
	// same-subject opposite-polarity pair.
	inspection := []model.Observation{{
		Area: "Kitchen", Source: model.SourceInspection, Text: "Damp patch spreading along the wall",
	}}
	thermal := []model.Observation{{
		Area: "Kitchen", Source: model.SourceThermal, Text: "No moisture anomaly found in this area",
	}}

	conflicts := detectConflicts(DefaultRules(), inspection, thermal)
	assert.Len(t, conflicts, 1)
}

func TestDetectConflictsDifferentSubjectsNeverFlag(t *testing.T) {
	inspection := []model.Observation{{
		Area: "Living room", Source: model.SourceInspection, Text: "peeling paint",
	}}
	thermal := []model.Observation{{
		Area: "Living room", Source: model.SourceThermal, Text: "window drafts",
	}}

	conflicts := detectConflicts(DefaultRules(), inspection, thermal)
	assert.Empty(t, conflicts)
}

func TestDetectConflictsSamePolarityNeverFlag(t *testing.T) {
	inspection := []model.Observation{{
		Area: "Bathroom", Source: model.SourceInspection, Text: "damp staining around the extractor",
	}}
	thermal := []model.Observation{{
		Area: "Bathroom", Source: model.SourceThermal, Text: "thermal_anomaly=yes | moisture pattern on ceiling",
	}}

	conflicts := detectConflicts(DefaultRules(), inspection, thermal)
	assert.Empty(t, conflicts)
}

func TestDetectConflictsEveryPairFlagged(t *testing.T) {
	inspection := []model.Observation{
		{Area: "Attic", Source: model.SourceInspection, Text: "no moisture on rafters"},
		{Area: "Attic", Source: model.SourceInspection, Text: "no sign of moisture at ridge"},
	}
	thermal := []model.Observation{
		{Area: "Attic", Source: model.SourceThermal, Text: "thermal_anomaly=yes | moisture ingress at ridge"},
	}

	conflicts := detectConflicts(DefaultRules(), inspection, thermal)
	assert.Len(t, conflicts, 2)
}

func TestDetectConflictsCustomRule(t *testing.T) {
	rules := []Rule{{
		Type:     "inspection_no_crack_vs_thermal_crack",
		Subjects: []string{"crack", "cracking"},
		Negators: []string{"no", "not"},
		Absent:   []string{"no crack"},
	}}

	inspection := []model.Observation{{
		Area: "Facade", Source: model.SourceInspection, Text: "No crack observed on render",
	}}
	thermal := []model.Observation{{
		Area: "Facade", Source: model.SourceThermal, Text: "Hairline crack visible along the lintel",
	}}

	conflicts := detectConflicts(rules, inspection, thermal)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "inspection_no_crack_vs_thermal_crack", conflicts[0].Type)
}
