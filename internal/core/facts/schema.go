// Package facts turns cleaned document text into structured, evidence-backed
// fact documents via one LLM call per source, validated at the boundary
// before anything reaches the merge engine.
package facts

// BuildInspectionSchema returns the JSON Schema an inspection extraction
// response must satisfy. Fields are optional (missing values are filled
// with sentinels afterwards); type and enum violations are what the
// boundary rejects.
func BuildInspectionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{"type": "string", "enum": []string{"inspection_report"}},
			"facts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"area":           map[string]any{"type": "string"},
						"observation":    map[string]any{"type": "string"},
						"visible_issue":  map[string]any{"type": "string"},
						"moisture_signs": triStateProp(),
						"measurements": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"name":  map[string]any{"type": "string"},
									"value": map[string]any{"type": "string"},
								},
							},
						},
						"notes":    map[string]any{"type": "string"},
						"evidence": evidenceProp(),
					},
				},
			},
			"missing_or_unclear_information": stringArrayProp(),
		},
	}
}

// BuildThermalSchema returns the JSON Schema a thermal extraction response
// must satisfy.
func BuildThermalSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"source": map[string]any{"type": "string", "enum": []string{"thermal_report"}},
			"facts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"area":            map[string]any{"type": "string"},
						"thermal_anomaly": triStateProp(),
						"temperature_readings": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"label": map[string]any{"type": "string"},
									"value": map[string]any{"type": "string"},
								},
							},
						},
						"suspected_issue": map[string]any{"type": "string"},
						"notes":           map[string]any{"type": "string"},
						"evidence":        evidenceProp(),
					},
				},
			},
			"missing_or_unclear_information": stringArrayProp(),
		},
	}
}

func evidenceProp() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"page":  map[string]any{"type": "integer", "minimum": 0},
				"quote": map[string]any{"type": "string"},
			},
		},
	}
}

func triStateProp() map[string]any {
	return map[string]any{"type": "string", "enum": []string{"yes", "no", "not_mentioned"}}
}

func stringArrayProp() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}
