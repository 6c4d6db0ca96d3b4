package reason

import (
	"fmt"
	"strings"

	"github.com/agenthands/gypsum/internal/core/model"
)

const systemPreamble = "You are a precise analytical assistant that only uses " +
	"provided evidence and never invents information. Always respond with valid JSON."

const criticalConstraints = `CRITICAL CONSTRAINTS:
1. You may ONLY reference facts explicitly provided in the data below
2. If evidence is insufficient to make a determination, you MUST use "Not Available" or "insufficient_evidence"
3. You MUST cite specific evidence (page numbers, quotes) for all inferences
4. You MUST NOT invent, assume, or hallucinate any information
5. If information conflicts, acknowledge the conflict and explain both sides`

const responseStructure = `{
  "root_cause": {
    "probable_cause": "string (describe the most likely root cause, or 'Not Available')",
    "reasoning": "string (explain your reasoning based on evidence, or 'Not Available')",
    "supporting_evidence": ["list of specific quotes or page references"],
    "confidence": "high|medium|low|insufficient_evidence",
    "evidence_gaps": ["list what additional info would help"]
  },
  "severity": {
    "severity_level": "critical|high|medium|low|not_available",
    "reasoning": "string (explain why this severity level, or 'Not Available')",
    "risk_factors": ["list specific factors from the data"],
    "supporting_evidence": ["list of specific quotes or page references"]
  },
  "missing_information": [
    {
      "category": "string (e.g., 'moisture measurements', 'structural details')",
      "description": "string (what specific information is missing)",
      "impact": "string (how this affects the analysis)"
    }
  ],
  "inspection_summary": "string (brief summary of inspection findings, or 'Not Available')",
  "thermal_summary": "string (brief summary of thermal findings, or 'Not Available')",
  "conflict_summary": "string (if conflicts exist, summarize them, otherwise 'Not Available')"
}`

const reasoningExamples = `EXAMPLES OF PROPER REASONING:

Good (evidence-based):
- "probable_cause": "Potential water intrusion from exterior wall", "reasoning": "Inspection report notes visible moisture signs on bedroom wall (page 3), and thermal imaging shows temperature anomaly consistent with moisture (page 2, hotspot 15.2°C vs ambient 18.5°C)", "confidence": "medium"

Bad (hallucination):
- "probable_cause": "Broken pipe in the wall" (NO - there's no evidence of a pipe)

Good (insufficient evidence):
- "probable_cause": "Not Available", "reasoning": "Inspection notes moisture signs but no thermal data available for this area, and no structural inspection was performed", "confidence": "insufficient_evidence"`

// buildAreaPrompt assembles the strictly constrained per-area prompt. The
// model sees only this area's merged observations and conflicts.
func buildAreaPrompt(rec model.AreaRecord) string {
	var b strings.Builder
	b.WriteString(systemPreamble)
	b.WriteString("\n\n")
	b.WriteString("You are an analytical reasoning assistant for building inspection reports. ")
	b.WriteString("Your task is to analyze the provided structured data for a specific area and produce a JSON response ")
	b.WriteString("with root cause inference, severity assessment, and missing information identification.\n\n")
	b.WriteString(criticalConstraints)
	b.WriteString("\n\nAREA: ")
	b.WriteString(rec.Area)
	b.WriteString("\n\nINSPECTION OBSERVATIONS:\n")
	b.WriteString(observationBlocks("Inspection Observation", rec.InspectionObservations))
	b.WriteString("\n\nTHERMAL OBSERVATIONS:\n")
	b.WriteString(observationBlocks("Thermal Observation", rec.ThermalObservations))
	b.WriteString("\n\nCONFLICTS DETECTED:\n")
	b.WriteString(conflictBlocks(rec.Conflicts))
	b.WriteString("\n\nYOUR TASK:\nAnalyze the above data and produce a JSON response with the following structure:\n\n")
	b.WriteString(responseStructure)
	b.WriteString("\n\n")
	b.WriteString(reasoningExamples)
	b.WriteString("\n\nNow analyze the data and respond with ONLY valid JSON, no other text:")
	return b.String()
}

func observationBlocks(label string, obs []model.Observation) string {
	if len(obs) == 0 {
		return "NONE"
	}
	var blocks []string
	for i, o := range obs {
		lines := []string{fmt.Sprintf("  Statement: %s", o.Text)}
		if len(o.Evidence) == 0 {
			lines = append(lines, "  Evidence: Not Available")
		}
		for _, ev := range o.Evidence {
			lines = append(lines, fmt.Sprintf("  Evidence: Page %d, Quote: %q", ev.Page, ev.Quote))
		}
		blocks = append(blocks, fmt.Sprintf("%s #%d:\n%s", label, i+1, strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

func conflictBlocks(conflicts []model.ConflictFlag) string {
	if len(conflicts) == 0 {
		return "NONE"
	}
	var blocks []string
	for i, c := range conflicts {
		lines := []string{
			fmt.Sprintf("  Type: %s", c.Type),
			fmt.Sprintf("  Inspection Statement: %s", c.InspectionStatement),
			fmt.Sprintf("  Thermal Statement: %s", c.ThermalStatement),
		}
		blocks = append(blocks, fmt.Sprintf("Conflict #%d:\n%s", i+1, strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}
