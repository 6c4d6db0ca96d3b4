package merge

import (
	"strings"

	"github.com/agenthands/gypsum/internal/core/model"
)

// Rule describes one opposite-assertion pair for conflict detection. All
// pattern lists are matched against the normalized statement signature:
// Absent phrases assert the subject's absence outright, Subjects name the
// narrow subject the rule is about, and Negators flip a subject mention to
// an absence when they appear shortly before it.
type Rule struct {
	Type     string
	Subjects []string
	Negators []string
	Absent   []string
}

// DefaultRules returns the built-in moisture rule: a visual inspection
// reporting no moisture against a thermal report indicating a moisture
// anomaly.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type: "inspection_no_moisture_vs_thermal_moisture_anomaly",
			Subjects: []string{
				"moisture", "damp", "wet", "leak", "leakage",
				"water intrusion", "water ingress", "condensation",
			},
			Negators: []string{
				"no", "not", "without", "no sign of", "no signs of", "no evidence of",
			},
			Absent: []string{
				"moisture_signs=no", "no damp", "no moisture", "no leak",
				"no leakage", "no water", "dry", "not damp", "not wet",
				"no sign of moisture",
			},
		},
	}
}

type polarity int

const (
	unaddressed polarity = iota
	present
	absent
)

// negationWindow is how many tokens before a subject mention a negator may
// appear and still negate it ("no visible moisture").
const negationWindow = 3

// classify decides whether a statement asserts the rule's subject as
// present, asserts it as absent, or does not address it at all. A subject
// mention counts as present unless every mention is negated.
func (r Rule) classify(text string) polarity {
	norm := normalizeForMatch(text)
	if norm == "" {
		return unaddressed
	}

	for _, phrase := range r.Absent {
		if p := normalizeForMatch(phrase); p != "" && strings.Contains(norm, p) {
			return absent
		}
	}

	tokens := strings.Fields(norm)

	found := false
	allNegated := true
	for _, subj := range r.Subjects {
		subjTokens := strings.Fields(normalizeForMatch(subj))
		if len(subjTokens) == 0 {
			continue
		}
		for i := 0; i+len(subjTokens) <= len(tokens); i++ {
			if !tokensAt(tokens, i, subjTokens) {
				continue
			}
			found = true
			if !negatedBefore(tokens, i, r.Negators) {
				allNegated = false
			}
		}
	}

	switch {
	case !found:
		return unaddressed
	case allNegated:
		return absent
	default:
		return present
	}
}

func negatedBefore(tokens []string, idx int, negators []string) bool {
	lo := idx - negationWindow
	if lo < 0 {
		lo = 0
	}
	window := tokens[lo:idx]

	for _, neg := range negators {
		negTokens := strings.Fields(normalizeForMatch(neg))
		if len(negTokens) == 0 {
			continue
		}
		for i := 0; i+len(negTokens) <= len(window); i++ {
			if tokensAt(window, i, negTokens) {
				return true
			}
		}
	}
	return false
}

func tokensAt(tokens []string, idx int, want []string) bool {
	for i, w := range want {
		if tokens[idx+i] != w {
			return false
		}
	}
	return true
}

// detectConflicts pairs deduplicated observations across the two sources
// and flags every pair that addresses the same rule subject with opposite
// polarity. Detection only: both statements and their evidence travel
// verbatim on the flag, and neither observation is dropped or altered.
func detectConflicts(rules []Rule, inspection, thermal []model.Observation) []model.ConflictFlag {
	conflicts := []model.ConflictFlag{}
	for _, insp := range inspection {
		for _, therm := range thermal {
			for _, rule := range rules {
				ip := rule.classify(insp.Text)
				tp := rule.classify(therm.Text)
				if (ip == absent && tp == present) || (ip == present && tp == absent) {
					conflicts = append(conflicts, model.ConflictFlag{
						Type:                rule.Type,
						InspectionStatement: insp.Text,
						ThermalStatement:    therm.Text,
						InspectionEvidence:  insp.Evidence,
						ThermalEvidence:     therm.Evidence,
						ConflictDetected:    true,
					})
				}
			}
		}
	}
	return conflicts
}
