// Package merge implements the pipeline core: grouping observations by
// building area, collapsing near-duplicate statements within each source,
// and flagging cross-source conflicts without resolving them.
//
// Area grouping is an exact match on the normalized label, so near-duplicate
// labels ("Bedroom wall" vs "Bedroom Wall (North)") stay distinct areas.
// That precision limit is inherited behavior, kept deliberately.
//
// Merge performs no I/O, calls no external services, and holds no state
// between calls; concurrent invocations on independently-owned inputs are
// safe.
package merge

import (
	"sort"
	"strings"

	"github.com/agenthands/gypsum/internal/core/model"
)

// DefaultSimilarityThreshold is the inclusive score at or above which two
// statements in the same source and area are considered duplicates.
const DefaultSimilarityThreshold = 0.92

type Config struct {
	SimilarityThreshold float64
	Rules               []Rule
}

func DefaultConfig() Config {
	return Config{
		SimilarityThreshold: DefaultSimilarityThreshold,
		Rules:               DefaultRules(),
	}
}

// Merge groups the two observation collections by area, de-duplicates each
// source's statements within an area, and flags cross-source conflicts.
// Identical inputs and config always produce identical output. Malformed
// observations (blank text, wrong source for their collection) are skipped
// and counted rather than failing the run; empty inputs are valid and
// yield empty records.
func Merge(cfg Config, inspection, thermal []model.Observation) model.MergedDoc {
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}

	stats := model.MergeStats{
		InspectionIn: len(inspection),
		ThermalIn:    len(thermal),
	}

	type group struct {
		display    string
		inspection []model.Observation
		thermal    []model.Observation
	}
	groups := map[string]*group{}

	ensure := func(area string) *group {
		key := normalizeArea(area)
		g, ok := groups[key]
		if !ok {
			g = &group{display: displayArea(area)}
			groups[key] = g
		}
		return g
	}

	for _, obs := range inspection {
		if !wellFormed(obs, model.SourceInspection) {
			stats.SkippedMalformed++
			continue
		}
		g := ensure(obs.Area)
		g.inspection = append(g.inspection, obs)
	}
	for _, obs := range thermal {
		if !wellFormed(obs, model.SourceThermal) {
			stats.SkippedMalformed++
			continue
		}
		g := ensure(obs.Area)
		g.thermal = append(g.thermal, obs)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := model.MergedDoc{Areas: []model.AreaRecord{}}
	for _, key := range keys {
		g := groups[key]

		insp := dedupe(g.inspection, cfg.SimilarityThreshold)
		therm := dedupe(g.thermal, cfg.SimilarityThreshold)
		conflicts := detectConflicts(cfg.Rules, insp, therm)

		stats.InspectionKept += len(insp)
		stats.ThermalKept += len(therm)
		stats.Conflicts += len(conflicts)

		doc.Areas = append(doc.Areas, model.AreaRecord{
			Area:                   g.display,
			InspectionObservations: insp,
			ThermalObservations:    therm,
			Conflicts:              conflicts,
			ConflictDetected:       len(conflicts) > 0,
		})
	}

	doc.Stats = stats
	return doc
}

// wellFormed rejects observations missing required fields. A sentinel text
// is a valid statement; a blank one is not.
func wellFormed(obs model.Observation, want model.Source) bool {
	if strings.TrimSpace(obs.Text) == "" {
		return false
	}
	return obs.Source == want
}

// dedupe removes near-duplicate observations within one source and area,
// keeping the first of each cluster with its evidence untouched. An empty
// signature (sentinel-only statement) is always kept. Re-running dedupe on
// its own output returns it unchanged.
func dedupe(obs []model.Observation, threshold float64) []model.Observation {
	kept := make([]model.Observation, 0, len(obs))
	keptSigs := make([]string, 0, len(obs))

	for _, o := range obs {
		sig := normalizeForMatch(o.Text)
		if sig == "" {
			kept = append(kept, o)
			keptSigs = append(keptSigs, sig)
			continue
		}

		dup := false
		for _, existing := range keptSigs {
			if existing == "" {
				continue
			}
			if sig == existing || similar(sig, existing) >= threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, o)
			keptSigs = append(keptSigs, sig)
		}
	}
	return kept
}
