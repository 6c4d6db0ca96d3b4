package merge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/gypsum/internal/core/model"
)

func obs(area string, source model.Source, text string, evidence ...model.Evidence) model.Observation {
	return model.Observation{Area: area, Source: source, Text: text, Evidence: evidence}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []model.Observation{
		obs("Ceiling", model.SourceInspection, "Damp staining on ceiling"),
		obs("Ceiling", model.SourceInspection, "Damp staining on the ceiling"),
		obs("Ceiling", model.SourceInspection, "Crack in plaster near the light fitting"),
	}

	once := dedupe(in, DefaultSimilarityThreshold)
	require.Len(t, once, 2)

	twice := dedupe(once, DefaultSimilarityThreshold)
	assert.Equal(t, once, twice)
}

func TestDedupeKeepsFirstWithItsEvidence(t *testing.T) {
	first := obs("Ceiling", model.SourceInspection, "Damp staining on ceiling",
		model.Evidence{Page: 3, Quote: "damp staining visible"})
	second := obs("Ceiling", model.SourceInspection, "Damp staining on the ceiling",
		model.Evidence{Page: 9, Quote: "staining observed"})

	kept := dedupe([]model.Observation{first, second}, DefaultSimilarityThreshold)
	require.Len(t, kept, 1)
	assert.Equal(t, first, kept[0])
	assert.Equal(t, []model.Evidence{{Page: 3, Quote: "damp staining visible"}}, kept[0].Evidence)
}

func TestDedupeExactDuplicate(t *testing.T) {
	in := []model.Observation{
		obs("Wall", model.SourceThermal, "Cold spot at lintel"),
		obs("Wall", model.SourceThermal, "Cold spot at lintel"),
	}
	assert.Len(t, dedupe(in, DefaultSimilarityThreshold), 1)
}

func TestDedupeSentinelStatementsAlwaysKept(t *testing.T) {
	in := []model.Observation{
		obs("Wall", model.SourceInspection, "Not Available"),
		obs("Wall", model.SourceInspection, "Not Available"),
	}
	assert.Len(t, dedupe(in, DefaultSimilarityThreshold), 2)
}

func TestDedupeThresholdBoundaryInclusive(t *testing.T) {
	// ratio("abcd", "abce") is exactly 0.75.
	a := obs("X", model.SourceInspection, "abcd")
	b := obs("X", model.SourceInspection, "abce")

	atThreshold := dedupe([]model.Observation{a, b}, 0.75)
	assert.Len(t, atThreshold, 1, "score equal to threshold must deduplicate")

	justAbove := dedupe([]model.Observation{a, b}, 0.750001)
	assert.Len(t, justAbove, 2, "score below threshold must not deduplicate")
}

func TestMergeGroupsByNormalizedArea(t *testing.T) {
	inspection := []model.Observation{
		obs("Bedroom   Wall", model.SourceInspection, "peeling paint"),
		obs("bedroom wall", model.SourceInspection, "hairline settlement marks"),
		obs("Bedroom Wall (North)", model.SourceInspection, "scuffed skirting"),
	}

	doc := Merge(DefaultConfig(), inspection, nil)
	require.Len(t, doc.Areas, 2)

	// Sorted by normalized key; display name is the first-seen raw label.
	assert.Equal(t, "Bedroom   Wall", doc.Areas[0].Area)
	assert.Len(t, doc.Areas[0].InspectionObservations, 2)
	assert.Equal(t, "Bedroom Wall (North)", doc.Areas[1].Area)
	assert.Len(t, doc.Areas[1].InspectionObservations, 1)
}

func TestMergeSentinelAreaDisplay(t *testing.T) {
	inspection := []model.Observation{
		obs("", model.SourceInspection, "meter reading noted"),
		obs("not available", model.SourceInspection, "general photograph"),
	}

	doc := Merge(DefaultConfig(), inspection, nil)
	require.Len(t, doc.Areas, 1)
	assert.Equal(t, "Not Available", doc.Areas[0].Area)
	assert.Len(t, doc.Areas[0].InspectionObservations, 2)
}

func TestMergeSortedByAreaKey(t *testing.T) {
	inspection := []model.Observation{
		obs("Kitchen", model.SourceInspection, "worktop water marks"),
		obs("Attic", model.SourceInspection, "insulation displaced"),
		obs("Bedroom", model.SourceInspection, "scuffed paint"),
	}

	doc := Merge(DefaultConfig(), inspection, nil)
	require.Len(t, doc.Areas, 3)
	assert.Equal(t, "Attic", doc.Areas[0].Area)
	assert.Equal(t, "Bedroom", doc.Areas[1].Area)
	assert.Equal(t, "Kitchen", doc.Areas[2].Area)
}

func TestMergeGroupingCommutative(t *testing.T) {
	observations := []model.Observation{
		obs("Attic", model.SourceInspection, "insulation displaced"),
		obs("Kitchen", model.SourceInspection, "worktop water marks"),
		obs("Attic", model.SourceInspection, "felt torn at eaves"),
		obs("Bedroom", model.SourceInspection, "scuffed paint"),
	}
	thermal := []model.Observation{
		obs("Kitchen", model.SourceThermal, "uniform temperatures"),
		obs("Attic", model.SourceThermal, "cold bridging at eaves"),
	}

	base := Merge(DefaultConfig(), observations, thermal)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffledInsp := append([]model.Observation(nil), observations...)
		rng.Shuffle(len(shuffledInsp), func(a, b int) {
			shuffledInsp[a], shuffledInsp[b] = shuffledInsp[b], shuffledInsp[a]
		})
		shuffledTherm := append([]model.Observation(nil), thermal...)
		rng.Shuffle(len(shuffledTherm), func(a, b int) {
			shuffledTherm[a], shuffledTherm[b] = shuffledTherm[b], shuffledTherm[a]
		})

		got := Merge(DefaultConfig(), shuffledInsp, shuffledTherm)
		require.Len(t, got.Areas, len(base.Areas))
		for j, rec := range got.Areas {
			assert.Equal(t, base.Areas[j].Area, rec.Area)
			assert.ElementsMatch(t, base.Areas[j].InspectionObservations, rec.InspectionObservations)
			assert.ElementsMatch(t, base.Areas[j].ThermalObservations, rec.ThermalObservations)
			assert.Equal(t, base.Areas[j].ConflictDetected, rec.ConflictDetected)
		}
	}
}

func TestMergeSingleSourceAreaNeverConflicts(t *testing.T) {
	inspection := []model.Observation{
		obs("Garage", model.SourceInspection, "no moisture anywhere"),
	}

	doc := Merge(DefaultConfig(), inspection, nil)
	require.Len(t, doc.Areas, 1)
	assert.False(t, doc.Areas[0].ConflictDetected)
	assert.Empty(t, doc.Areas[0].Conflicts)
	assert.Empty(t, doc.Areas[0].ThermalObservations)
}

func TestMergeConflictSymmetry(t *testing.T) {
	inspection := []model.Observation{
		obs("Bedroom wall", model.SourceInspection, "no moisture detected",
			model.Evidence{Page: 3, Quote: "no moisture detected"}),
	}
	thermal := []model.Observation{
		obs("Bedroom wall", model.SourceThermal, "moisture anomaly detected",
			model.Evidence{Page: 2, Quote: "moisture anomaly"}),
	}

	doc := Merge(DefaultConfig(), inspection, thermal)
	require.Len(t, doc.Areas, 1)

	rec := doc.Areas[0]
	require.True(t, rec.ConflictDetected)
	require.Len(t, rec.Conflicts, 1)

	c := rec.Conflicts[0]
	assert.Equal(t, "no moisture detected", c.InspectionStatement)
	assert.Equal(t, "moisture anomaly detected", c.ThermalStatement)
	assert.Equal(t, inspection[0].Evidence, c.InspectionEvidence)
	assert.Equal(t, thermal[0].Evidence, c.ThermalEvidence)

	// Both statements survive on the record itself, unresolved.
	require.Len(t, rec.InspectionObservations, 1)
	require.Len(t, rec.ThermalObservations, 1)
	assert.Equal(t, inspection[0], rec.InspectionObservations[0])
	assert.Equal(t, thermal[0], rec.ThermalObservations[0])
}

func TestMergeNoFalseConflict(t *testing.T) {
	inspection := []model.Observation{
		obs("Study", model.SourceInspection, "peeling paint"),
	}
	thermal := []model.Observation{
		obs("Study", model.SourceThermal, "window drafts"),
	}

	doc := Merge(DefaultConfig(), inspection, thermal)
	require.Len(t, doc.Areas, 1)
	assert.False(t, doc.Areas[0].ConflictDetected)
	assert.Empty(t, doc.Areas[0].Conflicts)
}

func TestMergeBathroomCeilingScenario(t *testing.T) {
	inspection := []model.Observation{
		obs("Bathroom ceiling", model.SourceInspection, "No visible moisture staining"),
	}
	thermal := []model.Observation{
		obs("Bathroom ceiling", model.SourceThermal, "Thermal anomaly consistent with moisture"),
	}

	doc := Merge(DefaultConfig(), inspection, thermal)
	require.Len(t, doc.Areas, 1)

	rec := doc.Areas[0]
	assert.Equal(t, "Bathroom ceiling", rec.Area)
	assert.True(t, rec.ConflictDetected)
	assert.Len(t, rec.Conflicts, 1)
	assert.Equal(t, 1, doc.Stats.Conflicts)
}

func TestMergeSkipsMalformedAndCounts(t *testing.T) {
	inspection := []model.Observation{
		obs("Kitchen", model.SourceInspection, "worktop water marks"),
		obs("Kitchen", model.SourceInspection, "   "),
		{Area: "Kitchen", Text: "no source set"},
	}
	thermal := []model.Observation{
		obs("Kitchen", model.SourceInspection, "wrong source for this collection"),
	}

	doc := Merge(DefaultConfig(), inspection, thermal)
	assert.Equal(t, 3, doc.Stats.SkippedMalformed)
	require.Len(t, doc.Areas, 1)
	assert.Len(t, doc.Areas[0].InspectionObservations, 1)
	assert.Empty(t, doc.Areas[0].ThermalObservations)
}

func TestMergeEmptyInputs(t *testing.T) {
	doc := Merge(DefaultConfig(), nil, nil)
	assert.Empty(t, doc.Areas)
	assert.Equal(t, model.MergeStats{}, doc.Stats)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	inspection := []model.Observation{
		obs("Hall", model.SourceInspection, "no moisture at threshold",
			model.Evidence{Page: 1, Quote: "threshold dry"}),
		obs("Hall", model.SourceInspection, "no moisture at the threshold"),
	}
	thermal := []model.Observation{
		obs("Hall", model.SourceThermal, "thermal_anomaly=yes | moisture at threshold"),
	}
	inspCopy := append([]model.Observation(nil), inspection...)
	thermCopy := append([]model.Observation(nil), thermal...)

	Merge(DefaultConfig(), inspection, thermal)

	assert.Equal(t, inspCopy, inspection)
	assert.Equal(t, thermCopy, thermal)
}

func TestMergeStatsCounts(t *testing.T) {
	inspection := []model.Observation{
		obs("Roof", model.SourceInspection, "no moisture staining on ceiling"),
		obs("Roof", model.SourceInspection, "no moisture staining on the ceiling"),
	}
	thermal := []model.Observation{
		obs("Roof", model.SourceThermal, "thermal_anomaly=yes | moisture ingress at valley"),
	}

	doc := Merge(DefaultConfig(), inspection, thermal)
	assert.Equal(t, 2, doc.Stats.InspectionIn)
	assert.Equal(t, 1, doc.Stats.ThermalIn)
	assert.Equal(t, 1, doc.Stats.InspectionKept)
	assert.Equal(t, 1, doc.Stats.ThermalKept)
	assert.Equal(t, 1, doc.Stats.Conflicts)
}
