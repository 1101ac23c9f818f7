package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkGap(key string, durationMin, chair int) Gap {
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return Gap{
		Start:       LocalTime{start},
		End:         LocalTime{start.Add(time.Duration(durationMin) * time.Minute)},
		DurationMin: durationMin,
		GapKey:      key,
		ChairID:     chair,
	}
}

func TestTriageDeterministic(t *testing.T) {
	gap := mkGap("gap:2025-03-10:c1:open-4:0900-1030", 90, 1)
	assert.Equal(t, Triage(gap), Triage(gap))
}

func TestTriageFillProbabilityByDuration(t *testing.T) {
	tests := []struct {
		durationMin int
		want        FillProbability
	}{
		{30, FillProbabilityHigh},
		{44, FillProbabilityHigh},
		{45, FillProbabilityMedium},
		{69, FillProbabilityMedium},
		{70, FillProbabilityLow},
		{240, FillProbabilityLow},
	}
	for _, tt := range tests {
		meta := Triage(mkGap(fmt.Sprintf("gap:2025-03-10:c1:open-close:%d", tt.durationMin), tt.durationMin, 1))
		assert.Equal(t, tt.want, meta.FillProbability, "duration %d", tt.durationMin)
	}
}

// TestTriageClassificationConsistency sweeps a spread of gap keys and checks
// the demand flags and recommendation always agree with each other, whatever
// the draw for a given key turns out to be.
func TestTriageClassificationConsistency(t *testing.T) {
	sawImmediate, sawRecall, sawNeither := false, false, false

	for day := 1; day <= 28; day++ {
		for _, dur := range []int{30, 50, 80, 120} {
			key := fmt.Sprintf("gap:2025-03-%02d:c1:open-close:0900-1800", day)
			meta := Triage(mkGap(key, dur, 1))

			assert.False(t, meta.HasImmediateDemand && meta.HasRecallCandidates,
				"demand flags are mutually exclusive (key %s)", key)

			switch {
			case meta.HasImmediateDemand:
				sawImmediate = true
				assert.Equal(t, RecommendationFillWithRequests, meta.Recommendation)
			case meta.HasRecallCandidates:
				sawRecall = true
				assert.Equal(t, RecommendationRecallPatients, meta.Recommendation)
			default:
				sawNeither = true
				if meta.FillProbability == FillProbabilityLow {
					assert.Equal(t, RecommendationPersonalTime, meta.Recommendation)
				} else {
					assert.Equal(t, RecommendationWaitOrReschedule, meta.Recommendation)
				}
			}

			assert.NotEmpty(t, meta.Rationale)
			assert.NotEmpty(t, meta.NextSteps)
		}
	}

	// 28 distinct keys give each demand band a comfortable margin to show up.
	assert.True(t, sawImmediate, "no key landed in the immediate-demand band")
	assert.True(t, sawRecall, "no key landed in the recall band")
	assert.True(t, sawNeither, "no key landed below both cutoffs")
}

func TestTriageAlternativesListAllActions(t *testing.T) {
	meta := Triage(mkGap("gap:2025-03-10:c2:7-9:1100-1230", 90, 2))
	require.Len(t, meta.Alternatives, 4)

	primaries := 0
	seen := make(map[Recommendation]bool)
	for _, alt := range meta.Alternatives {
		assert.NotEmpty(t, alt.Label)
		assert.False(t, seen[alt.Type], "duplicate alternative %s", alt.Type)
		seen[alt.Type] = true
		if alt.Primary {
			primaries++
			assert.Equal(t, meta.Recommendation, alt.Type, "primary alternative must match the recommendation")
		}
	}
	assert.Equal(t, 1, primaries, "exactly one alternative is primary")
}

func TestTriageRationaleMentionsChairAndDuration(t *testing.T) {
	meta := Triage(mkGap("gap:2025-03-10:c3:open-2:0900-1010", 70, 3))
	assert.Contains(t, meta.Rationale, "70 min")
	assert.Contains(t, meta.Rationale, "chair 3")
}
