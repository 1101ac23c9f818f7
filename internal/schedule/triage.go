package schedule

import "fmt"

// Triage classification thresholds. The demand draw comes from the gap key
// alone, so a gap keeps the same triage across reruns and UI refreshes.
const (
	immediateDemandCutoff = 0.7
	recallCandidateCutoff = 0.35

	lowFillDurationMin    = 70
	mediumFillDurationMin = 45
)

// Triage derives the deterministic recommendation for one gap: a demand
// signal drawn from the gap key, a fill probability from the duration, and
// the rationale, next steps, and alternatives that go with them.
func Triage(gap Gap) GapMeta {
	r := Hash01(gap.GapKey)
	immediate := r > immediateDemandCutoff
	recall := !immediate && r > recallCandidateCutoff

	var fill FillProbability
	switch {
	case gap.DurationMin >= lowFillDurationMin:
		fill = FillProbabilityLow
	case gap.DurationMin >= mediumFillDurationMin:
		fill = FillProbabilityMedium
	default:
		fill = FillProbabilityHigh
	}

	var rec Recommendation
	switch {
	case immediate:
		rec = RecommendationFillWithRequests
	case recall:
		rec = RecommendationRecallPatients
	case fill == FillProbabilityLow:
		rec = RecommendationPersonalTime
	default:
		rec = RecommendationWaitOrReschedule
	}

	return GapMeta{
		Gap:                 gap,
		HasImmediateDemand:  immediate,
		HasRecallCandidates: recall,
		FillProbability:     fill,
		Recommendation:      rec,
		Rationale:           rationaleFor(rec, gap),
		NextSteps:           nextStepsFor(rec),
		Alternatives:        alternativesFor(rec),
	}
}

func rationaleFor(rec Recommendation, gap Gap) string {
	switch rec {
	case RecommendationFillWithRequests:
		return fmt.Sprintf("%d min open on chair %d with pending appointment requests that fit this window.", gap.DurationMin, gap.ChairID)
	case RecommendationRecallPatients:
		return fmt.Sprintf("%d min open on chair %d; overdue recall patients are a good match for a window this size.", gap.DurationMin, gap.ChairID)
	case RecommendationPersonalTime:
		return fmt.Sprintf("Long %d min window on chair %d with no demand signal; hard to fill on short notice, better spent on admin or personal time.", gap.DurationMin, gap.ChairID)
	default:
		return fmt.Sprintf("Short %d min window on chair %d with no immediate demand; likely to fill on its own or absorb a reschedule.", gap.DurationMin, gap.ChairID)
	}
}

func nextStepsFor(rec Recommendation) []string {
	switch rec {
	case RecommendationFillWithRequests:
		return []string{
			"Review the pending appointment requests that fit this window",
			"Offer the slot to the best match and confirm",
			"Update the waitlist once the slot is taken",
		}
	case RecommendationRecallPatients:
		return []string{
			"Pull the overdue recall list for this treatment length",
			"Contact the top recall candidates",
			"Book the first patient who accepts",
		}
	case RecommendationPersonalTime:
		return []string{
			"Block the window in the calendar",
			"Use it for admin work, documentation, or a break",
		}
	default:
		return []string{
			"Leave the window open for now",
			"Revisit if a reschedule request comes in",
		}
	}
}

// alternativeLabels maps every selectable action to its panel label. The
// list attached to each gap is fixed; only the primary flag varies.
var alternativeLabels = []struct {
	rec   Recommendation
	label string
}{
	{RecommendationFillWithRequests, "Fill with requests"},
	{RecommendationRecallPatients, "Recall patients"},
	{RecommendationPersonalTime, "Reserve personal time"},
	{RecommendationWaitOrReschedule, "Wait or reschedule"},
}

func alternativesFor(primary Recommendation) []AlternativeAction {
	alts := make([]AlternativeAction, 0, len(alternativeLabels))
	for _, a := range alternativeLabels {
		alts = append(alts, AlternativeAction{
			Type:    a.rec,
			Label:   a.label,
			Primary: a.rec == primary,
		})
	}
	return alts
}
