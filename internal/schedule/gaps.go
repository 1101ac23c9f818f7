package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Gap scoring terms. End-of-day time is easier to repurpose, so it gets a
// mild boost; a huge idle block is a configuration problem rather than a
// fillable gap, so anything over giantGapMin is pushed down the ranking.
const (
	endOfDayBonus = 10
	giantGapMin   = 90
	giantPenalty  = 40
)

// DetectGaps computes the ranked idle windows of a day. Per chair it looks
// at the window before the first appointment, between each consecutive
// pair, and after the last; candidates overlapping lunch are split into
// independent pre/post segments. Survivors at or above LongGapThreshold are
// scored and the top MaxGapPanels are returned.
func DetectGaps(appointments []Appointment, rules Rules, day time.Time) []Gap {
	step := rules.GranularityMin
	dayStart := FloorToStep(at(day, rules.DayStartMin), step)
	dayEnd := CeilToStep(at(day, rules.DayEndMin), step)
	dayKey := day.Format("2006-01-02")

	byChair := make(map[int][]Appointment)
	for _, a := range appointments {
		byChair[a.ChairID] = append(byChair[a.ChairID], a)
	}

	var gaps []Gap
	for chair := 1; chair <= rules.ChairCount; chair++ {
		list := byChair[chair]
		sort.Slice(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start.Time) })

		prevEnd := dayStart
		prevID := "open"
		for _, a := range list {
			gaps = append(gaps, chairGaps(rules, dayKey, dayStart, dayEnd, chair, prevEnd, a.Start.Time, prevID, fmt.Sprint(a.ID))...)
			prevEnd = a.End.Time
			prevID = fmt.Sprint(a.ID)
		}
		gaps = append(gaps, chairGaps(rules, dayKey, dayStart, dayEnd, chair, prevEnd, dayEnd, prevID, "close")...)
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		si, sj := gapScore(gaps[i]), gapScore(gaps[j])
		if si != sj {
			return si > sj
		}
		if !gaps[i].Start.Equal(gaps[j].Start.Time) {
			return gaps[i].Start.Before(gaps[j].Start.Time)
		}
		return gaps[i].ChairID < gaps[j].ChairID
	})
	if len(gaps) > rules.MaxGapPanels {
		gaps = gaps[:rules.MaxGapPanels]
	}
	return gaps
}

// chairGaps turns one idle candidate interval into zero or more gaps,
// splitting around lunch and filtering by the long-gap threshold.
func chairGaps(rules Rules, dayKey string, dayStart, dayEnd time.Time, chair int, start, end time.Time, leftID, rightID string) []Gap {
	if !end.After(start) {
		return nil
	}

	type segment struct{ start, end time.Time }
	var segments []segment
	if rules.HasLunch() {
		lunchStart := at(start, rules.LunchStartMin)
		lunchEnd := at(start, rules.LunchEndMin)
		if Overlaps(start, end, lunchStart, lunchEnd) {
			if start.Before(lunchStart) {
				segments = append(segments, segment{start, lunchStart})
			}
			if end.After(lunchEnd) {
				segments = append(segments, segment{lunchEnd, end})
			}
		} else {
			segments = append(segments, segment{start, end})
		}
	} else {
		segments = append(segments, segment{start, end})
	}

	var gaps []Gap
	for _, seg := range segments {
		dur := MinutesBetween(seg.start, seg.end)
		if dur < rules.LongGapThreshold {
			continue
		}
		gaps = append(gaps, Gap{
			Start:       LocalTime{seg.start},
			End:         LocalTime{seg.end},
			DurationMin: dur,
			GapKey: fmt.Sprintf("gap:%s:c%d:%s-%s:%s-%s",
				dayKey, chair, leftID, rightID,
				seg.start.Format("1504"), seg.end.Format("1504")),
			ChairID:      chair,
			IsStartOfDay: leftID == "open" && seg.start.Equal(dayStart),
			IsEndOfDay:   rightID == "close" && seg.end.Equal(dayEnd),
		})
	}
	return gaps
}

func gapScore(g Gap) int {
	score := g.DurationMin
	if g.IsEndOfDay {
		score += endOfDayBonus
	}
	if g.DurationMin > giantGapMin {
		score -= giantPenalty
	}
	return score
}
