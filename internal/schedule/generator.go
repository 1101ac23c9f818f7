package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Generator heuristics. The constants were tuned for "looks like a real
// clinic week" output; they are part of the deterministic output contract,
// so changing them changes every downstream value.
const (
	// targetUtilization is the share of the working window the generator
	// tries to book with clinical time before it starts considering an
	// early stop.
	targetUtilization = 0.84
	// warmupFraction blocks deliberate gaps until at least this share of
	// the clinical target has been booked, so days never open with a hole.
	warmupFraction = 0.08
	// gapLengthSpread bounds how far a deliberate gap may stretch past the
	// minimum bookable slot.
	gapLengthSpread = 30
)

// gapChance returns the percent chance of leaving a deliberate open gap at
// the given hour. Mornings book looser than afternoons.
func gapChance(hour int) int {
	switch {
	case hour < 10:
		return 48
	case hour < 12:
		return 42
	case hour < 15:
		return 38
	default:
		return 32
	}
}

// stopChance returns the percent chance of ending a chair's day once the
// utilization target is met. More remaining time means a lower chance of
// stopping early.
func stopChance(remainingMin int) int {
	switch {
	case remainingMin < 60:
		return 35
	case remainingMin < 120:
		return 15
	default:
		return 5
	}
}

// patientNames is the fixed pool synthetic bookings draw from.
var patientNames = []string{
	"Lucía García", "Marta Ruiz", "Carlos Pérez", "Ana Torres",
	"Javier Moreno", "Sofía Díaz", "Pablo Sánchez", "Elena Navarro",
	"Miguel Castro", "Laura Ortega", "Diego Ramos", "Carmen Vega",
	"Raúl Molina", "Isabel Serrano", "Andrés Gil", "Nuria Flores",
}

// GenerateDay builds one day of non-overlapping appointments across all
// chairs. Every decision is a deterministic draw keyed on
// seed:day:chair:id, so identical inputs always reproduce the same day.
// Returns the appointments sorted by start time and the next free id.
func GenerateDay(rules Rules, day time.Time, seed int64, providerID string, nextID int) ([]Appointment, int) {
	if len(rules.Treatments) == 0 {
		return nil, nextID
	}

	step := rules.GranularityMin
	dayStart := FloorToStep(at(day, rules.DayStartMin), step)
	dayEnd := CeilToStep(at(day, rules.DayEndMin), step)
	dayKey := day.Format("2006-01-02")
	minDur := rules.MinTreatmentDuration()
	workable := MinutesBetween(dayStart, dayEnd)
	clinicalTarget := int(targetUtilization * float64(workable))

	var all []Appointment
	for chair := 1; chair <= rules.ChairCount; chair++ {
		appts, next := generateChairDay(rules, dayKey, dayStart, dayEnd, seed, providerID, chair, nextID, minDur, clinicalTarget)
		all = append(all, appts...)
		nextID = next
	}

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Start.Equal(all[j].Start.Time) {
			return all[i].Start.Before(all[j].Start.Time)
		}
		return all[i].ChairID < all[j].ChairID
	})
	return all, nextID
}

func generateChairDay(rules Rules, dayKey string, dayStart, dayEnd time.Time, seed int64, providerID string, chair, nextID, minDur, clinicalTarget int) ([]Appointment, int) {
	step := rules.GranularityMin
	var lunchStart, lunchEnd time.Time
	if rules.HasLunch() {
		lunchStart = at(dayStart, rules.LunchStartMin)
		lunchEnd = at(dayStart, rules.LunchEndMin)
	}

	var appts []Appointment
	cursor := dayStart
	clinicalUsed := 0
	prevWasGap := false

	for MinutesBetween(cursor, dayEnd) >= minDur+step {
		if rules.HasLunch() && !cursor.Before(lunchStart) && cursor.Before(lunchEnd) {
			cursor = CeilToStep(lunchEnd, step)
			prevWasGap = false
			continue
		}

		remaining := MinutesBetween(cursor, dayEnd)
		drawKey := fmt.Sprintf("%d:%s:%d:%d", seed, dayKey, chair, nextID)

		// Deliberate open gap. Never two in a row, never before the day has
		// warmed up, never when the tail is about to end the day anyway.
		if !prevWasGap &&
			clinicalUsed >= int(warmupFraction*float64(clinicalTarget)) &&
			remaining > rules.LongGapThreshold+minDur &&
			hashPercent(drawKey+":gap") < gapChance(cursor.Hour()) {
			gapLen := rules.MinBookableSlotMin
			maxLen := rules.MinBookableSlotMin + gapLengthSpread
			if room := remaining - minDur - step; room < maxLen {
				maxLen = room
			}
			if maxLen > gapLen {
				gapLen += int(Hash(drawKey+":gaplen") % uint32(maxLen-gapLen+1))
			}
			next := CeilToStep(AddMinutes(cursor, gapLen), step)
			if rules.HasLunch() && Overlaps(cursor, next, lunchStart, lunchEnd) {
				next = CeilToStep(lunchEnd, step)
			}
			cursor = next
			prevWasGap = true
			continue
		}

		// Pick a treatment that fits the remaining window, buffer included.
		var fits []Treatment
		for _, t := range rules.Treatments {
			if effectiveBuffer(rules, t)+t.DurationMin+step <= remaining {
				fits = append(fits, t)
			}
		}
		if len(fits) == 0 {
			break
		}
		treatment := fits[int(Hash(drawKey+":treatment")%uint32(len(fits)))]
		buffer := effectiveBuffer(rules, treatment)

		start := CeilToStep(AddMinutes(cursor, buffer), step)
		end := CeilToStep(AddMinutes(start, treatment.DurationMin), step)
		if end.After(dayEnd) {
			break
		}
		if rules.HasLunch() && Overlaps(cursor, end, lunchStart, lunchEnd) {
			// Would straddle lunch: resume after it without consuming an id.
			cursor = CeilToStep(lunchEnd, step)
			prevWasGap = false
			continue
		}

		appts = append(appts, Appointment{
			ID:          nextID,
			PatientName: patientNames[int(Hash(drawKey+":name")%uint32(len(patientNames)))],
			Start:       LocalTime{start},
			End:         LocalTime{end},
			Type:        treatment.Type,
			ChairID:     chair,
			ProviderID:  providerID,
		})
		nextID++
		cursor = end
		clinicalUsed += treatment.DurationMin
		prevWasGap = false

		if clinicalUsed >= clinicalTarget {
			tail := MinutesBetween(cursor, dayEnd)
			if tail < rules.LongGapThreshold {
				break
			}
			if hashPercent(drawKey+":stop") < stopChance(tail) {
				break
			}
		}
	}

	return appts, nextID
}

// effectiveBuffer is the treatment-specific buffer when set, else the
// clinic default.
func effectiveBuffer(rules Rules, t Treatment) int {
	if t.BufferMin > 0 {
		return t.BufferMin
	}
	return rules.BufferMin
}
