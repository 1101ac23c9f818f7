package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults and clamp ranges applied by Normalize. Downstream code never
// sees an out-of-range value.
const (
	defaultDayStart = "09:00"
	defaultDayEnd   = "18:00"

	defaultChairCount = 2
	maxChairCount     = 12

	defaultGranularityMin = 15

	minTreatmentDuration = 10
	maxTreatmentDuration = 240
	maxTreatmentBuffer   = 60

	defaultMinBookableSlot = 20
	minBookableSlotFloor   = 10
	minBookableSlotCeil    = 180

	defaultLongGapThreshold = 30
	longGapThresholdFloor   = 15
	longGapThresholdCeil    = 240

	defaultMaxGapPanels = 3
	maxGapPanelsCeil    = 10
)

// TreatmentInput is a loosely-typed treatment entry from the caller.
type TreatmentInput struct {
	Type        string `json:"type"`
	DurationMin int    `json:"durationMin"`
	BufferMin   int    `json:"bufferMin"`
}

// RulesInput is the loosely-typed rules payload. Any field may be missing
// or out of range; Normalize recovers everything locally and never errors.
type RulesInput struct {
	DayStartTime       string           `json:"dayStartTime"`
	DayEndTime         string           `json:"dayEndTime"`
	ChairsCount        int              `json:"chairsCount"`
	SlotGranularityMin int              `json:"slotGranularityMin"`
	LunchStart         string           `json:"lunchStart"`
	LunchEnd           string           `json:"lunchEnd"`
	EnableBreaks       *bool            `json:"enableBreaks"`
	EnableBuffers      *bool            `json:"enableBuffers"`
	MinBookableSlotMin int              `json:"minBookableSlotMin"`
	LongGapThreshold   int              `json:"longGapThreshold"`
	MaxGapPanels       int              `json:"maxGapPanels"`
	BufferMin          int              `json:"bufferMin"`
	Treatments         []TreatmentInput `json:"treatments"`
	ExtraRulesText     string           `json:"extraRulesText"`
}

// Treatment is a normalized treatment definition.
type Treatment struct {
	Type        string `json:"type"`
	DurationMin int    `json:"durationMin"`
	BufferMin   int    `json:"bufferMin"`
}

// Rules is the fully-defaulted, range-clamped configuration. Immutable per
// run. Times of day are stored as minutes from midnight; LunchStartMin is
// -1 when no lunch window is configured.
type Rules struct {
	DayStartMin        int
	DayEndMin          int
	ChairCount         int
	GranularityMin     int
	LunchStartMin      int
	LunchEndMin        int
	EnableBreaks       bool
	EnableBuffers      bool
	MinBookableSlotMin int
	LongGapThreshold   int
	MaxGapPanels       int
	BufferMin          int
	Treatments         []Treatment
	ExtraRulesText     string

	byType map[string]int
}

// Normalize produces a valid Rules from any input. Pure: same input always
// yields the same output, and normalizing an already-normalized rules
// object is a no-op.
func Normalize(in RulesInput) Rules {
	r := Rules{
		DayStartMin:        parseTimeOfDay(in.DayStartTime, defaultDayStart),
		DayEndMin:          parseTimeOfDay(in.DayEndTime, defaultDayEnd),
		ChairCount:         clampInt(orDefault(in.ChairsCount, defaultChairCount), 1, maxChairCount),
		GranularityMin:     clampInt(orDefault(in.SlotGranularityMin, defaultGranularityMin), minStep, maxStep),
		LunchStartMin:      -1,
		LunchEndMin:        -1,
		EnableBreaks:       boolOr(in.EnableBreaks, true),
		EnableBuffers:      boolOr(in.EnableBuffers, true),
		MinBookableSlotMin: clampInt(orDefault(in.MinBookableSlotMin, defaultMinBookableSlot), minBookableSlotFloor, minBookableSlotCeil),
		LongGapThreshold:   clampInt(orDefault(in.LongGapThreshold, defaultLongGapThreshold), longGapThresholdFloor, longGapThresholdCeil),
		MaxGapPanels:       clampInt(orDefault(in.MaxGapPanels, defaultMaxGapPanels), 1, maxGapPanelsCeil),
		BufferMin:          clampInt(in.BufferMin, 0, maxTreatmentBuffer),
		ExtraRulesText:     in.ExtraRulesText,
	}

	if r.DayEndMin <= r.DayStartMin {
		r.DayStartMin = parseTimeOfDay(defaultDayStart, defaultDayStart)
		r.DayEndMin = parseTimeOfDay(defaultDayEnd, defaultDayEnd)
	}

	lunchStart := parseTimeOfDay(in.LunchStart, "")
	lunchEnd := parseTimeOfDay(in.LunchEnd, "")
	if lunchStart >= 0 && lunchEnd > lunchStart && lunchStart >= r.DayStartMin && lunchEnd <= r.DayEndMin {
		r.LunchStartMin = lunchStart
		r.LunchEndMin = lunchEnd
	}

	r.byType = make(map[string]int)
	for _, t := range in.Treatments {
		name := strings.TrimSpace(t.Type)
		if name == "" {
			continue
		}
		r.Treatments = append(r.Treatments, Treatment{
			Type:        name,
			DurationMin: clampInt(t.DurationMin, minTreatmentDuration, maxTreatmentDuration),
			BufferMin:   clampInt(t.BufferMin, 0, maxTreatmentBuffer),
		})
		key := strings.ToLower(name)
		if _, seen := r.byType[key]; !seen {
			r.byType[key] = len(r.Treatments) - 1
		}
	}

	return r
}

// HasLunch reports whether a lunch window is configured.
func (r Rules) HasLunch() bool {
	return r.LunchStartMin >= 0
}

// TreatmentByType looks up a treatment by case-insensitive trimmed name.
// The first matching entry wins.
func (r *Rules) TreatmentByType(name string) (Treatment, bool) {
	idx, ok := r.byType[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Treatment{}, false
	}
	return r.Treatments[idx], true
}

// MinTreatmentDuration returns the shortest configured treatment duration,
// or 0 when no treatments are configured.
func (r *Rules) MinTreatmentDuration() int {
	min := 0
	for _, t := range r.Treatments {
		if min == 0 || t.DurationMin < min {
			min = t.DurationMin
		}
	}
	return min
}

// At anchors a minutes-from-midnight value onto a calendar day.
func at(day time.Time, minutesFromMidnight int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()).
		Add(time.Duration(minutesFromMidnight) * time.Minute)
}

// AsInput re-expresses normalized rules as an input payload. Feeding the
// result back through Normalize yields the same rules; it is also the
// canonical form hashed into cache keys.
func (r *Rules) AsInput() RulesInput {
	in := RulesInput{
		DayStartTime:       formatTimeOfDay(r.DayStartMin),
		DayEndTime:         formatTimeOfDay(r.DayEndMin),
		ChairsCount:        r.ChairCount,
		SlotGranularityMin: r.GranularityMin,
		EnableBreaks:       boolPtr(r.EnableBreaks),
		EnableBuffers:      boolPtr(r.EnableBuffers),
		MinBookableSlotMin: r.MinBookableSlotMin,
		LongGapThreshold:   r.LongGapThreshold,
		MaxGapPanels:       r.MaxGapPanels,
		BufferMin:          r.BufferMin,
		ExtraRulesText:     r.ExtraRulesText,
	}
	if r.HasLunch() {
		in.LunchStart = formatTimeOfDay(r.LunchStartMin)
		in.LunchEnd = formatTimeOfDay(r.LunchEndMin)
	}
	for _, t := range r.Treatments {
		in.Treatments = append(in.Treatments, TreatmentInput(t))
	}
	return in
}

// parseTimeOfDay parses "HH:MM" into minutes from midnight, falling back
// to fallback (also "HH:MM", or "" meaning -1) on anything malformed.
func parseTimeOfDay(s, fallback string) int {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) == 2 {
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		if errH == nil && errM == nil && h >= 0 && h < 24 && m >= 0 && m < 60 {
			return h*60 + m
		}
	}
	if fallback == "" {
		return -1
	}
	if s == fallback {
		// Defaults are trusted constants; a loop here would mean a typo in them.
		panic(fmt.Sprintf("schedule: invalid default time %q", fallback))
	}
	return parseTimeOfDay(fallback, fallback)
}

func formatTimeOfDay(minutesFromMidnight int) string {
	return fmt.Sprintf("%02d:%02d", minutesFromMidnight/60, minutesFromMidnight%60)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func boolPtr(v bool) *bool {
	return &v
}
