// Package schedule implements the synthetic schedule generator and the
// gap-detection/triage pipeline: normalized clinic rules feed a per-chair
// day generator, detected idle windows are ranked and triaged, and a weekly
// orchestrator composes six days of the pipeline into one result.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// WireTimeLayout is the naive local-time format used on the wire. The core
// is timezone-agnostic; callers attach a real zone if they need one.
const WireTimeLayout = "2006-01-02T15:04:05"

// LocalTime wraps time.Time so appointment and gap timestamps marshal as
// YYYY-MM-DDTHH:MM:SS without an offset.
type LocalTime struct {
	time.Time
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(WireTimeLayout))
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(WireTimeLayout, s)
	if err != nil {
		return fmt.Errorf("schedule: parse local time %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Appointment is a single generated booking. Created by the generator and
// never mutated afterwards; ids are unique and monotonically increasing
// across a whole simulation run.
type Appointment struct {
	ID          int       `json:"id"`
	PatientName string    `json:"patientName"`
	Start       LocalTime `json:"start"`
	End         LocalTime `json:"end"`
	Type        string    `json:"type"`
	ChairID     int       `json:"chairId"`
	ProviderID  string    `json:"providerId,omitempty"`
}

// Gap is an idle window on a single chair. Gaps are recomputed fresh from
// the appointment list on every run; GapKey doubles as the deterministic
// seed for triage and as an idempotency key for consumers.
type Gap struct {
	Start        LocalTime `json:"start"`
	End          LocalTime `json:"end"`
	DurationMin  int       `json:"durationMin"`
	GapKey       string    `json:"gapKey"`
	ChairID      int       `json:"chairId"`
	IsStartOfDay bool      `json:"isStartOfDay,omitempty"`
	IsEndOfDay   bool      `json:"isEndOfDay,omitempty"`
}

// FillProbability estimates how realistic it is to fill a gap on short
// notice. Shorter gaps are easier to fill.
type FillProbability string

const (
	FillProbabilityLow    FillProbability = "LOW"
	FillProbabilityMedium FillProbability = "MEDIUM"
	FillProbabilityHigh   FillProbability = "HIGH"
)

// Recommendation is the triaged next move for a surfaced gap.
type Recommendation string

const (
	RecommendationFillWithRequests Recommendation = "FILL_WITH_REQUESTS"
	RecommendationRecallPatients   Recommendation = "RECALL_PATIENTS"
	RecommendationPersonalTime     Recommendation = "PERSONAL_TIME"
	RecommendationWaitOrReschedule Recommendation = "WAIT_OR_RESCHEDULE"
)

// AlternativeAction is one of the selectable moves attached to a gap panel.
// Exactly one alternative per gap is flagged primary.
type AlternativeAction struct {
	Type    Recommendation `json:"type"`
	Label   string         `json:"label"`
	Primary bool           `json:"primary"`
}

// GapMeta is the read-only presentation of a gap plus its triage outcome.
type GapMeta struct {
	Gap                 Gap                 `json:"gap"`
	HasImmediateDemand  bool                `json:"hasImmediateDemand"`
	HasRecallCandidates bool                `json:"hasRecallCandidates"`
	FillProbability     FillProbability     `json:"fillProbability"`
	Recommendation      Recommendation      `json:"recommendation"`
	Rationale           string              `json:"rationale"`
	NextSteps           []string            `json:"nextSteps"`
	Alternatives        []AlternativeAction `json:"alternatives"`
}

// Action types emitted by the weekly orchestrator.
const (
	ActionTypeGapPanel = "GAP_PANEL"
	ActionTypeConfirm  = "CONFIRM"
)

// Action is one item of the week's action feed: a gap panel carrying
// GapMeta, or a per-appointment confirmation task.
type Action struct {
	Type          string   `json:"type"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Gap           *GapMeta `json:"gap,omitempty"`
	AppointmentID int      `json:"appointmentId,omitempty"`
}

// StressLevel summarizes how loaded the simulated week is.
type StressLevel string

const (
	StressLevelLow    StressLevel = "LOW"
	StressLevelMedium StressLevel = "MEDIUM"
	StressLevelHigh   StressLevel = "HIGH"
)

// SimulationResult is the full weekly output returned to the caller.
type SimulationResult struct {
	Summary      string        `json:"summary"`
	StressLevel  StressLevel   `json:"stressLevel"`
	Insights     []string      `json:"insights"`
	Appointments []Appointment `json:"appointments"`
	Actions      []Action      `json:"actions"`
}
