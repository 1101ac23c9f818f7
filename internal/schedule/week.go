package schedule

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

var scheduleTracer = otel.Tracer("scheduler.internal.schedule")

// defaultAnchorDay anchors the week when the request carries no parsable
// anchor date. A fixed Monday keeps default output stable.
var defaultAnchorDay = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

// simulatedDays is Monday through Saturday.
const simulatedDays = 6

// Stress thresholds over weekly clinical utilization.
const (
	highStressUtilization   = 0.85
	mediumStressUtilization = 0.65
)

// SimulationRequest is the JSON-shaped input of one simulation.
type SimulationRequest struct {
	Rules        RulesInput `json:"rules"`
	Seed         *int64     `json:"seed"`
	ProviderID   string     `json:"providerId"`
	AnchorDayISO string     `json:"anchorDayIso"`
	DayISO       string     `json:"dayIso"`
}

// Service runs weekly schedule simulations. The core is pure; the service
// adds tracing, metrics, logging, and the optional result cache around it.
type Service struct {
	cache   *ResultCache
	metrics *metrics.SimulationMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewService constructs a simulation service. cache and m may be nil.
func NewService(cache *ResultCache, m *metrics.SimulationMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{cache: cache, metrics: m, logger: logger, now: time.Now}
}

// SimulateWeek runs the full pipeline for the Monday-through-Saturday week
// containing the request's anchor day: generate, detect, triage per day,
// then aggregate actions and insights.
func (s *Service) SimulateWeek(ctx context.Context, req SimulationRequest) *SimulationResult {
	ctx, span := scheduleTracer.Start(ctx, "schedule.simulate_week")
	defer span.End()
	started := s.now()

	rules := Normalize(req.Rules)
	seed := s.resolveSeed(req.Seed)
	monday := MondayOf(ResolveAnchorDay(req.AnchorDayISO, req.DayISO))
	span.SetAttributes(
		attribute.Int64("scheduler.seed", seed),
		attribute.Int("scheduler.chairs", rules.ChairCount),
		attribute.String("scheduler.week_of", monday.Format("2006-01-02")),
	)

	key := CacheKey(rules, seed, req.ProviderID, monday)
	if res, ok := s.cache.Get(ctx, key); ok {
		s.metrics.ObserveRun("cache_hit", s.now().Sub(started).Seconds(), len(res.Appointments), countGapActions(res.Actions))
		s.logger.Info("simulation served from cache", "week_of", monday.Format("2006-01-02"), "seed", seed)
		return res
	}

	res := s.simulate(rules, seed, req.ProviderID, monday)

	s.cache.Set(ctx, key, res)
	s.metrics.ObserveRun("ok", s.now().Sub(started).Seconds(), len(res.Appointments), countGapActions(res.Actions))
	s.logger.Info("simulation completed",
		"week_of", monday.Format("2006-01-02"),
		"seed", seed,
		"appointments", len(res.Appointments),
		"gap_panels", countGapActions(res.Actions),
		"stress", res.StressLevel,
	)
	return res
}

func (s *Service) simulate(rules Rules, seed int64, providerID string, monday time.Time) *SimulationResult {
	var (
		appointments []Appointment
		gapActions   []Action
		clinicalMin  int
		gapCount     int
		busiestDay   time.Time
		busiestCount int
	)

	nextID := 1
	for i := 0; i < simulatedDays; i++ {
		day := monday.AddDate(0, 0, i)

		var dayAppts []Appointment
		dayAppts, nextID = GenerateDay(rules, day, seed, providerID, nextID)
		appointments = append(appointments, dayAppts...)
		if len(dayAppts) > busiestCount {
			busiestCount = len(dayAppts)
			busiestDay = day
		}
		for _, a := range dayAppts {
			clinicalMin += MinutesBetween(a.Start.Time, a.End.Time)
		}

		for _, gap := range DetectGaps(dayAppts, rules, day) {
			meta := Triage(gap)
			gapCount++
			gapActions = append(gapActions, Action{
				Type: ActionTypeGapPanel,
				Title: fmt.Sprintf("%s: %d min open on chair %d",
					day.Format("Mon Jan 2"), gap.DurationMin, gap.ChairID),
				Description: meta.Rationale,
				Gap:         &meta,
			})
		}
	}

	actions := gapActions
	for _, a := range appointments {
		actions = append(actions, Action{
			Type:          ActionTypeConfirm,
			Title:         fmt.Sprintf("Confirm %s with %s", a.Type, a.PatientName),
			Description:   fmt.Sprintf("Send a confirmation for %s at %s.", a.Type, a.Start.Format("Mon Jan 2 15:04")),
			AppointmentID: a.ID,
		})
	}

	workable := MinutesBetween(
		FloorToStep(at(monday, rules.DayStartMin), rules.GranularityMin),
		CeilToStep(at(monday, rules.DayEndMin), rules.GranularityMin),
	) * rules.ChairCount * simulatedDays
	utilization := 0.0
	if workable > 0 {
		utilization = float64(clinicalMin) / float64(workable)
	}

	stress := StressLevelLow
	switch {
	case utilization >= highStressUtilization:
		stress = StressLevelHigh
	case utilization >= mediumStressUtilization:
		stress = StressLevelMedium
	}

	insights := []string{
		fmt.Sprintf("Generated %d appointments across %d chairs over %d days.", len(appointments), rules.ChairCount, simulatedDays),
		fmt.Sprintf("Surfaced %d bookable gaps at or above the %d min threshold.", gapCount, rules.LongGapThreshold),
		fmt.Sprintf("Average chair utilization: %d%%.", int(utilization*100)),
	}
	if busiestCount > 0 {
		insights = append(insights, fmt.Sprintf("Busiest day: %s with %d appointments.", busiestDay.Format("Monday"), busiestCount))
	}

	return &SimulationResult{
		Summary: fmt.Sprintf("Simulated week of %s: %d appointments, %d open gaps, stress level %s.",
			monday.Format("Jan 2 2006"), len(appointments), gapCount, stress),
		StressLevel:  stress,
		Insights:     insights,
		Appointments: appointments,
		Actions:      actions,
	}
}

// resolveSeed defaults a missing seed to the current time, keeping the run
// reproducible once the seed is echoed back in logs.
func (s *Service) resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return s.now().Unix()
}

// ResolveAnchorDay parses the anchor day from the request, preferring
// anchorDayIso over dayIso, falling back to the fixed default.
func ResolveAnchorDay(anchorDayISO, dayISO string) time.Time {
	for _, iso := range []string{anchorDayISO, dayISO} {
		if iso == "" {
			continue
		}
		if day, err := time.Parse("2006-01-02", iso); err == nil {
			return day
		}
	}
	return defaultAnchorDay
}

// MondayOf returns the Monday of the week containing day.
func MondayOf(day time.Time) time.Time {
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func countGapActions(actions []Action) int {
	n := 0
	for _, a := range actions {
		if a.Type == ActionTypeGapPanel {
			n++
		}
	}
	return n
}
