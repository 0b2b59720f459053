package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	calendarRepo "carebook/database/repository/calendar"
	"carebook/models"
	"carebook/utils"
)

// ScheduleOptimizer is the orchestrating entry point of the scheduling engine.
type ScheduleOptimizer interface {
	// Optimize ranks candidate slots for a request and returns the primary
	// recommendation with alternatives and suggestions.
	Optimize(ctx context.Context, req models.SchedulingRequest) (*models.OptimizedSchedule, error)
	// PreviewSlots returns the raw generated candidates for a provider over a
	// date range, unscored.
	PreviewSlots(ctx context.Context, providerID string, from, to time.Time, duration int) ([]models.CandidateSlot, error)
	// CommitBooking atomically claims a slot chosen from an optimization
	// result.
	CommitBooking(ctx context.Context, slot models.CandidateSlot, userID, providerID string) (*models.Booking, error)
}

// DefaultScheduleOptimizer composes the generator, profilers, scorer and
// resolver. Requests for different providers are independent; all shared
// state lives in the profile cache and the resolver's slot locks.
type DefaultScheduleOptimizer struct {
	Calendar    calendarRepo.CalendarRepository
	Generator   *SlotGenerator
	Scorer      *ConfidenceScorer
	Resolver    *ConflictResolver
	Preferences *PreferenceProfiler
	Patterns    *ProviderPatternProfiler

	Retry           RetryConfig
	HorizonDays     int
	DefaultDuration int
	MaxAlternatives int
	// OnCommit, when set, runs after a successful commit (reminder enqueue
	// and similar follow-ups). Failures there never undo the booking.
	OnCommit func(booking *models.Booking)
}

func (o *DefaultScheduleOptimizer) Optimize(ctx context.Context, req models.SchedulingRequest) (*models.OptimizedSchedule, error) {
	logger := utils.GetLogger()

	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	from, to := o.horizon(req)
	tmpl, overrides, err := o.fetchCalendar(ctx, req.ProviderID, from, to)
	if err != nil {
		// The calendar is the ground truth for availability. Without it
		// there is nothing to generate, so this failure is not degradable.
		return nil, err
	}

	candidates := o.Generator.Generate(tmpl, overrides, from, to, req.Duration)
	candidates = applyConstraints(candidates, req.Constraints)
	if len(candidates) == 0 {
		return nil, NewNoSlotsAvailableError(
			fmt.Sprintf("no bookable slots for provider %s between %s and %s",
				req.ProviderID, from.Format("2006-01-02"), to.Format("2006-01-02")))
	}

	// Profiles only affect scoring quality, so losing the history adapters
	// degrades the result instead of failing the request.
	degraded := false
	profile, err := o.Preferences.ProfileFor(ctx, req.UserID)
	if err != nil {
		logger.Warn("scoring without preference profile",
			zap.String("userId", req.UserID), zap.Error(err))
		profile = models.PreferenceProfile{UserID: req.UserID, AvgDuration: defaultAvgDuration}
		degraded = true
	}
	pattern, err := o.Patterns.PatternFor(ctx, req.ProviderID)
	if err != nil {
		logger.Warn("scoring without provider pattern",
			zap.String("providerId", req.ProviderID), zap.Error(err))
		pattern = models.ProviderPattern{ProviderID: req.ProviderID}
		degraded = true
	}
	profile = mergeRequestPreferences(profile, req)

	ranked := o.Scorer.Rank(candidates, req, profile, pattern)
	if len(ranked) == 0 {
		return nil, NewNoSlotsAvailableError("all candidate slots fell below the confidence floor")
	}

	resolved, err := o.Resolver.Resolve(ctx, req.ProviderID, ranked, candidates)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, NewNoSlotsAvailableError("all candidate slots conflict with existing bookings")
	}

	maxAlt := o.MaxAlternatives
	if maxAlt <= 0 {
		maxAlt = 3
	}
	primary := resolved[0]
	alternatives := resolved[1:]
	if len(alternatives) > maxAlt {
		alternatives = alternatives[:maxAlt]
	}

	return &models.OptimizedSchedule{
		RequestID:    uuid.New().String(),
		Primary:      primary,
		Alternatives: alternatives,
		Suggestions:  buildSuggestions(primary, len(alternatives), degraded),
	}, nil
}

func (o *DefaultScheduleOptimizer) PreviewSlots(ctx context.Context, providerID string, from, to time.Time, duration int) ([]models.CandidateSlot, error) {
	if providerID == "" {
		return nil, NewInvalidRequestError("provider id is required")
	}
	if duration <= 0 {
		duration = o.duration()
	}
	tmpl, overrides, err := o.fetchCalendar(ctx, providerID, from, to)
	if err != nil {
		return nil, err
	}
	return o.Generator.Generate(tmpl, overrides, from, to, duration), nil
}

func (o *DefaultScheduleOptimizer) CommitBooking(ctx context.Context, slot models.CandidateSlot, userID, providerID string) (*models.Booking, error) {
	booking, err := o.Resolver.CommitBooking(ctx, slot, userID, providerID)
	if err != nil {
		return nil, err
	}

	// New history arrived: cached profiles for both parties are stale.
	o.Preferences.Invalidate(ctx, userID)
	o.Patterns.Invalidate(ctx, providerID)

	if o.OnCommit != nil {
		go o.OnCommit(booking)
	}
	return booking, nil
}

func (o *DefaultScheduleOptimizer) fetchCalendar(ctx context.Context, providerID string, from, to time.Time) (models.WorkingHoursTemplate, []models.AvailabilityOverride, error) {
	type calendarResult struct {
		tmpl      models.WorkingHoursTemplate
		overrides []models.AvailabilityOverride
	}
	fromDate := from.Format("2006-01-02")
	toDate := to.Format("2006-01-02")
	result, err := CallAdapter(ctx, o.Retry, "calendar source", func(ctx context.Context) (calendarResult, error) {
		tmpl, overrides, err := o.Calendar.GetWorkingHours(ctx, providerID, fromDate, toDate)
		return calendarResult{tmpl: tmpl, overrides: overrides}, err
	})
	if err != nil {
		return models.WorkingHoursTemplate{}, nil, err
	}
	return result.tmpl, result.overrides, nil
}

// horizon bounds the search window: HorizonDays from now, capped by the
// request's maxWaitDays constraint.
func (o *DefaultScheduleOptimizer) horizon(req models.SchedulingRequest) (time.Time, time.Time) {
	now := o.Generator.now()
	days := o.HorizonDays
	if days <= 0 {
		days = 30
	}
	if req.Constraints.MaxWaitDays > 0 && req.Constraints.MaxWaitDays < days {
		days = req.Constraints.MaxWaitDays
	}
	return now, now.AddDate(0, 0, days)
}

func (o *DefaultScheduleOptimizer) duration() int {
	if o.DefaultDuration > 0 {
		return o.DefaultDuration
	}
	return defaultAvgDuration
}

// applyConstraints enforces the request's hard bounds: excluded time windows
// and, when present, the preferred-weekday whitelist.
func applyConstraints(candidates []models.CandidateSlot, constraints models.RequestConstraints) []models.CandidateSlot {
	if len(constraints.ExcludedWindows) == 0 && len(constraints.PreferredWeekdays) == 0 {
		return candidates
	}
	filtered := candidates[:0]
	for _, slot := range candidates {
		if excludedSlot(slot, constraints.ExcludedWindows) {
			continue
		}
		if len(constraints.PreferredWeekdays) > 0 && !weekdayAllowed(slot.Date, constraints.PreferredWeekdays) {
			continue
		}
		filtered = append(filtered, slot)
	}
	return filtered
}

func excludedSlot(slot models.CandidateSlot, windows []models.TimeWindow) bool {
	w := models.TimeWindow{Start: slot.Start, End: slot.End}
	for _, excluded := range windows {
		if w.Overlaps(excluded) {
			return true
		}
	}
	return false
}

func weekdayAllowed(date string, weekdays []time.Weekday) bool {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	for _, wd := range weekdays {
		if day.Weekday() == wd {
			return true
		}
	}
	return false
}

// mergeRequestPreferences folds the request's explicit preferred date/time
// into the mined profile so one-off wishes rank alongside learned habits.
func mergeRequestPreferences(profile models.PreferenceProfile, req models.SchedulingRequest) models.PreferenceProfile {
	if req.PreferredTime >= 0 && !profile.PrefersTime(req.PreferredTime) {
		profile.PreferredTimes = append([]int{req.PreferredTime}, profile.PreferredTimes...)
	}
	if req.PreferredDate != "" {
		if day, err := time.Parse("2006-01-02", req.PreferredDate); err == nil && !profile.PrefersDay(day.Weekday()) {
			profile.PreferredDays = append(profile.PreferredDays, day.Weekday())
		}
	}
	return profile
}

func buildSuggestions(primary models.CandidateSlot, alternatives int, degraded bool) []models.AISuggestion {
	suggestions := []models.AISuggestion{
		{
			Type:    "preference_learning",
			Message: "Recommendations improve as booking history accumulates for this requester and provider.",
		},
		{
			Type: "optimal_pick",
			Message: fmt.Sprintf("Best available slot: %s at %s (%.0f%% confidence)",
				primary.Date, minutesToClock(primary.Start), primary.Confidence*100),
		},
	}
	if alternatives > 0 {
		suggestions = append(suggestions, models.AISuggestion{
			Type:    "alternatives",
			Message: fmt.Sprintf("%d alternative slots are available if the primary slot does not suit", alternatives),
		})
	}
	if degraded {
		suggestions = append(suggestions, models.AISuggestion{
			Type:    "limited_history",
			Message: "History sources were unavailable; confidence scores are based on calendar availability only.",
		})
	}
	return suggestions
}
