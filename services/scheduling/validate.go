package scheduling

import (
	"fmt"
	"time"

	"carebook/models"
)

const (
	minDurationMinutes = 5
	maxDurationMinutes = 8 * 60
	maxWaitDaysCeiling = 365
)

// validateRequest rejects malformed requests before any adapter call and
// applies the duration default. It mutates only the Duration field.
func validateRequest(req *models.SchedulingRequest) error {
	if req.UserID == "" {
		return NewInvalidRequestError("requester id is required")
	}
	if req.ProviderID == "" {
		return NewInvalidRequestError("provider id is required")
	}
	if req.Duration == 0 {
		req.Duration = defaultAvgDuration
	}
	if req.Duration < minDurationMinutes || req.Duration > maxDurationMinutes {
		return NewInvalidRequestError(fmt.Sprintf("duration must be between %d and %d minutes", minDurationMinutes, maxDurationMinutes))
	}
	if req.Urgency < models.UrgencyLow || req.Urgency > models.UrgencyUrgent {
		return NewInvalidRequestError("unknown urgency level")
	}
	if req.PreferredDate != "" {
		if _, err := time.Parse("2006-01-02", req.PreferredDate); err != nil {
			return NewInvalidRequestError("preferredDate must be formatted YYYY-MM-DD")
		}
	}
	if req.PreferredTime < -1 || req.PreferredTime >= 24*60 {
		return NewInvalidRequestError("preferredTime must be minutes from midnight, or -1 when unset")
	}
	if req.Constraints.MaxWaitDays < 0 || req.Constraints.MaxWaitDays > maxWaitDaysCeiling {
		return NewInvalidRequestError("maxWaitDays out of range")
	}
	for _, w := range req.Constraints.ExcludedWindows {
		if w.End <= w.Start || w.Start < 0 || w.End > 24*60 {
			return NewInvalidRequestError("excluded windows must be valid [start, end) minute ranges")
		}
	}
	return nil
}
