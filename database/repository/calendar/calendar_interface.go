package calendarRepo

import (
	"context"

	"carebook/models"
)

// CalendarRepository is the read-only adapter onto the calendar collaborator.
// It exposes a provider's working-hour template and availability overrides
// for a date range.
type CalendarRepository interface {
	GetWorkingHours(ctx context.Context, providerID, fromDate, toDate string) (models.WorkingHoursTemplate, []models.AvailabilityOverride, error)
}
