package historyRepo

import (
	"context"

	"carebook/models"
)

// HistoryRepository is the read-only adapter onto the persistence and
// analytics collaborators: past appointments for preference mining and daily
// aggregates for pattern mining and forecasting.
type HistoryRepository interface {
	// GetAppointmentHistory returns the most recent appointments for a party
	// (requester or provider), newest first, capped at limit.
	GetAppointmentHistory(ctx context.Context, partyID string, limit int) ([]models.HistoricalAppointment, error)
	// GetDailyAggregates returns per-day analytics for a provider over an
	// inclusive date range.
	GetDailyAggregates(ctx context.Context, providerID, fromDate, toDate string) ([]models.DailyAggregate, error)
}
