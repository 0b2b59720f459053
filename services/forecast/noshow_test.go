package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingRepo "carebook/database/repository/booking"
	"carebook/models"
	"carebook/services/scheduling"
)

type fakeBookingRepo struct {
	booking *models.Booking
}

func (f *fakeBookingRepo) GetBooking(_ context.Context, bookingID string) (*models.Booking, error) {
	if f.booking == nil || f.booking.ID != bookingID {
		return nil, bookingRepo.ErrNotFound
	}
	b := *f.booking
	return &b, nil
}

func (f *fakeBookingRepo) GetActiveBookings(_ context.Context, _, _, _ string) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) FindActiveAt(_ context.Context, _, _ string, _ int) (*models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) CreateBooking(_ context.Context, _ *models.Booking) error { return nil }
func (f *fakeBookingRepo) CancelBooking(_ context.Context, _ string) error          { return nil }

func cancelledHistory(cancelled, completed int) []models.HistoricalAppointment {
	var history []models.HistoricalAppointment
	for i := 0; i < cancelled; i++ {
		history = append(history, models.HistoricalAppointment{UserID: "user-1", Status: "cancelled"})
	}
	for i := 0; i < completed; i++ {
		history = append(history, models.HistoricalAppointment{UserID: "user-1", Status: "completed"})
	}
	return history
}

// weekdayBooking falls on Monday 2024-01-01, weekendBooking on Saturday
// 2024-01-06.
var (
	weekdayBooking = models.Booking{ID: "b-1", UserID: "user-1", ProviderID: "prov-1", Date: "2024-01-01", Start: 600, End: 630, Status: models.BookingScheduled}
	weekendBooking = models.Booking{ID: "b-2", UserID: "user-1", ProviderID: "prov-1", Date: "2024-01-06", Start: 600, End: 630, Status: models.BookingScheduled}
)

func TestPredictNoShowSmoothedProbability(t *testing.T) {
	bookings := &fakeBookingRepo{booking: &weekdayBooking}
	history := &fakeHistoryRepo{history: cancelledHistory(3, 10)}
	predictor := NewNoShowPredictor(bookings, history)

	prediction, err := predictor.PredictNoShow(context.Background(), "b-1")
	require.NoError(t, err)

	// 3 cancellations smoothed: 3/(3+10).
	assert.InDelta(t, 3.0/13.0, prediction.Probability, 1e-9)
	assert.Contains(t, prediction.Factors, "high historical no-show rate")
	assert.Empty(t, prediction.Recommendations, "below the risk threshold no actions are suggested")
}

func TestPredictNoShowCleanHistory(t *testing.T) {
	bookings := &fakeBookingRepo{booking: &weekdayBooking}
	history := &fakeHistoryRepo{history: cancelledHistory(0, 8)}
	predictor := NewNoShowPredictor(bookings, history)

	prediction, err := predictor.PredictNoShow(context.Background(), "b-1")
	require.NoError(t, err)

	assert.Zero(t, prediction.Probability)
	assert.Empty(t, prediction.Factors)
	assert.Empty(t, prediction.Recommendations)
}

func TestPredictNoShowHighRiskRecommendations(t *testing.T) {
	bookings := &fakeBookingRepo{booking: &weekdayBooking}
	history := &fakeHistoryRepo{history: cancelledHistory(8, 2)}
	predictor := NewNoShowPredictor(bookings, history)

	prediction, err := predictor.PredictNoShow(context.Background(), "b-1")
	require.NoError(t, err)

	// 8/(8+10) crosses the 0.3 threshold.
	assert.InDelta(t, 8.0/18.0, prediction.Probability, 1e-9)
	require.NotEmpty(t, prediction.Recommendations)
	assert.Contains(t, prediction.Recommendations[0], "reminder")
}

func TestPredictNoShowWeekendFactor(t *testing.T) {
	predictor := NewNoShowPredictor(&fakeBookingRepo{}, &fakeHistoryRepo{})

	lowRisk := predictor.Predict(&weekendBooking, 1)
	assert.Contains(t, lowRisk.Factors, "weekend appointment")
	assert.Empty(t, lowRisk.Recommendations)

	highRisk := predictor.Predict(&weekendBooking, 9)
	require.NotEmpty(t, highRisk.Recommendations)
	weekdayHint := false
	for _, rec := range highRisk.Recommendations {
		if rec == "Offer weekday alternatives; weekend slots cancel more often" {
			weekdayHint = true
		}
	}
	assert.True(t, weekdayHint)
}

func TestPredictNoShowUnknownBooking(t *testing.T) {
	predictor := NewNoShowPredictor(&fakeBookingRepo{}, &fakeHistoryRepo{})

	_, err := predictor.PredictNoShow(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, bookingRepo.ErrNotFound)
	assert.False(t, scheduling.IsAdapterUnavailable(err),
		"a missing booking is a definitive answer, not an outage")
}

func TestPredictNoShowRetriesTransientHistoryFailure(t *testing.T) {
	bookings := &fakeBookingRepo{booking: &weekdayBooking}
	history := &fakeHistoryRepo{history: cancelledHistory(3, 10), failures: 1}
	// Zero-value retry config: the full defaults apply.
	predictor := NewNoShowPredictor(bookings, history)

	prediction, err := predictor.PredictNoShow(context.Background(), "b-1")
	require.NoError(t, err, "one transient failure must be absorbed by the retry budget")
	assert.InDelta(t, 3.0/13.0, prediction.Probability, 1e-9)
	assert.GreaterOrEqual(t, history.calls, 2)
}

func TestPredictNoShowHistoryExhaustion(t *testing.T) {
	bookings := &fakeBookingRepo{booking: &weekdayBooking}
	history := &fakeHistoryRepo{err: assert.AnError}
	predictor := NewNoShowPredictor(bookings, history)
	predictor.Retry = scheduling.RetryConfig{Timeout: time.Second}

	_, err := predictor.PredictNoShow(context.Background(), "b-1")
	require.Error(t, err)
	assert.True(t, scheduling.IsAdapterUnavailable(err))
}

func TestPredictProbabilityBounds(t *testing.T) {
	predictor := NewNoShowPredictor(&fakeBookingRepo{}, &fakeHistoryRepo{})

	for cancelled := 0; cancelled <= 100; cancelled += 10 {
		p := predictor.Predict(&weekdayBooking, cancelled)
		assert.GreaterOrEqual(t, p.Probability, 0.0)
		assert.Less(t, p.Probability, 1.0)
	}
}
