package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	bookingRepo "carebook/database/repository/booking"
	historyRepo "carebook/database/repository/history"
	"carebook/models"
	"carebook/services/scheduling"
)

// NoShowPredictor estimates the probability that a booked appointment ends
// in a cancellation or no-show. The rate is Laplace-smoothed so sparse
// history cannot produce over-confident predictions.
type NoShowPredictor struct {
	Bookings bookingRepo.BookingRepository
	History  historyRepo.HistoryRepository
	Retry    scheduling.RetryConfig
	// Smoothing is the Laplace constant in cancelled/(cancelled+Smoothing),
	// default 10.
	Smoothing float64
	// RiskThreshold gates recommendations, default 0.3.
	RiskThreshold float64
	// CancelsFlagged is the cancelled-count above which the history itself
	// becomes a named factor, default 2.
	CancelsFlagged int
	HistoryLimit   int
}

func NewNoShowPredictor(bookings bookingRepo.BookingRepository, history historyRepo.HistoryRepository) *NoShowPredictor {
	return &NoShowPredictor{
		Bookings:       bookings,
		History:        history,
		Smoothing:      10,
		RiskThreshold:  0.3,
		CancelsFlagged: 2,
		HistoryLimit:   50,
	}
}

// PredictNoShow scores one booking by its requester's cancellation history.
func (p *NoShowPredictor) PredictNoShow(ctx context.Context, bookingID string) (*models.NoShowPrediction, error) {
	booking, err := scheduling.CallAdapter(ctx, p.Retry, "booking store", func(ctx context.Context) (*models.Booking, error) {
		b, err := p.Bookings.GetBooking(ctx, bookingID)
		if errors.Is(err, bookingRepo.ErrNotFound) {
			// A missing booking is an answer, not an outage.
			return nil, backoff.Permanent(err)
		}
		return b, err
	})
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, bookingRepo.ErrNotFound)
		}
		return nil, err
	}

	history, err := scheduling.CallAdapter(ctx, p.Retry, "history store", func(ctx context.Context) ([]models.HistoricalAppointment, error) {
		return p.History.GetAppointmentHistory(ctx, booking.UserID, p.historyLimit())
	})
	if err != nil {
		return nil, err
	}

	cancelled := 0
	for _, appt := range history {
		if appt.Status == string(models.BookingCancelled) {
			cancelled++
		}
	}

	return p.Predict(booking, cancelled), nil
}

// Predict is the pure scoring over a booking and its requester's cancelled
// count.
func (p *NoShowPredictor) Predict(booking *models.Booking, cancelled int) *models.NoShowPrediction {
	prediction := &models.NoShowPrediction{
		BookingID:   booking.ID,
		Probability: float64(cancelled) / (float64(cancelled) + p.smoothing()),
	}

	weekend := isWeekend(booking.Date)
	if cancelled > p.cancelsFlagged() {
		prediction.Factors = append(prediction.Factors, "high historical no-show rate")
	}
	if weekend {
		prediction.Factors = append(prediction.Factors, "weekend appointment")
	}

	if prediction.Probability >= p.riskThreshold() {
		prediction.Recommendations = append(prediction.Recommendations,
			"Send a reminder 24 hours before the appointment",
			"Confirm attendance by phone")
		if weekend {
			prediction.Recommendations = append(prediction.Recommendations,
				"Offer weekday alternatives; weekend slots cancel more often")
		}
	}
	return prediction
}

func isWeekend(date string) bool {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

func (p *NoShowPredictor) smoothing() float64 {
	if p.Smoothing > 0 {
		return p.Smoothing
	}
	return 10
}

func (p *NoShowPredictor) riskThreshold() float64 {
	if p.RiskThreshold > 0 {
		return p.RiskThreshold
	}
	return 0.3
}

func (p *NoShowPredictor) cancelsFlagged() int {
	if p.CancelsFlagged > 0 {
		return p.CancelsFlagged
	}
	return 2
}

func (p *NoShowPredictor) historyLimit() int {
	if p.HistoryLimit > 0 {
		return p.HistoryLimit
	}
	return 50
}
