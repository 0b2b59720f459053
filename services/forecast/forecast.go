package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	historyRepo "carebook/database/repository/history"
	"carebook/models"
	"carebook/services/scheduling"
)

// DemandForecaster projects per-day demand for a provider from trailing
// daily aggregates. It is a read-only path consumed by reporting
// collaborators; it never touches bookings.
type DemandForecaster struct {
	History historyRepo.HistoryRepository
	Retry   scheduling.RetryConfig
	// LookbackDays bounds the trailing aggregate window (default 90).
	LookbackDays int
	// BaseConfidence is the forecast confidence with an adequate sample
	// (default 0.7), scaled down proportionally below MinSamples.
	BaseConfidence float64
	MinSamples     int
	// HighUtilization is the fraction of daily capacity above which a
	// high-demand recommendation is attached (default 0.8).
	HighUtilization float64
	Now             func() time.Time
}

func NewDemandForecaster(history historyRepo.HistoryRepository) *DemandForecaster {
	return &DemandForecaster{
		History:         history,
		LookbackDays:    90,
		BaseConfidence:  0.7,
		MinSamples:      4,
		HighUtilization: 0.8,
	}
}

// Forecast produces one DemandForecast per date in [from, to].
func (f *DemandForecaster) Forecast(ctx context.Context, providerID string, from, to time.Time) ([]models.DemandForecast, error) {
	if providerID == "" {
		return nil, scheduling.NewInvalidRequestError("provider id is required")
	}
	if to.Before(from) {
		return nil, scheduling.NewInvalidRequestError("forecast range end precedes start")
	}

	now := f.now()
	lookbackFrom := now.AddDate(0, 0, -f.lookbackDays()).Format("2006-01-02")
	lookbackTo := now.Format("2006-01-02")

	aggregates, err := scheduling.CallAdapter(ctx, f.Retry, "analytics store", func(ctx context.Context) ([]models.DailyAggregate, error) {
		return f.History.GetDailyAggregates(ctx, providerID, lookbackFrom, lookbackTo)
	})
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[time.Weekday][]float64)
	var overall []float64
	capacity := 0
	for _, agg := range aggregates {
		day, err := time.Parse("2006-01-02", agg.Date)
		if err != nil {
			continue
		}
		byWeekday[day.Weekday()] = append(byWeekday[day.Weekday()], float64(agg.Booked))
		overall = append(overall, float64(agg.Booked))
		if agg.Capacity > capacity {
			capacity = agg.Capacity
		}
	}

	var forecasts []models.DemandForecast
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		forecasts = append(forecasts, f.forecastDay(providerID, d, byWeekday[d.Weekday()], overall, capacity))
	}
	return forecasts, nil
}

func (f *DemandForecaster) forecastDay(providerID string, date time.Time, sameWeekday, overall []float64, capacity int) models.DemandForecast {
	factors := []string{"historical average"}
	sample := sameWeekday
	if len(sample) > 0 {
		factors = append(factors, "day-of-week pattern")
	} else {
		sample = overall
	}

	var predicted float64
	if len(sample) > 0 {
		if mean, err := stats.Mean(sample); err == nil {
			predicted = mean
		}
	}

	confidence := f.baseConfidence()
	if min := f.minSamples(); len(sample) < min {
		confidence = confidence * float64(len(sample)) / float64(min)
	}

	forecast := models.DemandForecast{
		ProviderID:      providerID,
		Date:            date.Format("2006-01-02"),
		PredictedDemand: int(math.Round(predicted)),
		Confidence:      confidence,
		Factors:         factors,
	}
	if capacity > 0 && predicted > f.highUtilization()*float64(capacity) {
		forecast.Recommendations = append(forecast.Recommendations,
			fmt.Sprintf("Predicted demand %.0f approaches daily capacity %d; consider extra capacity or extended hours", predicted, capacity))
	}
	return forecast
}

func (f *DemandForecaster) lookbackDays() int {
	if f.LookbackDays > 0 {
		return f.LookbackDays
	}
	return 90
}

func (f *DemandForecaster) baseConfidence() float64 {
	if f.BaseConfidence > 0 {
		return f.BaseConfidence
	}
	return 0.7
}

func (f *DemandForecaster) minSamples() int {
	if f.MinSamples > 0 {
		return f.MinSamples
	}
	return 4
}

func (f *DemandForecaster) highUtilization() float64 {
	if f.HighUtilization > 0 {
		return f.HighUtilization
	}
	return 0.8
}

func (f *DemandForecaster) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
