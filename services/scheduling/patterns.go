package scheduling

import (
	"context"
	"time"

	historyRepo "carebook/database/repository/history"
	"carebook/models"
)

const (
	defaultLookbackDays = 90
	favoredWindowSize   = 60 // favored windows are hour-wide buckets
)

// ProviderPatternProfiler mines a provider's trailing analytics into a
// utilization and favored-window pattern. Cached like preference profiles.
type ProviderPatternProfiler struct {
	History      historyRepo.HistoryRepository
	Cache        ProfileCache
	Retry        RetryConfig
	LookbackDays int
	HistoryLimit int
	CacheTTL     time.Duration
	Now          func() time.Time
}

// PatternFor returns the cached pattern for a provider, mining it on a miss.
func (p *ProviderPatternProfiler) PatternFor(ctx context.Context, providerID string) (models.ProviderPattern, error) {
	cacheKey := "pattern:" + providerID
	var cached models.ProviderPattern
	if p.Cache != nil && p.Cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	lookback := p.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}
	fromDate := now.AddDate(0, 0, -lookback).Format("2006-01-02")
	toDate := now.Format("2006-01-02")

	aggregates, err := CallAdapter(ctx, p.Retry, "analytics store", func(ctx context.Context) ([]models.DailyAggregate, error) {
		return p.History.GetDailyAggregates(ctx, providerID, fromDate, toDate)
	})
	if err != nil {
		return models.ProviderPattern{}, err
	}

	limit := p.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := CallAdapter(ctx, p.Retry, "history store", func(ctx context.Context) ([]models.HistoricalAppointment, error) {
		return p.History.GetAppointmentHistory(ctx, providerID, limit)
	})
	if err != nil {
		return models.ProviderPattern{}, err
	}

	pattern := BuildProviderPattern(providerID, aggregates, history)
	if p.Cache != nil {
		p.Cache.Set(ctx, cacheKey, pattern, p.cacheTTL())
	}
	return pattern, nil
}

// Invalidate drops the cached pattern for a provider.
func (p *ProviderPatternProfiler) Invalidate(ctx context.Context, providerID string) {
	if p.Cache != nil {
		p.Cache.Invalidate(ctx, "pattern:"+providerID)
	}
}

func (p *ProviderPatternProfiler) cacheTTL() time.Duration {
	if p.CacheTTL > 0 {
		return p.CacheTTL
	}
	return 30 * time.Minute
}

// BuildProviderPattern is the pure aggregation over analytics snapshots.
// With no usable data the pattern is neutral: zero utilization and a zero
// success rate, so sparse providers never inflate scores.
func BuildProviderPattern(providerID string, aggregates []models.DailyAggregate, history []models.HistoricalAppointment) models.ProviderPattern {
	pattern := models.ProviderPattern{
		ProviderID: providerID,
		SampleSize: len(aggregates) + len(history),
	}

	var booked, capacity, completed, cancelled int
	for _, agg := range aggregates {
		booked += agg.Booked
		capacity += agg.Capacity
		completed += agg.Completed
		cancelled += agg.Cancelled
	}
	if capacity > 0 {
		pattern.Utilization = float64(booked) / float64(capacity)
	}
	if completed+cancelled > 0 {
		pattern.SuccessRate = float64(completed) / float64(completed+cancelled)
	}

	// Favored windows: the hour buckets most frequently holding appointments.
	bucketCounts := make(map[int]int)
	for _, appt := range history {
		bucket := appt.Start / favoredWindowSize
		bucketCounts[bucket]++
	}
	for _, bucket := range topInts(bucketCounts, preferredTopN) {
		pattern.FavoredWindows = append(pattern.FavoredWindows, models.TimeWindow{
			Start: bucket * favoredWindowSize,
			End:   (bucket + 1) * favoredWindowSize,
		})
	}
	return pattern
}
