package scheduling

import (
	"context"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	historyRepo "carebook/database/repository/history"
	"carebook/models"
)

const (
	defaultHistoryLimit = 50
	defaultAvgDuration  = 30
	preferredTopN       = 3
)

// PreferenceProfiler mines a requester's appointment history into a
// preference profile. Profiles are cached; Invalidate must be called when new
// history arrives for the requester.
type PreferenceProfiler struct {
	History      historyRepo.HistoryRepository
	Cache        ProfileCache
	Retry        RetryConfig
	HistoryLimit int
	CacheTTL     time.Duration
}

// ProfileFor returns the cached profile for a requester, mining it from
// history on a miss.
func (p *PreferenceProfiler) ProfileFor(ctx context.Context, userID string) (models.PreferenceProfile, error) {
	cacheKey := "pref:" + userID
	var cached models.PreferenceProfile
	if p.Cache != nil && p.Cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	limit := p.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	history, err := CallAdapter(ctx, p.Retry, "history store", func(ctx context.Context) ([]models.HistoricalAppointment, error) {
		return p.History.GetAppointmentHistory(ctx, userID, limit)
	})
	if err != nil {
		return models.PreferenceProfile{}, err
	}

	profile := BuildPreferenceProfile(userID, history)
	if p.Cache != nil {
		p.Cache.Set(ctx, cacheKey, profile, p.cacheTTL())
	}
	return profile, nil
}

// Invalidate drops the cached profile for a requester. Call when a new
// completed or cancelled appointment lands for that id.
func (p *PreferenceProfiler) Invalidate(ctx context.Context, userID string) {
	if p.Cache != nil {
		p.Cache.Invalidate(ctx, "pref:"+userID)
	}
}

func (p *PreferenceProfiler) cacheTTL() time.Duration {
	if p.CacheTTL > 0 {
		return p.CacheTTL
	}
	return 30 * time.Minute
}

// BuildPreferenceProfile is the pure aggregation over a history snapshot.
// Empty history yields a neutral profile: no preferences, default duration,
// zero no-show rate.
func BuildPreferenceProfile(userID string, history []models.HistoricalAppointment) models.PreferenceProfile {
	profile := models.PreferenceProfile{
		UserID:      userID,
		AvgDuration: defaultAvgDuration,
		SampleSize:  len(history),
	}
	if len(history) == 0 {
		return profile
	}

	timeCounts := make(map[int]int)
	dayCounts := make(map[time.Weekday]int)
	providerCounts := make(map[string]int)
	var durations []float64
	cancelled := 0

	for _, appt := range history {
		timeCounts[appt.Start]++
		if day, err := time.Parse("2006-01-02", appt.Date); err == nil {
			dayCounts[day.Weekday()]++
		}
		providerCounts[appt.ProviderID]++
		if appt.Duration > 0 {
			durations = append(durations, float64(appt.Duration))
		}
		if appt.Status == string(models.BookingCancelled) {
			cancelled++
		}
	}

	profile.PreferredTimes = topInts(timeCounts, preferredTopN)
	profile.PreferredDays = topDays(dayCounts, preferredTopN)
	profile.PreferredProviders = topStrings(providerCounts, preferredTopN)
	profile.NoShowRate = float64(cancelled) / float64(len(history))

	if len(durations) > 0 {
		if mean, err := stats.Mean(durations); err == nil {
			profile.AvgDuration = int(mean + 0.5)
		}
	}
	return profile
}

// rankedKeys sorts map keys by descending count; ties break on the key's
// formatted value so the ranking is deterministic.
func rankedKeys[K comparable](counts map[K]int, less func(a, b K) bool) []K {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return less(keys[i], keys[j])
	})
	return keys
}

func topInts(counts map[int]int, n int) []int {
	keys := rankedKeys(counts, func(a, b int) bool { return a < b })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topDays(counts map[time.Weekday]int, n int) []time.Weekday {
	keys := rankedKeys(counts, func(a, b time.Weekday) bool { return a < b })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topStrings(counts map[string]int, n int) []string {
	keys := rankedKeys(counts, func(a, b string) bool { return a < b })
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
