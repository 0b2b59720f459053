package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebook/models"
)

func TestScoreZeroHistoryUrgentRequest(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	slot := models.CandidateSlot{Date: "2024-01-01", Start: 540, End: 570}
	req := models.SchedulingRequest{
		UserID:        "user-1",
		ProviderID:    "prov-1",
		PreferredTime: -1,
		Urgency:       models.UrgencyUrgent,
		Duration:      30,
	}

	score, reasoning := scorer.Score(slot, req, models.PreferenceProfile{}, models.ProviderPattern{})

	// Base plus urgency only: 0.5 + 0.15*0.9.
	assert.InDelta(t, 0.635, score, 1e-9)
	assert.Equal(t, "good match", reasoning)
}

func TestScoreAllSignalsClampsToOne(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	slot := models.CandidateSlot{Date: "2024-01-01", Start: 600, End: 630}
	req := models.SchedulingRequest{Urgency: models.UrgencyUrgent, PreferredTime: -1}
	profile := models.PreferenceProfile{
		PreferredTimes: []int{600},
		PreferredDays:  []time.Weekday{time.Monday},
	}
	pattern := models.ProviderPattern{
		FavoredWindows: []models.TimeWindow{{Start: 600, End: 660}},
		SuccessRate:    1.0,
	}

	score, reasoning := scorer.Score(slot, req, profile, pattern)

	assert.Equal(t, 1.0, score)
	assert.Contains(t, reasoning, "excellent match")
	assert.Contains(t, reasoning, "preferred time")
	assert.Contains(t, reasoning, "provider's favored window")
	assert.Contains(t, reasoning, "historical success")
	assert.Contains(t, reasoning, "preferred weekday")
}

func TestScoreLowUrgencyNoSignals(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	slot := models.CandidateSlot{Date: "2024-01-01", Start: 540, End: 570}
	req := models.SchedulingRequest{Urgency: models.UrgencyLow, PreferredTime: -1}

	score, reasoning := scorer.Score(slot, req, models.PreferenceProfile{}, models.ProviderPattern{})

	assert.InDelta(t, 0.515, score, 1e-9)
	assert.Equal(t, "available, low optimization", reasoning)
}

func TestScoreBounds(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	profiles := []models.PreferenceProfile{
		{},
		{PreferredTimes: []int{540}, PreferredDays: []time.Weekday{time.Monday}},
	}
	patterns := []models.ProviderPattern{
		{},
		{FavoredWindows: []models.TimeWindow{{Start: 540, End: 600}}, SuccessRate: 0.9},
	}
	for _, profile := range profiles {
		for _, pattern := range patterns {
			for urgency := models.UrgencyLow; urgency <= models.UrgencyUrgent; urgency++ {
				score, _ := scorer.Score(
					models.CandidateSlot{Date: "2024-01-01", Start: 540, End: 570},
					models.SchedulingRequest{Urgency: urgency, PreferredTime: -1},
					profile, pattern)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}

func TestRankOrdersByConfidenceThenTime(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	req := models.SchedulingRequest{Urgency: models.UrgencyLow, PreferredTime: -1}
	profile := models.PreferenceProfile{PreferredTimes: []int{600}}

	candidates := []models.CandidateSlot{
		{Date: "2024-01-02", Start: 540, End: 570},
		{Date: "2024-01-01", Start: 600, End: 630},
		{Date: "2024-01-01", Start: 540, End: 570},
	}

	ranked := scorer.Rank(candidates, req, profile, models.ProviderPattern{})
	require.Len(t, ranked, 3)

	// The preferred-time slot scores highest.
	assert.Equal(t, 600, ranked[0].Start)
	// Equal scores order by earliest date then start.
	assert.Equal(t, "2024-01-01", ranked[1].Date)
	assert.Equal(t, 540, ranked[1].Start)
	assert.Equal(t, "2024-01-02", ranked[2].Date)
}

func TestRankDropsBelowConfidenceFloor(t *testing.T) {
	cfg := DefaultScorerConfig()
	cfg.Base = 0.2
	scorer := NewConfidenceScorer(cfg)
	req := models.SchedulingRequest{Urgency: models.UrgencyLow, PreferredTime: -1}

	candidates := []models.CandidateSlot{
		{Date: "2024-01-01", Start: 540, End: 570},
		{Date: "2024-01-01", Start: 600, End: 630},
	}
	profile := models.PreferenceProfile{PreferredTimes: []int{600}}

	ranked := scorer.Rank(candidates, req, profile, models.ProviderPattern{})

	// 0.2 + 0.015 = 0.215 falls below the 0.3 floor; the preferred-time slot
	// at 0.515 survives.
	require.Len(t, ranked, 1)
	assert.Equal(t, 600, ranked[0].Start)
}

func TestRankAttachesConfidenceAndReasoning(t *testing.T) {
	scorer := NewConfidenceScorer(DefaultScorerConfig())
	req := models.SchedulingRequest{Urgency: models.UrgencyMedium, PreferredTime: -1}

	ranked := scorer.Rank(
		[]models.CandidateSlot{{Date: "2024-01-01", Start: 540, End: 570}},
		req, models.PreferenceProfile{}, models.ProviderPattern{})

	require.Len(t, ranked, 1)
	assert.Greater(t, ranked[0].Confidence, 0.0)
	assert.NotEmpty(t, ranked[0].Reasoning)
}
