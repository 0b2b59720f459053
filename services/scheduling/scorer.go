package scheduling

import (
	"sort"
	"strings"
	"time"

	"carebook/models"
)

// ScorerConfig carries the weighted-sum model parameters. The weights are a
// tuning surface, not validated constants; they must sum to at most one on
// top of Base.
type ScorerConfig struct {
	Base                float64
	PreferredTimeWeight float64
	FavoredWindowWeight float64
	SuccessRateWeight   float64
	UrgencyWeight       float64
	PreferredDayWeight  float64
	MinConfidence       float64
}

func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		Base:                0.5,
		PreferredTimeWeight: 0.30,
		FavoredWindowWeight: 0.25,
		SuccessRateWeight:   0.20,
		UrgencyWeight:       0.15,
		PreferredDayWeight:  0.10,
		MinConfidence:       0.3,
	}
}

// ConfidenceScorer combines requester preferences, provider patterns and
// request urgency into a single [0,1] confidence per candidate slot, with a
// human-readable reasoning label.
type ConfidenceScorer struct {
	Config ScorerConfig
}

func NewConfidenceScorer(cfg ScorerConfig) *ConfidenceScorer {
	return &ConfidenceScorer{Config: cfg}
}

// Score computes the confidence and the reasoning behind it for one slot.
func (s *ConfidenceScorer) Score(
	slot models.CandidateSlot,
	req models.SchedulingRequest,
	profile models.PreferenceProfile,
	pattern models.ProviderPattern,
) (float64, string) {
	cfg := s.Config
	score := cfg.Base
	var signals []string

	if profile.PrefersTime(slot.Start) {
		score += cfg.PreferredTimeWeight
		signals = append(signals, "preferred time")
	}
	if pattern.InFavoredWindow(models.TimeWindow{Start: slot.Start, End: slot.End}) {
		score += cfg.FavoredWindowWeight
		signals = append(signals, "provider's favored window")
	}
	if pattern.SuccessRate > 0 {
		score += cfg.SuccessRateWeight * pattern.SuccessRate
		signals = append(signals, "historical success")
	}
	score += cfg.UrgencyWeight * req.Urgency.Multiplier()
	if day, err := time.Parse("2006-01-02", slot.Date); err == nil && profile.PrefersDay(day.Weekday()) {
		score += cfg.PreferredDayWeight
		signals = append(signals, "preferred weekday")
	}

	score = clamp01(score)
	return score, reasoningLabel(score, signals)
}

// Rank scores every candidate, drops those below the confidence floor, and
// sorts descending by confidence with ties broken by earliest (date, time).
func (s *ConfidenceScorer) Rank(
	candidates []models.CandidateSlot,
	req models.SchedulingRequest,
	profile models.PreferenceProfile,
	pattern models.ProviderPattern,
) []models.CandidateSlot {
	ranked := make([]models.CandidateSlot, 0, len(candidates))
	for _, slot := range candidates {
		confidence, reasoning := s.Score(slot, req, profile, pattern)
		if confidence < s.Config.MinConfidence {
			continue
		}
		slot.Confidence = confidence
		slot.Reasoning = reasoning
		ranked = append(ranked, slot)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Before(ranked[j])
	})
	return ranked
}

func reasoningLabel(score float64, signals []string) string {
	var label string
	switch {
	case score > 0.8:
		label = "excellent match"
	case score > 0.6:
		label = "good match"
	default:
		label = "available, low optimization"
	}
	if len(signals) > 0 {
		return label + " (" + strings.Join(signals, ", ") + ")"
	}
	return label
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
