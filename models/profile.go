package models

import "time"

// HistoricalAppointment is a read-only snapshot of a past appointment as
// exposed by the persistence collaborator.
type HistoricalAppointment struct {
	ID         string `bson:"id" json:"id"`
	UserID     string `bson:"userId" json:"userId"`
	ProviderID string `bson:"providerId" json:"providerId"`
	Date       string `bson:"date" json:"date"` // "2006-01-02"
	Start      int    `bson:"start" json:"start"`
	Duration   int    `bson:"duration" json:"duration"`
	Category   string `bson:"category,omitempty" json:"category,omitempty"`
	Status     string `bson:"status" json:"status"` // completed / cancelled / ...
}

// DailyAggregate is one day of per-provider analytics from the reporting
// collaborator.
type DailyAggregate struct {
	ProviderID string `bson:"providerId" json:"providerId"`
	Date       string `bson:"date" json:"date"`
	Booked     int    `bson:"booked" json:"booked"`
	Capacity   int    `bson:"capacity" json:"capacity"`
	Completed  int    `bson:"completed" json:"completed"`
	Cancelled  int    `bson:"cancelled" json:"cancelled"`
}

// PreferenceProfile is the mined preference signal for one requester.
// Derived and cached; invalidated when new history arrives.
type PreferenceProfile struct {
	UserID             string         `json:"userId"`
	PreferredTimes     []int          `json:"preferredTimes"` // top start times by frequency
	PreferredDays      []time.Weekday `json:"preferredDays"`
	PreferredProviders []string       `json:"preferredProviders"`
	AvgDuration        int            `json:"avgDuration"`
	NoShowRate         float64        `json:"noShowRate"`
	SampleSize         int            `json:"sampleSize"`
}

// PrefersTime reports whether the given start time is in the preferred set.
func (p PreferenceProfile) PrefersTime(start int) bool {
	for _, t := range p.PreferredTimes {
		if t == start {
			return true
		}
	}
	return false
}

// PrefersDay reports whether the given weekday is in the preferred set.
func (p PreferenceProfile) PrefersDay(day time.Weekday) bool {
	for _, d := range p.PreferredDays {
		if d == day {
			return true
		}
	}
	return false
}

// ProviderPattern is the mined workload signal for one provider.
type ProviderPattern struct {
	ProviderID     string       `json:"providerId"`
	FavoredWindows []TimeWindow `json:"favoredWindows"`
	Utilization    float64      `json:"utilization"` // booked/available over the trailing window
	SuccessRate    float64      `json:"successRate"` // completed/(completed+cancelled)
	SampleSize     int          `json:"sampleSize"`
}

// InFavoredWindow reports whether a slot window overlaps any historically
// favored window.
func (p ProviderPattern) InFavoredWindow(w TimeWindow) bool {
	for _, fw := range p.FavoredWindows {
		if fw.Overlaps(w) {
			return true
		}
	}
	return false
}
