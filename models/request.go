package models

import (
	"fmt"
	"strings"
	"time"
)

// Urgency is the ordinal priority attached to a scheduling request.
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyMedium
	UrgencyHigh
	UrgencyUrgent
)

var urgencyNames = map[Urgency]string{
	UrgencyLow:    "low",
	UrgencyMedium: "medium",
	UrgencyHigh:   "high",
	UrgencyUrgent: "urgent",
}

func (u Urgency) String() string {
	if name, ok := urgencyNames[u]; ok {
		return name
	}
	return "unknown"
}

// Multiplier scales the urgency contribution to a slot's confidence score.
func (u Urgency) Multiplier() float64 {
	switch u {
	case UrgencyUrgent:
		return 0.9
	case UrgencyHigh:
		return 0.6
	case UrgencyMedium:
		return 0.3
	default:
		return 0.1
	}
}

// ParseUrgency maps a wire-level urgency string onto the ordinal type.
func ParseUrgency(s string) (Urgency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "":
		return UrgencyLow, nil
	case "medium":
		return UrgencyMedium, nil
	case "high":
		return UrgencyHigh, nil
	case "urgent":
		return UrgencyUrgent, nil
	}
	return UrgencyLow, fmt.Errorf("unknown urgency %q", s)
}

// TimeWindow is a half-open [Start, End) window in minutes from midnight.
type TimeWindow struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Overlaps reports whether two half-open windows intersect.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start < other.End && other.Start < w.End
}

// RequestConstraints are optional hard bounds the requester placed on the search.
type RequestConstraints struct {
	MaxWaitDays       int            `json:"maxWaitDays,omitempty"`
	PreferredWeekdays []time.Weekday `json:"preferredWeekdays,omitempty"`
	ExcludedWindows   []TimeWindow   `json:"excludedWindows,omitempty"`
}

// SchedulingRequest captures everything the optimizer needs to rank slots for
// one requester/provider pair. Immutable once created.
type SchedulingRequest struct {
	UserID        string             `json:"userId"`
	ProviderID    string             `json:"providerId"`
	PreferredDate string             `json:"preferredDate,omitempty"` // "2006-01-02", optional
	PreferredTime int                `json:"preferredTime"`           // minutes from midnight, -1 when unset
	Urgency       Urgency            `json:"urgency"`
	Category      string             `json:"category,omitempty"`
	Duration      int                `json:"duration"` // minutes, default 30
	Constraints   RequestConstraints `json:"constraints,omitzero"`
}
