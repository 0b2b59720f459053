package models

import "time"

// DayHours describes one weekday of a provider's working-hours template.
// All times are minutes from midnight (e.g., 540 for 9:00 AM).
type DayHours struct {
	Working         bool `bson:"working" json:"working"`
	Start           int  `bson:"start" json:"start"`
	End             int  `bson:"end" json:"end"`
	BreakStart      int  `bson:"breakStart,omitempty" json:"breakStart,omitempty"`
	BreakEnd        int  `bson:"breakEnd,omitempty" json:"breakEnd,omitempty"`
	MaxAppointments int  `bson:"maxAppointments,omitempty" json:"maxAppointments,omitempty"`
}

// HasBreak reports whether the day carries a non-empty break window.
func (d DayHours) HasBreak() bool {
	return d.BreakEnd > d.BreakStart
}

// WorkingHoursTemplate is a provider's weekly availability, indexed by
// time.Weekday (Sunday = 0).
type WorkingHoursTemplate struct {
	ProviderID string      `bson:"providerId" json:"providerId"`
	Days       [7]DayHours `bson:"days" json:"days"`
}

// DayFor returns the template entry for the weekday of the given date.
func (t WorkingHoursTemplate) DayFor(date time.Time) DayHours {
	return t.Days[date.Weekday()]
}

// OverrideType distinguishes why a provider's standard week was overridden.
type OverrideType string

const (
	OverrideLeave          OverrideType = "leave"
	OverrideEmergencyBlock OverrideType = "emergency-block"
	OverrideExtraCapacity  OverrideType = "extra-capacity"
)

// AvailabilityOverride is a date-ranged exception to the weekly template.
// It takes precedence over the template for every date it covers. For
// availability-granting overrides, Start/End (when non-zero) replace the
// template's working window.
type AvailabilityOverride struct {
	ProviderID string       `bson:"providerId" json:"providerId"`
	StartDate  string       `bson:"startDate" json:"startDate"` // "2006-01-02"
	EndDate    string       `bson:"endDate" json:"endDate"`     // inclusive
	Type       OverrideType `bson:"type" json:"type"`
	Available  bool         `bson:"available" json:"available"`
	Start      int          `bson:"start,omitempty" json:"start,omitempty"`
	End        int          `bson:"end,omitempty" json:"end,omitempty"`
	Reason     string       `bson:"reason,omitempty" json:"reason,omitempty"`
}

// Covers reports whether the override applies to the given ISO date.
// ISO dates order lexicographically, so plain string comparison is enough.
func (o AvailabilityOverride) Covers(date string) bool {
	return o.StartDate <= date && date <= o.EndDate
}
