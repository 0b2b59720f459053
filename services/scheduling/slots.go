package scheduling

import (
	"time"

	"carebook/models"
)

// OverridePolicy decides how overlapping availability overrides on the same
// date are reconciled.
type OverridePolicy string

const (
	// OverrideMostRestrictive: any blocking override wins, and among
	// availability-granting overrides the narrowest window wins. Default.
	OverrideMostRestrictive OverridePolicy = "most-restrictive"
	// OverrideMostPermissive: any availability-granting override wins, with
	// the widest window.
	OverrideMostPermissive OverridePolicy = "most-permissive"
)

// SlotGenerator partitions a provider's effective working windows into
// discrete duration-sized candidate slots. Output is deterministic for
// identical inputs, ordered by date then start time.
type SlotGenerator struct {
	Policy OverridePolicy
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewSlotGenerator(policy OverridePolicy) *SlotGenerator {
	if policy == "" {
		policy = OverrideMostRestrictive
	}
	return &SlotGenerator{Policy: policy, Now: time.Now}
}

// Generate enumerates candidate slots for every date in [from, to].
// Slots intersecting a break window, falling outside working hours, or lying
// in the past relative to "now" are dropped.
func (g *SlotGenerator) Generate(
	tmpl models.WorkingHoursTemplate,
	overrides []models.AvailabilityOverride,
	from, to time.Time,
	duration int,
) []models.CandidateSlot {
	if duration <= 0 {
		return nil
	}
	now := g.now()
	today := now.Format("2006-01-02")
	nowMinutes := now.Hour()*60 + now.Minute()

	var slots []models.CandidateSlot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		if dateStr < today {
			continue
		}

		day := g.effectiveDay(tmpl.DayFor(d), overrides, dateStr)
		if !day.Working {
			continue
		}

		for start := day.Start; start+duration <= day.End; start += duration {
			end := start + duration
			if day.HasBreak() && start < day.BreakEnd && end > day.BreakStart {
				continue
			}
			// For today, drop slots that have already started. A slot
			// starting at the current minute is still bookable.
			if dateStr == today && start < nowMinutes {
				continue
			}
			slots = append(slots, models.CandidateSlot{
				Date:  dateStr,
				Start: start,
				End:   end,
			})
		}
	}
	return slots
}

// effectiveDay resolves the day definition for one date: overrides win over
// the weekly template, reconciled by the configured policy.
func (g *SlotGenerator) effectiveDay(base models.DayHours, overrides []models.AvailabilityOverride, date string) models.DayHours {
	var granting, blocking []models.AvailabilityOverride
	for _, ov := range overrides {
		if !ov.Covers(date) {
			continue
		}
		if ov.Available {
			granting = append(granting, ov)
		} else {
			blocking = append(blocking, ov)
		}
	}
	if len(granting) == 0 && len(blocking) == 0 {
		return base
	}

	switch g.Policy {
	case OverrideMostPermissive:
		if len(granting) > 0 {
			return applyGranting(base, widest(granting))
		}
		return models.DayHours{Working: false}
	default: // most-restrictive
		if len(blocking) > 0 {
			return models.DayHours{Working: false}
		}
		return applyGranting(base, narrowest(granting))
	}
}

// applyGranting opens the day using the override's window when it carries
// one, falling back to the template window otherwise.
func applyGranting(base models.DayHours, ov models.AvailabilityOverride) models.DayHours {
	day := base
	if ov.End > ov.Start {
		day = models.DayHours{Working: true, Start: ov.Start, End: ov.End}
	} else if !base.Working {
		// Granting override without a window cannot open a non-working day.
		return models.DayHours{Working: false}
	}
	day.Working = true
	return day
}

func width(ov models.AvailabilityOverride) int {
	if ov.End > ov.Start {
		return ov.End - ov.Start
	}
	// No explicit window: treat as spanning the whole day for comparison.
	return 24 * 60
}

func narrowest(ovs []models.AvailabilityOverride) models.AvailabilityOverride {
	best := ovs[0]
	for _, ov := range ovs[1:] {
		if width(ov) < width(best) {
			best = ov
		}
	}
	return best
}

func widest(ovs []models.AvailabilityOverride) models.AvailabilityOverride {
	best := ovs[0]
	for _, ov := range ovs[1:] {
		if width(ov) > width(best) {
			best = ov
		}
	}
	return best
}

func (g *SlotGenerator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}
