package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebook/models"
)

// weekdayTemplate is Mon-Fri 09:00-17:00 with a 12:00-13:00 break.
func weekdayTemplate() models.WorkingHoursTemplate {
	tmpl := models.WorkingHoursTemplate{ProviderID: "prov-1"}
	for wd := time.Monday; wd <= time.Friday; wd++ {
		tmpl.Days[wd] = models.DayHours{
			Working:    true,
			Start:      9 * 60,
			End:        17 * 60,
			BreakStart: 12 * 60,
			BreakEnd:   13 * 60,
		}
	}
	return tmpl
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestGenerateSingleMonday(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	slots := gen.Generate(weekdayTemplate(), nil, monday, monday, 30)

	// 16 half-hour steps in 09:00-17:00 minus the two steps inside the break.
	require.Len(t, slots, 14)
	breakWindow := models.TimeWindow{Start: 12 * 60, End: 13 * 60}
	for _, slot := range slots {
		assert.Equal(t, "2024-01-01", slot.Date)
		assert.GreaterOrEqual(t, slot.Start, 9*60)
		assert.LessOrEqual(t, slot.End, 17*60)
		assert.False(t, breakWindow.Overlaps(models.TimeWindow{Start: slot.Start, End: slot.End}),
			"slot %d-%d overlaps the break", slot.Start, slot.End)
	}
}

func TestGenerateSkipsNonWorkingDays(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	// Saturday 2024-01-06 and Sunday 2024-01-07 are off.
	slots := gen.Generate(weekdayTemplate(), nil, monday, monday.AddDate(0, 0, 6), 30)
	for _, slot := range slots {
		day, err := time.Parse("2006-01-02", slot.Date)
		require.NoError(t, err)
		assert.NotEqual(t, time.Saturday, day.Weekday())
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
}

func TestGenerateDropsPastSlotsToday(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	// 14:00 on the target Monday: morning slots are gone.
	gen.Now = fixedClock(monday.Add(14 * time.Hour))

	slots := gen.Generate(weekdayTemplate(), nil, monday, monday, 30)
	require.NotEmpty(t, slots)
	for _, slot := range slots {
		assert.GreaterOrEqual(t, slot.Start, 14*60)
	}
	// A slot starting exactly now has not started yet and stays bookable.
	assert.Equal(t, 14*60, slots[0].Start)
}

func TestGenerateDurationLongerThanWindow(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	slots := gen.Generate(weekdayTemplate(), nil, monday, monday, 9*60)
	assert.Empty(t, slots)
}

func TestGenerateZeroLengthWindow(t *testing.T) {
	tmpl := models.WorkingHoursTemplate{ProviderID: "prov-1"}
	tmpl.Days[time.Monday] = models.DayHours{Working: true, Start: 540, End: 540}

	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	assert.Empty(t, gen.Generate(tmpl, nil, monday, monday, 30))
}

func TestGenerateUnavailableOverrideYieldsNoSlots(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	overrides := []models.AvailabilityOverride{{
		ProviderID: "prov-1",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-01",
		Type:       models.OverrideLeave,
		Available:  false,
	}}

	assert.Empty(t, gen.Generate(weekdayTemplate(), overrides, monday, monday, 30))
}

func TestGenerateExtraCapacityOverrideOpensDay(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	// Saturday 2024-01-06 is normally off; the override opens 10:00-12:00.
	saturday := monday.AddDate(0, 0, 5)
	overrides := []models.AvailabilityOverride{{
		ProviderID: "prov-1",
		StartDate:  "2024-01-06",
		EndDate:    "2024-01-06",
		Type:       models.OverrideExtraCapacity,
		Available:  true,
		Start:      10 * 60,
		End:        12 * 60,
	}}

	slots := gen.Generate(weekdayTemplate(), overrides, saturday, saturday, 30)
	require.Len(t, slots, 4)
	assert.Equal(t, 10*60, slots[0].Start)
	assert.Equal(t, 12*60, slots[3].End)
}

func TestGenerateOverlappingOverridesMostRestrictiveWins(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	overrides := []models.AvailabilityOverride{
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideExtraCapacity, Available: true, Start: 9 * 60, End: 17 * 60},
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideEmergencyBlock, Available: false},
	}

	assert.Empty(t, gen.Generate(weekdayTemplate(), overrides, monday, monday, 30))

	// Two granting overrides: the narrower window wins.
	granting := []models.AvailabilityOverride{
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideExtraCapacity, Available: true, Start: 9 * 60, End: 17 * 60},
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideExtraCapacity, Available: true, Start: 10 * 60, End: 11 * 60},
	}
	slots := gen.Generate(weekdayTemplate(), granting, monday, monday, 30)
	require.Len(t, slots, 2)
	assert.Equal(t, 10*60, slots[0].Start)
}

func TestGenerateMostPermissivePolicy(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostPermissive)
	gen.Now = fixedClock(monday)

	overrides := []models.AvailabilityOverride{
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideEmergencyBlock, Available: false},
		{StartDate: "2024-01-01", EndDate: "2024-01-01", Type: models.OverrideExtraCapacity, Available: true, Start: 10 * 60, End: 12 * 60},
	}

	slots := gen.Generate(weekdayTemplate(), overrides, monday, monday, 30)
	require.Len(t, slots, 4)
}

func TestGenerateDeterministic(t *testing.T) {
	gen := NewSlotGenerator(OverrideMostRestrictive)
	gen.Now = fixedClock(monday)

	first := gen.Generate(weekdayTemplate(), nil, monday, monday.AddDate(0, 0, 13), 30)
	second := gen.Generate(weekdayTemplate(), nil, monday, monday.AddDate(0, 0, 13), 30)
	assert.Equal(t, first, second)
}
