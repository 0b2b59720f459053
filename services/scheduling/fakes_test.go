package scheduling

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingRepo "carebook/database/repository/booking"
	"carebook/models"
)

// singleAttempt is an explicit no-retry config so failure tests stay fast.
func singleAttempt() RetryConfig {
	return RetryConfig{Timeout: time.Second}
}

// fakeCalendarRepo serves a fixed template and override set.
type fakeCalendarRepo struct {
	tmpl      models.WorkingHoursTemplate
	overrides []models.AvailabilityOverride
	err       error
}

func (f *fakeCalendarRepo) GetWorkingHours(_ context.Context, _, _, _ string) (models.WorkingHoursTemplate, []models.AvailabilityOverride, error) {
	if f.err != nil {
		return models.WorkingHoursTemplate{}, nil, f.err
	}
	return f.tmpl, f.overrides, nil
}

// fakeHistoryRepo serves fixed history and aggregates, counting calls.
// failures > 0 makes that many leading calls fail, for flaky-adapter tests.
type fakeHistoryRepo struct {
	mu         sync.Mutex
	history    []models.HistoricalAppointment
	aggregates []models.DailyAggregate
	err        error
	failures   int
	calls      int
}

func (f *fakeHistoryRepo) GetAppointmentHistory(_ context.Context, _ string, limit int) ([]models.HistoricalAppointment, error) {
	if err := f.record(); err != nil {
		return nil, err
	}
	if limit > 0 && len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *fakeHistoryRepo) GetDailyAggregates(_ context.Context, _, _, _ string) ([]models.DailyAggregate, error) {
	if err := f.record(); err != nil {
		return nil, err
	}
	return f.aggregates, nil
}

func (f *fakeHistoryRepo) record() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errTransient
	}
	return f.err
}

var errTransient = errors.New("transient outage")

func (f *fakeHistoryRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memBookingRepo is an in-memory BookingRepository whose CreateBooking is
// atomic under a mutex, mirroring the transactional guarantee of the real
// store.
type memBookingRepo struct {
	mu       sync.Mutex
	bookings []models.Booking
}

func (m *memBookingRepo) GetBooking(_ context.Context, bookingID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == bookingID {
			b := m.bookings[i]
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (m *memBookingRepo) GetActiveBookings(_ context.Context, providerID, fromDate, toDate string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.ProviderID == providerID && b.Status.Active() && fromDate <= b.Date && b.Date <= toDate {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookingRepo) FindActiveAt(_ context.Context, providerID, date string, start int) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findActiveLocked(providerID, date, start), nil
}

func (m *memBookingRepo) CreateBooking(_ context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.findActiveLocked(booking.ProviderID, booking.Date, booking.Start); existing != nil {
		return bookingRepo.ErrSlotTaken
	}
	m.bookings = append(m.bookings, *booking)
	return nil
}

func (m *memBookingRepo) CancelBooking(_ context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == bookingID {
			m.bookings[i].Status = models.BookingCancelled
			return nil
		}
	}
	return bookingRepo.ErrNotFound
}

func (m *memBookingRepo) findActiveLocked(providerID, date string, start int) *models.Booking {
	for i := range m.bookings {
		b := &m.bookings[i]
		if b.ProviderID == providerID && b.Date == date && b.Start == start && b.Status.Active() {
			out := *b
			return &out
		}
	}
	return nil
}

func (m *memBookingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}
