package bookingRepo

import (
	"context"
	"errors"

	"carebook/models"
)

// ErrSlotTaken is returned by CreateBooking when an active booking already
// occupies the same (provider, date, time) slot.
var ErrSlotTaken = errors.New("slot already has an active booking")

// ErrNotFound is returned when a booking id does not exist.
var ErrNotFound = errors.New("booking not found")

// BookingRepository owns booking records and the atomic commit boundary.
// Creation must be atomic with respect to the at-most-one-active-booking
// invariant for any (provider, date, time) slot.
type BookingRepository interface {
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	// GetActiveBookings returns pending/scheduled bookings for a provider over
	// an inclusive date range.
	GetActiveBookings(ctx context.Context, providerID, fromDate, toDate string) ([]models.Booking, error)
	// FindActiveAt returns the active booking at the exact slot, or nil.
	FindActiveAt(ctx context.Context, providerID, date string, start int) (*models.Booking, error)
	// CreateBooking persists the booking, failing with ErrSlotTaken when the
	// slot was claimed between read and write.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	CancelBooking(ctx context.Context, bookingID string) error
}
