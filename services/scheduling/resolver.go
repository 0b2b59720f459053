package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	bookingRepo "carebook/database/repository/booking"
	"carebook/models"
)

const defaultSearchRadius = 2

// ConflictResolver validates ranked candidates against existing active
// bookings and owns the atomic commit boundary. Commit serializes per
// (provider, date, time) through a keyed lock; the repository's transactional
// insert backs the same invariant across processes.
type ConflictResolver struct {
	Bookings bookingRepo.BookingRepository
	Retry    RetryConfig
	// Radius bounds the adjacent-slot search during conflict repair, in
	// generator steps on the same date.
	Radius int

	mu        sync.Mutex
	slotLocks map[string]*slotLock
}

// slotLock is reference-counted so the lock table stays bounded: entries
// exist only while a commit for that slot is in flight.
type slotLock struct {
	mu   sync.Mutex
	refs int
}

func NewConflictResolver(bookings bookingRepo.BookingRepository, radius int) *ConflictResolver {
	if radius <= 0 {
		radius = defaultSearchRadius
	}
	return &ConflictResolver{
		Bookings:  bookings,
		Retry:     DefaultRetryConfig(),
		Radius:    radius,
		slotLocks: make(map[string]*slotLock),
	}
}

// Resolve walks the ranked candidates in order. A conflict-free candidate is
// accepted as-is; a conflicting one is repaired by substituting the nearest
// unoccupied generated slot on the same date within the search radius, or
// dropped. The resolver never fabricates a slot outside the generated set.
func (r *ConflictResolver) Resolve(
	ctx context.Context,
	providerID string,
	ranked []models.CandidateSlot,
	generated []models.CandidateSlot,
) ([]models.CandidateSlot, error) {
	if len(ranked) == 0 {
		return nil, nil
	}

	occupied, err := r.occupiedSlots(ctx, providerID, ranked)
	if err != nil {
		return nil, err
	}
	steps := stepsByDate(generated)

	var resolved []models.CandidateSlot
	for _, candidate := range ranked {
		key := slotKey(candidate.Date, candidate.Start)
		if !occupied[key] {
			occupied[key] = true
			resolved = append(resolved, candidate)
			continue
		}

		if repaired, ok := r.nearestFree(candidate, steps[candidate.Date], occupied); ok {
			repaired.Confidence = candidate.Confidence
			repaired.Reasoning = candidate.Reasoning + "; adjusted for conflict"
			occupied[slotKey(repaired.Date, repaired.Start)] = true
			resolved = append(resolved, repaired)
		}
		// Not repairable within the radius: drop the candidate entirely.
	}
	return resolved, nil
}

// CommitBooking is the atomic commit boundary: read-check-then-write under a
// slot-level lock keyed by (provider, date, time). Losing the race yields a
// SlotConflict error; callers re-invoke Optimize for a fresh ranked list.
func (r *ConflictResolver) CommitBooking(ctx context.Context, slot models.CandidateSlot, userID, providerID string) (*models.Booking, error) {
	if userID == "" || providerID == "" {
		return nil, NewInvalidRequestError("requester and provider ids are required")
	}
	if slot.Date == "" || slot.End <= slot.Start {
		return nil, NewInvalidRequestError("malformed slot")
	}

	key := providerID + "|" + slotKey(slot.Date, slot.Start)
	lock := r.acquireSlotLock(key)
	defer r.releaseSlotLock(key, lock)

	existing, err := CallAdapter(ctx, r.Retry, "booking store", func(ctx context.Context) (*models.Booking, error) {
		return r.Bookings.FindActiveAt(ctx, providerID, slot.Date, slot.Start)
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewSlotConflictError(fmt.Sprintf("slot %s %s already booked", slot.Date, minutesToClock(slot.Start)))
	}

	booking := &models.Booking{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		UserID:     userID,
		Date:       slot.Date,
		Start:      slot.Start,
		End:        slot.End,
		Status:     models.BookingScheduled,
		Confidence: slot.Confidence,
		Reasoning:  slot.Reasoning,
		CreatedAt:  time.Now(),
	}
	if err := r.Bookings.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, NewSlotConflictError(fmt.Sprintf("slot %s %s was taken concurrently", slot.Date, minutesToClock(slot.Start)))
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return booking, nil
}

func (r *ConflictResolver) occupiedSlots(ctx context.Context, providerID string, ranked []models.CandidateSlot) (map[string]bool, error) {
	fromDate, toDate := ranked[0].Date, ranked[0].Date
	for _, c := range ranked[1:] {
		if c.Date < fromDate {
			fromDate = c.Date
		}
		if c.Date > toDate {
			toDate = c.Date
		}
	}

	bookings, err := CallAdapter(ctx, r.Retry, "booking store", func(ctx context.Context) ([]models.Booking, error) {
		return r.Bookings.GetActiveBookings(ctx, providerID, fromDate, toDate)
	})
	if err != nil {
		return nil, err
	}

	occupied := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		occupied[slotKey(b.Date, b.Start)] = true
	}
	return occupied, nil
}

// nearestFree searches alternating next/previous generated steps on the same
// date, nearest first, up to the configured radius.
func (r *ConflictResolver) nearestFree(candidate models.CandidateSlot, daySteps []models.CandidateSlot, occupied map[string]bool) (models.CandidateSlot, bool) {
	pos := -1
	for i, s := range daySteps {
		if s.Start == candidate.Start {
			pos = i
			break
		}
	}
	if pos < 0 {
		return models.CandidateSlot{}, false
	}

	for offset := 1; offset <= r.Radius; offset++ {
		for _, idx := range []int{pos + offset, pos - offset} {
			if idx < 0 || idx >= len(daySteps) {
				continue
			}
			step := daySteps[idx]
			if !occupied[slotKey(step.Date, step.Start)] {
				return step, true
			}
		}
	}
	return models.CandidateSlot{}, false
}

func (r *ConflictResolver) acquireSlotLock(key string) *slotLock {
	r.mu.Lock()
	lock, ok := r.slotLocks[key]
	if !ok {
		lock = &slotLock{}
		r.slotLocks[key] = lock
	}
	lock.refs++
	r.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (r *ConflictResolver) releaseSlotLock(key string, lock *slotLock) {
	lock.mu.Unlock()

	r.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(r.slotLocks, key)
	}
	r.mu.Unlock()
}

func stepsByDate(generated []models.CandidateSlot) map[string][]models.CandidateSlot {
	steps := make(map[string][]models.CandidateSlot)
	for _, s := range generated {
		steps[s.Date] = append(steps[s.Date], s)
	}
	for date := range steps {
		day := steps[date]
		sort.Slice(day, func(i, j int) bool { return day[i].Start < day[j].Start })
	}
	return steps
}

func slotKey(date string, start int) string {
	return fmt.Sprintf("%s|%d", date, start)
}

func minutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
