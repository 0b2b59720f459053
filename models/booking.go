package models

import "time"

// BookingStatus is the lifecycle state of a booking record.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingScheduled BookingStatus = "scheduled"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Active reports whether the booking still occupies its slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingScheduled
}

// Booking represents a committed booking record. The confidence score and
// reasoning attached at creation time are kept for audit.
type Booking struct {
	ID         string        `bson:"id" json:"id"`
	ProviderID string        `bson:"providerId" json:"providerId"`
	UserID     string        `bson:"userId" json:"userId"`
	Date       string        `bson:"date" json:"date"` // "2006-01-02"
	Start      int           `bson:"start" json:"start"`
	End        int           `bson:"end" json:"end"`
	Category   string        `bson:"category,omitempty" json:"category,omitempty"`
	Status     BookingStatus `bson:"status" json:"status"`
	Confidence float64       `bson:"confidence" json:"confidence"`
	Reasoning  string        `bson:"reasoning,omitempty" json:"reasoning,omitempty"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}

// StartTime resolves the booking's absolute start instant in the given location.
func (b Booking) StartTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(b.Start) * time.Minute), nil
}
