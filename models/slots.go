package models

// CandidateSlot is a discrete, duration-sized window produced by the slot
// generator for a single request. Candidates are ephemeral: only the slot the
// requester eventually commits becomes a booking record.
type CandidateSlot struct {
	Date       string  `json:"date"`  // "2006-01-02"
	Start      int     `json:"start"` // minutes from midnight
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"` // [0,1], zero until scored
	Reasoning  string  `json:"reasoning,omitempty"`
}

// SameSlot reports whether two candidates name the same (date, time) pair.
func (s CandidateSlot) SameSlot(other CandidateSlot) bool {
	return s.Date == other.Date && s.Start == other.Start
}

// Before orders candidates by date, then start time.
func (s CandidateSlot) Before(other CandidateSlot) bool {
	if s.Date != other.Date {
		return s.Date < other.Date
	}
	return s.Start < other.Start
}
