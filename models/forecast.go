package models

// DemandForecast projects expected demand for one (provider, date) pair.
type DemandForecast struct {
	ProviderID      string   `json:"providerId"`
	Date            string   `json:"date"`
	PredictedDemand int      `json:"predictedDemand"`
	Confidence      float64  `json:"confidence"` // [0,1]
	Factors         []string `json:"factors"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// NoShowPrediction estimates the cancellation risk of a booked appointment.
type NoShowPrediction struct {
	BookingID       string   `json:"bookingId"`
	Probability     float64  `json:"probability"` // [0,1]
	Factors         []string `json:"factors,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// AISuggestion is a human-readable note attached to an optimization result.
type AISuggestion struct {
	Type    string `json:"type"` // e.g. "preference_learning", "optimal_pick"
	Message string `json:"message"`
}

// OptimizedSchedule is the ranked outcome of one scheduling request.
type OptimizedSchedule struct {
	RequestID    string          `json:"requestId"`
	Primary      CandidateSlot   `json:"primary"`
	Alternatives []CandidateSlot `json:"alternatives,omitempty"`
	Suggestions  []AISuggestion  `json:"suggestions,omitempty"`
}
