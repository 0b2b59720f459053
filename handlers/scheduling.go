package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carebook/models"
	"carebook/services/scheduling"
	"carebook/utils"
)

// SchedulingHandler exposes the scheduling engine to the booking-creation
// collaborator.
type SchedulingHandler struct {
	Optimizer scheduling.ScheduleOptimizer
	Logger    *zap.Logger
}

func NewSchedulingHandler(optimizer scheduling.ScheduleOptimizer, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{Optimizer: optimizer, Logger: logger}
}

type optimizeRequest struct {
	UserID            string              `json:"userId" binding:"required"`
	ProviderID        string              `json:"providerId" binding:"required"`
	PreferredDate     string              `json:"preferredDate"`
	PreferredTime     *int                `json:"preferredTime"`
	Urgency           string              `json:"urgency"`
	Category          string              `json:"category"`
	Duration          int                 `json:"duration"`
	MaxWaitDays       int                 `json:"maxWaitDays"`
	PreferredWeekdays []int               `json:"preferredWeekdays"`
	ExcludedWindows   []models.TimeWindow `json:"excludedWindows"`
}

// OptimizeSchedule ranks candidate slots for a scheduling request.
func (h *SchedulingHandler) OptimizeSchedule(c *gin.Context) {
	var input optimizeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	urgency, err := models.ParseUrgency(input.Urgency)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid urgency", err.Error())
		return
	}

	preferredTime := -1
	if input.PreferredTime != nil {
		preferredTime = *input.PreferredTime
	}
	var weekdays []time.Weekday
	for _, wd := range input.PreferredWeekdays {
		if wd < 0 || wd > 6 {
			utils.JSONError(c, http.StatusBadRequest, "invalid preferred weekday",
				fmt.Sprintf("weekdays are 0 (Sunday) through 6 (Saturday), got %d", wd))
			return
		}
		weekdays = append(weekdays, time.Weekday(wd))
	}

	req := models.SchedulingRequest{
		UserID:        input.UserID,
		ProviderID:    input.ProviderID,
		PreferredDate: input.PreferredDate,
		PreferredTime: preferredTime,
		Urgency:       urgency,
		Category:      input.Category,
		Duration:      input.Duration,
		Constraints: models.RequestConstraints{
			MaxWaitDays:       input.MaxWaitDays,
			PreferredWeekdays: weekdays,
			ExcludedWindows:   input.ExcludedWindows,
		},
	}

	schedule, err := h.Optimizer.Optimize(c.Request.Context(), req)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

type commitRequest struct {
	UserID     string               `json:"userId" binding:"required"`
	ProviderID string               `json:"providerId" binding:"required"`
	Slot       models.CandidateSlot `json:"slot" binding:"required"`
}

// CommitBooking atomically claims a slot from a previous optimization result.
func (h *SchedulingHandler) CommitBooking(c *gin.Context) {
	var input commitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	booking, err := h.Optimizer.CommitBooking(c.Request.Context(), input.Slot, input.UserID, input.ProviderID)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// PreviewSlots returns the raw generated candidates for a provider, unscored.
func (h *SchedulingHandler) PreviewSlots(c *gin.Context) {
	providerID := c.Param("providerID")
	from, err := parseDateQuery(c, "from", time.Now())
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid from date", err.Error())
		return
	}
	to, err := parseDateQuery(c, "to", from.AddDate(0, 0, 7))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid to date", err.Error())
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		if duration, err = parsePositiveInt(raw); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid duration", err.Error())
			return
		}
	}

	slots, err := h.Optimizer.PreviewSlots(c.Request.Context(), providerID, from, to, duration)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "slots": slots})
}

// writeSchedulingError maps the engine's error taxonomy onto HTTP statuses.
func (h *SchedulingHandler) writeSchedulingError(c *gin.Context, err error) {
	switch {
	case scheduling.IsInvalidRequest(err):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case scheduling.IsNoSlotsAvailable(err):
		utils.JSONError(c, http.StatusNotFound, "no slots available", err.Error())
	case scheduling.IsSlotConflict(err):
		// Routine outcome: the caller re-invokes optimize for a fresh list.
		utils.JSONError(c, http.StatusConflict, "slot conflict", err.Error())
	case scheduling.IsAdapterUnavailable(err):
		utils.JSONError(c, http.StatusServiceUnavailable, "upstream unavailable", err.Error())
	default:
		h.Logger.Error("scheduling request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "scheduling failed", "unexpected error")
	}
}
