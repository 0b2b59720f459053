package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bookingRepo "carebook/database/repository/booking"
	"carebook/services/forecast"
	"carebook/services/scheduling"
	"carebook/utils"
)

// ForecastHandler exposes the demand and no-show read paths to reporting and
// reminder collaborators.
type ForecastHandler struct {
	Forecaster *forecast.DemandForecaster
	NoShow     *forecast.NoShowPredictor
	Logger     *zap.Logger
}

func NewForecastHandler(forecaster *forecast.DemandForecaster, noShow *forecast.NoShowPredictor, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{Forecaster: forecaster, NoShow: noShow, Logger: logger}
}

// DemandForecast projects per-day demand for a provider over a date range.
func (h *ForecastHandler) DemandForecast(c *gin.Context) {
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

	forecasts, err := h.Forecaster.Forecast(c.Request.Context(), providerID, from, to)
	if err != nil {
		switch {
		case scheduling.IsInvalidRequest(err):
			utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
		case scheduling.IsAdapterUnavailable(err):
			utils.JSONError(c, http.StatusServiceUnavailable, "upstream unavailable", err.Error())
		default:
			h.Logger.Error("demand forecast failed",
				zap.String("providerId", providerID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "forecast failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "forecasts": forecasts})
}

// NoShowPrediction estimates the cancellation risk of one booking.
func (h *ForecastHandler) NoShowPrediction(c *gin.Context) {
	bookingID := c.Param("bookingID")

	prediction, err := h.NoShow.PredictNoShow(c.Request.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrNotFound):
			utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
		case scheduling.IsAdapterUnavailable(err):
			utils.JSONError(c, http.StatusServiceUnavailable, "upstream unavailable", err.Error())
		default:
			h.Logger.Error("no-show prediction failed",
				zap.String("bookingId", bookingID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "prediction failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, prediction)
}

// parseDateQuery reads a YYYY-MM-DD query parameter with a fallback.
func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parsePositiveInt(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", v)
	}
	return v, nil
}
