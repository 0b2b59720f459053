package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	bookingRepo "carebook/database/repository/booking"
	historyRepo "carebook/database/repository/history"
	"carebook/models"
	"carebook/services/forecast"
	"carebook/services/scheduling"
)

type stubHistoryRepo struct {
	aggregates []models.DailyAggregate
	err        error
}

func (s *stubHistoryRepo) GetAppointmentHistory(_ context.Context, _ string, _ int) ([]models.HistoricalAppointment, error) {
	return nil, s.err
}

func (s *stubHistoryRepo) GetDailyAggregates(_ context.Context, _, _, _ string) ([]models.DailyAggregate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.aggregates, nil
}

type stubBookingRepo struct{}

func (stubBookingRepo) GetBooking(_ context.Context, _ string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}
func (stubBookingRepo) GetActiveBookings(_ context.Context, _, _, _ string) ([]models.Booking, error) {
	return nil, nil
}
func (stubBookingRepo) FindActiveAt(_ context.Context, _, _ string, _ int) (*models.Booking, error) {
	return nil, nil
}
func (stubBookingRepo) CreateBooking(_ context.Context, _ *models.Booking) error { return nil }
func (stubBookingRepo) CancelBooking(_ context.Context, _ string) error          { return nil }

func newForecastRouter(history historyRepo.HistoryRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	forecaster := forecast.NewDemandForecaster(history)
	forecaster.Retry = scheduling.RetryConfig{Timeout: time.Second}
	noShow := forecast.NewNoShowPredictor(stubBookingRepo{}, history)
	noShow.Retry = scheduling.RetryConfig{Timeout: time.Second}
	handler := NewForecastHandler(forecaster, noShow, zap.NewNop())

	router := gin.New()
	router.GET("/api/forecast/:providerID", handler.DemandForecast)
	router.GET("/api/bookings/:bookingID/no-show", handler.NoShowPrediction)
	return router
}

func getPath(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestDemandForecastSuccess(t *testing.T) {
	router := newForecastRouter(&stubHistoryRepo{aggregates: []models.DailyAggregate{
		{ProviderID: "prov-1", Date: "2024-01-01", Booked: 6, Capacity: 16},
	}})

	w := getPath(router, "/api/forecast/prov-1?from=2024-01-08&to=2024-01-08")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "prov-1")
}

func TestDemandForecastInvalidRange(t *testing.T) {
	router := newForecastRouter(&stubHistoryRepo{})

	w := getPath(router, "/api/forecast/prov-1?from=2024-01-08&to=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDemandForecastUpstreamUnavailable(t *testing.T) {
	router := newForecastRouter(&stubHistoryRepo{err: assert.AnError})

	w := getPath(router, "/api/forecast/prov-1")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code,
		"an exhausted analytics adapter is a 503, not a 500")
}

func TestNoShowPredictionUnknownBooking(t *testing.T) {
	router := newForecastRouter(&stubHistoryRepo{})

	w := getPath(router, "/api/bookings/missing/no-show")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
