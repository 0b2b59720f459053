package routes

import (
	"github.com/gin-gonic/gin"

	"carebook/handlers"
)

// RegisterRoutes wires all endpoints of the scheduling engine.
func RegisterRoutes(r *gin.Engine, scheduling *handlers.SchedulingHandler, forecast *handlers.ForecastHandler) {
	r.GET("/health", handlers.HealthCheck)

	api := r.Group("/api")

	schedule := api.Group("/schedule")
	{
		schedule.POST("/optimize", scheduling.OptimizeSchedule)
		schedule.POST("/commit", scheduling.CommitBooking)
		schedule.GET("/providers/:providerID/slots", scheduling.PreviewSlots)
	}

	api.GET("/forecast/:providerID", forecast.DemandForecast)
	api.GET("/bookings/:bookingID/no-show", forecast.NoShowPrediction)
}
