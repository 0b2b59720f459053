package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carebook/config"
	"carebook/cron"
	"carebook/database"
	bookingRepo "carebook/database/repository/booking"
	calendarRepo "carebook/database/repository/calendar"
	historyRepo "carebook/database/repository/history"
	"carebook/handlers"
	"carebook/middleware"
	"carebook/models"
	"carebook/routes"
	"carebook/services/forecast"
	"carebook/services/scheduling"
	"carebook/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// repositories.
	calendars := calendarRepo.NewMongoCalendarRepo()
	history := historyRepo.NewMongoHistoryRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// shared pieces.
	retryCfg := scheduling.RetryConfig{
		Timeout:    time.Duration(config.AppConfig.AdapterTimeoutSec) * time.Second,
		MaxRetries: uint(config.AppConfig.AdapterMaxRetries),
	}
	profileCache := &scheduling.RedisProfileCache{Client: utils.GetCacheClient()}
	cacheTTL := time.Duration(config.AppConfig.ProfileCacheTTLMin) * time.Minute

	preferences := &scheduling.PreferenceProfiler{
		History:      history,
		Cache:        profileCache,
		Retry:        retryCfg,
		HistoryLimit: config.AppConfig.HistoryLimit,
		CacheTTL:     cacheTTL,
	}
	patterns := &scheduling.ProviderPatternProfiler{
		History:      history,
		Cache:        profileCache,
		Retry:        retryCfg,
		LookbackDays: config.AppConfig.AggregateLookback,
		HistoryLimit: config.AppConfig.HistoryLimit,
		CacheTTL:     cacheTTL,
	}

	scorer := scheduling.NewConfidenceScorer(scheduling.ScorerConfig{
		Base:                config.AppConfig.BaseConfidence,
		PreferredTimeWeight: config.AppConfig.WeightPreferredTime,
		FavoredWindowWeight: config.AppConfig.WeightFavoredWindow,
		SuccessRateWeight:   config.AppConfig.WeightSuccessRate,
		UrgencyWeight:       config.AppConfig.WeightUrgency,
		PreferredDayWeight:  config.AppConfig.WeightPreferredDay,
		MinConfidence:       config.AppConfig.MinConfidence,
	})

	resolver := scheduling.NewConflictResolver(bookings, config.AppConfig.ConflictSearchRadius)
	resolver.Retry = retryCfg

	noShow := forecast.NewNoShowPredictor(bookings, history)
	noShow.Retry = retryCfg
	noShow.Smoothing = config.AppConfig.NoShowSmoothing
	noShow.RiskThreshold = config.AppConfig.NoShowRiskThreshold
	noShow.CancelsFlagged = config.AppConfig.NoShowCancelsFlagged
	noShow.HistoryLimit = config.AppConfig.HistoryLimit

	forecaster := forecast.NewDemandForecaster(history)
	forecaster.Retry = retryCfg
	forecaster.LookbackDays = config.AppConfig.AggregateLookback
	forecaster.BaseConfidence = config.AppConfig.ForecastConfidence
	forecaster.MinSamples = config.AppConfig.ForecastMinSamples
	forecaster.HighUtilization = config.AppConfig.HighUtilization

	// Reminder pipeline: high-risk bookings get a follow-up task 24h ahead.
	reminderClient := cron.NewReminderClient()
	cron.InitReminderWorker(nil)

	optimizer := &scheduling.DefaultScheduleOptimizer{
		Calendar:        calendars,
		Generator:       scheduling.NewSlotGenerator(scheduling.OverridePolicy(config.AppConfig.OverridePolicy)),
		Scorer:          scorer,
		Resolver:        resolver,
		Preferences:     preferences,
		Patterns:        patterns,
		Retry:           retryCfg,
		HorizonDays:     config.AppConfig.HorizonDays,
		DefaultDuration: config.AppConfig.DefaultDuration,
		MaxAlternatives: config.AppConfig.MaxAlternatives,
		OnCommit: func(booking *models.Booking) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			prediction, err := noShow.PredictNoShow(ctx, booking.ID)
			if err != nil {
				logger.Warn("no-show check after commit failed",
					zap.String("bookingId", booking.ID), zap.Error(err))
				return
			}
			if prediction.Probability < noShow.RiskThreshold {
				return
			}
			if err := cron.EnqueueBookingReminder(reminderClient, booking, prediction); err != nil {
				logger.Warn("failed to enqueue booking reminder",
					zap.String("bookingId", booking.ID), zap.Error(err))
			}
		},
	}

	schedulingHandler := handlers.NewSchedulingHandler(optimizer, logger)
	forecastHandler := handlers.NewForecastHandler(forecaster, noShow, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	routes.RegisterRoutes(router, schedulingHandler, forecastHandler)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
