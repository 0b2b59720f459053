package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"carebook/config"
	"carebook/models"
	"carebook/utils"
)

const TypeReminderSend = "reminder:send"

// ReminderPayload is the task body for a no-show follow-up.
type ReminderPayload struct {
	BookingID   string  `json:"bookingId"`
	UserID      string  `json:"userId"`
	ProviderID  string  `json:"providerId"`
	Date        string  `json:"date"`
	Start       int     `json:"start"`
	Probability float64 `json:"probability"`
}

// NotifierFunc delivers a reminder. Delivery transport is owned by the
// notification collaborator; the worker only hands the payload over.
type NotifierFunc func(ctx context.Context, payload ReminderPayload) error

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewReminderClient returns the enqueue-side asynq client.
func NewReminderClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// EnqueueBookingReminder schedules a reminder task 24 hours before the
// booking's slot. Bookings closer than 24 hours out get the reminder
// immediately.
func EnqueueBookingReminder(client *asynq.Client, booking *models.Booking, prediction *models.NoShowPrediction) error {
	payload, err := json.Marshal(ReminderPayload{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		ProviderID:  booking.ProviderID,
		Date:        booking.Date,
		Start:       booking.Start,
		Probability: prediction.Probability,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	startAt, err := booking.StartTime(time.Local)
	if err != nil {
		return fmt.Errorf("failed to resolve booking start: %w", err)
	}
	fireAt := startAt.Add(-24 * time.Hour)
	if fireAt.Before(time.Now()) {
		fireAt = time.Now()
	}

	task := asynq.NewTask(TypeReminderSend, payload)
	if _, err := client.Enqueue(task, asynq.ProcessAt(fireAt), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", booking.ID, err)
	}
	return nil
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(notify NotifierFunc) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask(notify))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(notify NotifierFunc) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder task has invalid payload", zap.Error(err))
			return err
		}

		logger.Info("dispatching booking reminder",
			zap.String("bookingId", p.BookingID),
			zap.String("date", p.Date),
			zap.Float64("noShowProbability", p.Probability))

		if notify == nil {
			return nil
		}
		if err := notify(ctx, p); err != nil {
			logger.Error("reminder delivery failed",
				zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}
