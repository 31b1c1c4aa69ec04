package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"doctordash/config"
	"doctordash/models"
	"doctordash/services/notification"
	"doctordash/services/tasks"
)

// InitNotificationWorker runs the async notification worker in background.
// Booking confirmations and cancellations travel through this queue so the
// booking path never waits on a transport.
func InitNotificationWorker(registry notification.Registry, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationSend, handleNotificationTask(registry, logger))

	// Start async worker with retry logic
	go func() {
		logger.Info("starting async notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("notification worker failed to start",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("notification worker: max retry attempts reached")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleNotificationTask(registry notification.Registry, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotificationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid notification payload", zap.Error(err))
			return err
		}

		var lastErr error
		for _, kind := range p.Channels {
			ch, err := registry.Get(kind)
			if err != nil {
				logger.Warn("skipping unknown notification channel",
					zap.String("channel", string(kind)))
				continue
			}
			if err := ch.Send(ctx, p.Recipient, p.Message); err != nil {
				logger.Error("notification send failed",
					zap.String("channel", string(kind)),
					zap.String("userId", p.Recipient.UserID),
					zap.Error(err))
				lastErr = err
			}
		}
		return lastErr
	}
}
