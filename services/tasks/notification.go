package tasks

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"doctordash/models"
)

const TypeNotificationSend = "notification:send"

// NewNotificationTask wraps a notification payload into an asynq task.
func NewNotificationTask(payload models.NotificationPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotificationSend, b), nil
}

// AsynqEnqueuer pushes notification payloads onto the Redis-backed queue
// consumed by the async worker.
type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, payload models.NotificationPayload) error {
	task, err := NewNotificationTask(payload)
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
