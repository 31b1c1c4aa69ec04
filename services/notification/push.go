package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"doctordash/models"
)

// PushChannel delivers FCM push notifications to the user's device.
type PushChannel struct {
	client *messaging.Client
}

func NewPushChannel(client *messaging.Client) *PushChannel {
	return &PushChannel{client: client}
}

func (c *PushChannel) Kind() models.Channel {
	return models.ChannelPush
}

func (c *PushChannel) Send(ctx context.Context, to models.Recipient, msg models.Message) error {
	if to.FCMToken == "" {
		return fmt.Errorf("recipient %s has no FCM token", to.UserID)
	}

	fcmMsg := &messaging.Message{
		Token: to.FCMToken,
		Notification: &messaging.Notification{
			Title: msg.Subject,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}

	if _, err := c.client.Send(ctx, fcmMsg); err != nil {
		return fmt.Errorf("fcm send to user %s: %w", to.UserID, err)
	}
	return nil
}
