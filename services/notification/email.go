package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"doctordash/config"
	"doctordash/models"
)

// EmailChannel sends transactional email through SendGrid.
type EmailChannel struct {
	client     *sendgrid.Client
	senderName string
	senderAddr string
}

func NewEmailChannel() *EmailChannel {
	return &EmailChannel{
		client:     sendgrid.NewSendClient(config.AppConfig.SendGridKey),
		senderName: config.AppConfig.SenderName,
		senderAddr: config.AppConfig.SenderEmail,
	}
}

func (c *EmailChannel) Kind() models.Channel {
	return models.ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, to models.Recipient, msg models.Message) error {
	if to.Email == "" {
		return fmt.Errorf("recipient %s has no email address", to.UserID)
	}

	from := mail.NewEmail(c.senderName, c.senderAddr)
	dest := mail.NewEmail(to.Name, to.Email)
	html := msg.HTML
	if html == "" {
		html = fmt.Sprintf("<p>%s</p>", msg.Body)
	}
	email := mail.NewSingleEmail(from, msg.Subject, dest, msg.Body, html)

	resp, err := c.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", to.Email, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send to %s: status %d: %s", to.Email, resp.StatusCode, resp.Body)
	}
	return nil
}
