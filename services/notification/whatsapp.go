package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"doctordash/config"
	"doctordash/models"
)

// WhatsAppChannel sends text messages via the WhatsApp Business Cloud API.
type WhatsAppChannel struct {
	httpClient    *http.Client
	apiURL        string
	phoneNumberID string
	accessToken   string
}

func NewWhatsAppChannel() *WhatsAppChannel {
	return &WhatsAppChannel{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		apiURL:        config.AppConfig.WhatsAppAPIURL,
		phoneNumberID: config.AppConfig.WhatsAppPhoneNumberID,
		accessToken:   config.AppConfig.WhatsAppAccessToken,
	}
}

func (c *WhatsAppChannel) Kind() models.Channel {
	return models.ChannelWhatsApp
}

type whatsAppTextRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	RecipientType    string           `json:"recipient_type"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

type whatsAppTextBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

func (c *WhatsAppChannel) Send(ctx context.Context, to models.Recipient, msg models.Message) error {
	phone := formatPhoneNumber(to.Phone)
	if phone == "" {
		return fmt.Errorf("recipient %s has no valid phone number", to.UserID)
	}

	payload := whatsAppTextRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               phone,
		Type:             "text",
		Text:             whatsAppTextBody{Body: msg.Body},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.apiURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send to %s: %w", phone, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("whatsapp send to %s: status %d: %s", phone, resp.StatusCode, detail)
	}
	return nil
}

// formatPhoneNumber normalizes to the international digits-only form the
// Cloud API expects. Returns "" for the placeholder number some accounts
// carry instead of a real phone.
func formatPhoneNumber(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" || digits == "000000000" {
		return ""
	}
	return digits
}
