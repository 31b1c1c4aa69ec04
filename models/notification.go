package models

// Recipient carries the contact details a notification channel needs.
// Which field is used depends on the channel: email address, phone number
// in international format, or FCM device token.
type Recipient struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// Message is a channel-agnostic notification body. Channels pick the
// representation they support; HTML is optional.
type Message struct {
	Subject string            `json:"subject"`
	Body    string            `json:"body"`
	HTML    string            `json:"html,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// NotificationPayload is the queued form of a fire-and-forget notification
// (booking confirmations and cancellations travel through the async worker).
type NotificationPayload struct {
	Recipient Recipient `json:"recipient"`
	Message   Message   `json:"message"`
	Channels  []Channel `json:"channels"`
}
