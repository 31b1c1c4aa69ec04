package models

// OrderRef identifies a payable order created with the payment gateway.
// ClientSecret is handed to the frontend to complete the charge.
type OrderRef struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	ClientSecret string  `json:"clientSecret,omitempty"`
}
