package booking

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"doctordash/models"
)

// PaymentGateway creates payable orders and verifies their outcome. The
// booking workflow never talks to the processor directly.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, currency string) (models.OrderRef, error)
	Verify(ctx context.Context, orderRef string) (bool, error)
}

// StripeGateway implements PaymentGateway on Stripe PaymentIntents.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount float64, currency string) (models.OrderRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return models.OrderRef{}, fmt.Errorf("create payment intent: %w", err)
	}

	return models.OrderRef{
		ID:           pi.ID,
		Amount:       amount,
		Currency:     currency,
		ClientSecret: pi.ClientSecret,
	}, nil
}

func (g *StripeGateway) Verify(ctx context.Context, orderRef string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(orderRef, params)
	if err != nil {
		return false, fmt.Errorf("fetch payment intent %s: %w", orderRef, err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}
