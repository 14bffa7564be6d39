package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/refund"
)

// Provider abstracts the payment processor so handlers can be tested with a
// fake.
type Provider interface {
	CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (id string, clientSecret string, err error)
	GetPaymentStatus(paymentIntentID string) (string, error)
	Refund(paymentIntentID string) (string, error)
}

var _ Provider = (*StripeProvider)(nil)

// StripeProvider implements Provider against Stripe.
type StripeProvider struct {
	apiKey string
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		apiKey: apiKey,
	}
}

// CreatePaymentIntent opens a payment intent for an invoice amount.
// Automatic payment methods cover cards, Apple Pay and Google Pay.
func (s *StripeProvider) CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	return pi.ID, pi.ClientSecret, nil
}

// GetPaymentStatus retrieves the current status of a payment intent.
func (s *StripeProvider) GetPaymentStatus(paymentIntentID string) (string, error) {
	pi, err := paymentintent.Get(paymentIntentID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get payment intent: %w", err)
	}
	return string(pi.Status), nil
}

// Refund reverses a settled payment intent.
func (s *StripeProvider) Refund(paymentIntentID string) (string, error) {
	r, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	})
	if err != nil {
		return "", fmt.Errorf("failed to refund payment intent: %w", err)
	}
	return r.ID, nil
}
