package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

// PaymentGateway is the card processor used for bookings.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency, bookingID string) (id, clientSecret string, err error)
	Refund(ctx context.Context, paymentIntentID string) error
	CancelPaymentIntent(ctx context.Context, paymentIntentID string) error
}

type StripeService struct{}

func NewStripeService(secretKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{}
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, amount int64, currency, bookingID string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Description: stripe.String("Hapipet booking " + bookingID),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", bookingID)
	params.SetIdempotencyKey(fmt.Sprintf("booking-%s-%d", bookingID, amount))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("stripe payment intent for booking %s: %w", bookingID, err)
	}
	return pi.ID, pi.ClientSecret, nil
}

func (s *StripeService) Refund(ctx context.Context, paymentIntentID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe refund of %s: %w", paymentIntentID, err)
	}
	return nil
}

// CancelPaymentIntent voids an intent that has not been paid yet.
func (s *StripeService) CancelPaymentIntent(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if _, err := paymentintent.Cancel(paymentIntentID, params); err != nil {
		return fmt.Errorf("stripe cancel of %s: %w", paymentIntentID, err)
	}
	return nil
}
