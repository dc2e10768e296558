package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hapipet/internal/db"
)

// StripeRepository keeps the link between bookings and their Stripe payment intents.
type StripeRepository interface {
	SavePaymentIntent(ctx context.Context, bookingID, intentID string) error
	BookingIDByPaymentIntent(ctx context.Context, intentID string) (string, error)
	SetPaymentStatus(ctx context.Context, bookingID string, status db.PaymentStatus) error
}

type stripeRepository struct {
	db *sql.DB
}

func NewStripeRepository(db *sql.DB) StripeRepository {
	return &stripeRepository{db: db}
}

func (r *stripeRepository) SavePaymentIntent(ctx context.Context, bookingID, intentID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET stripe_payment_intent_id = $2, updated_at = NOW()
		WHERE id = $1`, bookingID, intentID)
	if err != nil {
		return fmt.Errorf("error saving payment intent for booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *stripeRepository) BookingIDByPaymentIntent(ctx context.Context, intentID string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE stripe_payment_intent_id = $1`, intentID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("error looking up payment intent %s: %w", intentID, err)
	}
	return id, nil
}

func (r *stripeRepository) SetPaymentStatus(ctx context.Context, bookingID string, status db.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET payment_status = $2, updated_at = NOW()
		WHERE id = $1`, bookingID, status)
	if err != nil {
		return fmt.Errorf("error updating payment status of booking %s: %w", bookingID, err)
	}
	return nil
}
