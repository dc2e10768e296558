package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hapipet/internal/availability"
	"hapipet/internal/db"
)

type BookingRepository interface {
	Create(ctx context.Context, b *db.Booking) error
	GetByID(ctx context.Context, id string) (*db.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]db.Booking, error)
	ConfirmedIntervals(ctx context.Context, sitterID string, from, to time.Time) ([]availability.Interval, error)
	Confirm(ctx context.Context, id string, payment db.PaymentStatus) (*db.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to db.BookingStatus, payment db.PaymentStatus) error
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, client_id, dogsitter_id, dog_id, start_time, end_time, status, payment_status,
	total_price, stripe_payment_intent_id, reminder_sent, created_at, updated_at`

func (r *bookingRepository) Create(ctx context.Context, b *db.Booking) error {
	query := `
		INSERT INTO bookings
		(id, client_id, dogsitter_id, dog_id, start_time, end_time, status, payment_status, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		b.ID,
		b.ClientID,
		b.SitterID,
		b.DogID,
		b.StartTime,
		b.EndTime,
		b.Status,
		b.PaymentStatus,
		b.TotalPrice,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*db.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// ListForUser returns the bookings where the user is either the client or the sitter, newest first.
func (r *bookingRepository) ListForUser(ctx context.Context, userID string) ([]db.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE client_id = $1 OR dogsitter_id = $1
		ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	bookings := []db.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ConfirmedIntervals lists the confirmed bookings of a sitter that touch [from, to).
func (r *bookingRepository) ConfirmedIntervals(ctx context.Context, sitterID string, from, to time.Time) ([]availability.Interval, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT start_time, end_time FROM bookings
		WHERE dogsitter_id = $1 AND status = 'confirmed' AND start_time < $3 AND end_time > $2
		ORDER BY start_time`, sitterID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying confirmed bookings: %w", err)
	}
	defer rows.Close()

	var out []availability.Interval
	for rows.Next() {
		var in availability.Interval
		if err := rows.Scan(&in.Start, &in.End); err != nil {
			return nil, fmt.Errorf("error scanning booking interval: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// Confirm moves a pending booking to confirmed. The sitter's profile row is locked for the
// duration of the transaction so concurrent confirmations for one sitter are serialised, and
// any other confirmed booking overlapping [start, end) refuses the confirmation with ErrSlotTaken.
func (r *bookingRepository) Confirm(ctx context.Context, id string, payment db.PaymentStatus) (*db.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if b.Status != db.StatusPending {
		return nil, ErrStatusChanged
	}

	if _, err := tx.ExecContext(ctx, `SELECT user_id FROM dogsitter_profiles WHERE user_id = $1 FOR UPDATE`, b.SitterID); err != nil {
		return nil, fmt.Errorf("error locking dogsitter %s: %w", b.SitterID, err)
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE dogsitter_id = $1 AND status = 'confirmed' AND id <> $2
			  AND start_time < $4 AND end_time > $3
		)`, b.SitterID, b.ID, b.StartTime, b.EndTime).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("error checking overlapping bookings: %w", err)
	}
	if taken {
		return nil, ErrSlotTaken
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE bookings SET status = 'confirmed', payment_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`, b.ID, payment).Scan(&b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error confirming booking %s: %w", b.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	b.Status, b.PaymentStatus = db.StatusConfirmed, payment
	return b, nil
}

// UpdateStatus applies a transition only if the booking is still in status from.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id string, from, to db.BookingStatus, payment db.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET status = $3, payment_status = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to, payment)
	if err != nil {
		return fmt.Errorf("error updating booking %s to %s: %w", id, to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStatusChanged
	}
	return nil
}

func scanBooking(row scanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(&b.ID, &b.ClientID, &b.SitterID, &b.DogID, &b.StartTime, &b.EndTime, &b.Status, &b.PaymentStatus,
		&b.TotalPrice, &b.StripePaymentIntentID, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning booking: %w", err)
	}
	return &b, nil
}
