package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hapipet/internal/db"
)

const (
	bookingID = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	clientID  = "11111111-1111-1111-1111-111111111111"
	sitterID  = "22222222-2222-2222-2222-222222222222"
	dogID     = "33333333-3333-3333-3333-333333333333"
)

var (
	slotStart = time.Date(2025, 9, 15, 7, 0, 0, 0, time.UTC)
	slotEnd   = time.Date(2025, 9, 15, 10, 0, 0, 0, time.UTC)
	created   = time.Date(2025, 9, 14, 8, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func bookingRow(status db.BookingStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "client_id", "dogsitter_id", "dog_id", "start_time", "end_time", "status", "payment_status",
		"total_price", "stripe_payment_intent_id", "reminder_sent", "created_at", "updated_at",
	}).AddRow(bookingID, clientID, sitterID, dogID, slotStart, slotEnd, string(status), "pending",
		45.0, "", false, created, created)
}

const (
	lockBooking = `SELECT .+ FROM bookings WHERE id = \$1 FOR UPDATE`
	lockSitter  = `SELECT user_id FROM dogsitter_profiles WHERE user_id = \$1 FOR UPDATE`
	overlap     = `SELECT EXISTS \( SELECT 1 FROM bookings WHERE dogsitter_id = \$1 AND status = 'confirmed' AND id <> \$2 AND start_time < \$4 AND end_time > \$3 \)`
	confirm     = `UPDATE bookings SET status = 'confirmed', payment_status = \$2`
)

func TestConfirmLocksThenChecksOverlap(t *testing.T) {
	conn, mock := newMock(t)
	updated := created.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBooking).WithArgs(bookingID).WillReturnRows(bookingRow(db.StatusPending))
	mock.ExpectExec(lockSitter).WithArgs(sitterID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(overlap).WithArgs(sitterID, bookingID, slotStart, slotEnd).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(confirm).WithArgs(bookingID, "paid").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))
	mock.ExpectCommit()

	b, err := NewBookingRepository(conn).Confirm(context.Background(), bookingID, db.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, b.Status)
	assert.Equal(t, db.PaymentPaid, b.PaymentStatus)
	assert.True(t, b.UpdatedAt.Equal(updated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRefusesOverlappingConfirmedBooking(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBooking).WithArgs(bookingID).WillReturnRows(bookingRow(db.StatusPending))
	mock.ExpectExec(lockSitter).WithArgs(sitterID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(overlap).WithArgs(sitterID, bookingID, slotStart, slotEnd).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	b, err := NewBookingRepository(conn).Confirm(context.Background(), bookingID, db.PaymentPending)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Nil(t, b)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmRefusesBookingThatIsNoLongerPending(t *testing.T) {
	for _, status := range []db.BookingStatus{db.StatusConfirmed, db.StatusCancelled, db.StatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			conn, mock := newMock(t)

			mock.ExpectBegin()
			mock.ExpectQuery(lockBooking).WithArgs(bookingID).WillReturnRows(bookingRow(status))
			mock.ExpectRollback()

			_, err := NewBookingRepository(conn).Confirm(context.Background(), bookingID, db.PaymentPending)
			assert.ErrorIs(t, err, ErrStatusChanged)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConfirmUnknownBooking(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockBooking).WithArgs(bookingID).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := NewBookingRepository(conn).Confirm(context.Background(), bookingID, db.PaymentPending)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmedIntervalsWindow(t *testing.T) {
	conn, mock := newMock(t)
	from := time.Date(2025, 9, 14, 22, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	mock.ExpectQuery(`WHERE dogsitter_id = \$1 AND status = 'confirmed' AND start_time < \$3 AND end_time > \$2`).
		WithArgs(sitterID, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"start_time", "end_time"}).AddRow(slotStart, slotEnd))

	got, err := NewBookingRepository(conn).ConfirmedIntervals(context.Background(), sitterID, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Start.Equal(slotStart))
	assert.True(t, got[0].End.Equal(slotEnd))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusIsConditional(t *testing.T) {
	conn, mock := newMock(t)
	update := `UPDATE bookings SET status = \$3, payment_status = \$4, updated_at = NOW\(\) WHERE id = \$1 AND status = \$2`

	mock.ExpectExec(update).WithArgs(bookingID, "confirmed", "cancelled", "refunded").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WithArgs(bookingID, "confirmed", "cancelled", "refunded").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookingRepository(conn)
	ctx := context.Background()
	require.NoError(t, repo.UpdateStatus(ctx, bookingID, db.StatusConfirmed, db.StatusCancelled, db.PaymentRefunded))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, bookingID, db.StatusConfirmed, db.StatusCancelled, db.PaymentRefunded), ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSitterSearchMatchesLiterally(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery(`strpos\(lower\(u.full_name\), lower\(\$1\)\) > 0 OR strpos\(lower\(p.description\), lower\(\$1\)\) > 0`).
		WithArgs("100%_sure").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "full_name", "avatar_url", "address", "description", "hourly_rate", "daily_rate",
			"availability", "rating", "latitude", "longitude", "updated_at",
		}).AddRow(sitterID, "Marie", "", "", "100%_sure walks", 15.0, 80.0, []byte(`{"1":["9:00-12:00"]}`), 4.5, nil, nil, created))

	got, err := NewSitterRepository(conn).Search(context.Background(), "100%_sure")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"9:00-12:00"}, got[0].Availability[time.Monday])
	assert.False(t, got[0].HasLocation())
	assert.NoError(t, mock.ExpectationsWereMet())
}
