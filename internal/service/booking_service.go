package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hapipet/internal/availability"
	"hapipet/internal/db"
	"hapipet/internal/entities"
	apperr "hapipet/internal/errors"
	"hapipet/internal/repository"
	"hapipet/internal/utils"
)

type BookingStores struct {
	Bookings repository.BookingRepository
	Sitters  repository.SitterRepository
	Dogs     repository.DogRepository
	Reviews  repository.ReviewRepository
	Payments repository.StripeRepository
}

type BookingService struct {
	BookingStores
	gateway  PaymentGateway
	notifier Notifier
	loc      *time.Location
	currency string
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(stores BookingStores, gateway PaymentGateway, notifier Notifier,
	loc *time.Location, currency string, log *zap.Logger) *BookingService {
	return &BookingService{
		BookingStores: stores,
		gateway:       gateway,
		notifier:      notifier,
		loc:           loc,
		currency:      strings.ToLower(currency),
		now:           time.Now,
		log:           log,
	}
}

// CreateBooking books one template slot of a sitter for one of the client's dogs.
// The slot is checked against confirmed bookings only; the booking starts pending.
func (s *BookingService) CreateBooking(ctx context.Context, clientID string, req entities.BookingRequest) (*db.Booking, error) {
	if _, err := uuid.Parse(req.DogID); err != nil {
		return nil, apperr.ErrNotFound("dog not found")
	}
	if _, err := uuid.Parse(req.SitterID); err != nil {
		return nil, apperr.ErrNotFound("dogsitter not found")
	}
	dog, err := s.Dogs.GetByID(ctx, req.DogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("dog not found")
		}
		return nil, err
	}
	if dog.OwnerID != clientID {
		return nil, apperr.ErrForbidden("this dog does not belong to you")
	}

	sitter, err := s.Sitters.GetProfile(ctx, req.SitterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("dogsitter not found")
		}
		return nil, err
	}
	if sitter.UserID == clientID {
		return nil, apperr.ErrBadRequest("you cannot book yourself")
	}

	start, end, err := s.parseSlot(req)
	if err != nil {
		return nil, err
	}
	if !start.After(s.now()) {
		return nil, apperr.ErrBadRequest("slot is in the past")
	}
	if !inTemplate(sitter.Availability, start, end) {
		return nil, apperr.ErrUnprocessable("slot is not part of the dogsitter's availability")
	}

	day := midnight(start)
	booked, err := s.Bookings.ConfirmedIntervals(ctx, sitter.UserID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if !availability.IsAvailable(start, end, booked) {
		return nil, apperr.ErrConflict("slot not available")
	}

	b := &db.Booking{
		ID:            uuid.NewString(),
		ClientID:      clientID,
		SitterID:      sitter.UserID,
		DogID:         dog.ID,
		StartTime:     start,
		EndTime:       end,
		Status:        db.StatusPending,
		PaymentStatus: db.PaymentPending,
		TotalPrice:    Price(start, end, sitter.HourlyRate),
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("booking created", zap.String("booking_id", b.ID), zap.String("dogsitter_id", b.SitterID),
		zap.Time("start", b.StartTime), zap.Float64("total_price", b.TotalPrice))
	s.notifier.Notify(ctx, Notification{Kind: NotifyBookingCreated, BookingID: b.ID})
	return b, nil
}

// Price is the hourly rate times the booked duration, rounded to cents.
func Price(start, end time.Time, hourlyRate float64) float64 {
	return utils.RoundCents(end.Sub(start).Hours() * hourlyRate)
}

func (s *BookingService) GetBooking(ctx context.Context, userID, id string) (*db.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, apperr.ErrForbidden("not your booking")
	}
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID string) (*entities.BookingsList, error) {
	bookings, err := s.Bookings.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.BookingsList{Total: len(bookings), Bookings: bookings}, nil
}

// ConfirmBooking is the sitter accepting a pending booking. It fails with 409 when another
// confirmed booking of the sitter already overlaps the slot.
func (s *BookingService) ConfirmBooking(ctx context.Context, sitterID, id string) (*db.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SitterID != sitterID {
		return nil, apperr.ErrForbidden("only the dogsitter of this booking can confirm it")
	}
	if err := checkTransition(b.Status, db.StatusConfirmed); err != nil {
		return nil, apperr.Wrap(http.StatusConflict, err.Error(), err)
	}

	confirmed, err := s.Bookings.Confirm(ctx, b.ID, b.PaymentStatus)
	if err != nil {
		return nil, confirmError(err)
	}
	s.log.Info("booking confirmed", zap.String("booking_id", b.ID))
	s.notifier.Notify(ctx, Notification{Kind: NotifyBookingConfirmed, BookingID: b.ID})
	return confirmed, nil
}

func (s *BookingService) CompleteBooking(ctx context.Context, sitterID, id string) (*db.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.SitterID != sitterID {
		return nil, apperr.ErrForbidden("only the dogsitter of this booking can complete it")
	}
	if err := s.transition(ctx, b, db.StatusCompleted, b.PaymentStatus); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, Notification{Kind: NotifyBookingCompleted, BookingID: b.ID})
	return b, nil
}

// CancelBooking can be done by either party while the booking is pending or confirmed.
// A paid booking is refunded first; if the refund fails nothing changes.
func (s *BookingService) CancelBooking(ctx context.Context, userID, id string) (*db.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, apperr.ErrForbidden("not your booking")
	}
	if err := checkTransition(b.Status, db.StatusCancelled); err != nil {
		return nil, apperr.Wrap(http.StatusConflict, err.Error(), err)
	}

	payment := b.PaymentStatus
	if payment == db.PaymentPaid && b.StripePaymentIntentID != "" {
		if err := s.gateway.Refund(ctx, b.StripePaymentIntentID); err != nil {
			s.log.Error("refund failed", zap.String("booking_id", b.ID), zap.Error(err))
			return nil, apperr.Wrap(http.StatusBadGateway, "refund failed, booking not cancelled", err)
		}
		payment = db.PaymentRefunded
	}
	if payment == db.PaymentPending && b.StripePaymentIntentID != "" {
		// A payment that still goes through is refunded by PaymentSucceeded.
		if err := s.gateway.CancelPaymentIntent(ctx, b.StripePaymentIntentID); err != nil {
			s.log.Warn("could not void payment intent", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
	if err := s.transition(ctx, b, db.StatusCancelled, payment); err != nil {
		return nil, err
	}
	s.log.Info("booking cancelled", zap.String("booking_id", b.ID), zap.String("by", userID))
	s.notifier.Notify(ctx, Notification{Kind: NotifyBookingCancelled, BookingID: b.ID})
	return b, nil
}

// CreatePayment opens a Stripe payment intent for the booking price.
func (s *BookingService) CreatePayment(ctx context.Context, clientID, id string) (*entities.PaymentResponse, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ClientID != clientID {
		return nil, apperr.ErrForbidden("only the client of this booking can pay for it")
	}
	if b.Status != db.StatusPending && b.Status != db.StatusConfirmed {
		return nil, apperr.ErrConflict("booking is " + string(b.Status))
	}
	if b.PaymentStatus != db.PaymentPending {
		return nil, apperr.ErrConflict("booking is already " + string(b.PaymentStatus))
	}

	amount := utils.ToMinorUnits(b.TotalPrice)
	intentID, secret, err := s.gateway.CreatePaymentIntent(ctx, amount, s.currency, b.ID)
	if err != nil {
		return nil, apperr.Wrap(http.StatusBadGateway, "payment provider error", err)
	}
	if err := s.Payments.SavePaymentIntent(ctx, b.ID, intentID); err != nil {
		return nil, err
	}
	return &entities.PaymentResponse{
		BookingID:       b.ID,
		PaymentIntentID: intentID,
		ClientSecret:    secret,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// PaymentSucceeded confirms a pending booking and marks it paid. A confirmed booking only
// becomes paid. If the slot was taken meanwhile the booking stays pending but paid, so
// cancelling it refunds the client. Money received for a cancelled booking is refunded.
func (s *BookingService) PaymentSucceeded(ctx context.Context, intentID, bookingID string) error {
	b, err := s.bookingForIntent(ctx, intentID, bookingID)
	if err != nil {
		return err
	}
	if b.StripePaymentIntentID == "" {
		if err := s.Payments.SavePaymentIntent(ctx, b.ID, intentID); err != nil {
			return err
		}
	}

	switch b.Status {
	case db.StatusPending:
		_, err := s.Bookings.Confirm(ctx, b.ID, db.PaymentPaid)
		if errors.Is(err, repository.ErrSlotTaken) {
			s.log.Warn("paid booking could not be confirmed, slot taken", zap.String("booking_id", b.ID))
			return s.Payments.SetPaymentStatus(ctx, b.ID, db.PaymentPaid)
		}
		if err != nil {
			return err
		}
		s.log.Info("booking paid and confirmed", zap.String("booking_id", b.ID))
		s.notifier.Notify(ctx, Notification{Kind: NotifyBookingConfirmed, BookingID: b.ID})
		return nil
	case db.StatusConfirmed, db.StatusCompleted:
		return s.Payments.SetPaymentStatus(ctx, b.ID, db.PaymentPaid)
	default:
		if b.PaymentStatus == db.PaymentRefunded {
			return nil
		}
		s.log.Warn("payment for a cancelled booking, refunding", zap.String("booking_id", b.ID))
		if err := s.gateway.Refund(ctx, intentID); err != nil {
			return err
		}
		return s.Payments.SetPaymentStatus(ctx, b.ID, db.PaymentRefunded)
	}
}

// PaymentRefunded cancels the booking behind a refunded charge, if it is still open.
func (s *BookingService) PaymentRefunded(ctx context.Context, intentID string) error {
	b, err := s.bookingForIntent(ctx, intentID, "")
	if err != nil {
		return err
	}
	if CanTransition(b.Status, db.StatusCancelled) {
		if err := s.transition(ctx, b, db.StatusCancelled, db.PaymentRefunded); err != nil {
			return err
		}
		s.notifier.Notify(ctx, Notification{Kind: NotifyBookingCancelled, BookingID: b.ID})
		return nil
	}
	if b.PaymentStatus != db.PaymentRefunded {
		return s.Payments.SetPaymentStatus(ctx, b.ID, db.PaymentRefunded)
	}
	return nil
}

// ReviewBooking lets the client rate the sitter once the booking is completed.
func (s *BookingService) ReviewBooking(ctx context.Context, clientID, id string, req entities.ReviewRequest) (*db.Review, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ClientID != clientID {
		return nil, apperr.ErrForbidden("only the client of this booking can review it")
	}
	if b.Status != db.StatusCompleted {
		return nil, apperr.ErrConflict("only completed bookings can be reviewed")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.ErrBadRequest("rating must be between 1 and 5")
	}

	rv := &db.Review{
		ID:        uuid.NewString(),
		BookingID: b.ID,
		AuthorID:  clientID,
		TargetID:  b.SitterID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := s.Reviews.Create(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrConflict("booking already reviewed")
		}
		return nil, err
	}
	return rv, nil
}

func (s *BookingService) transition(ctx context.Context, b *db.Booking, to db.BookingStatus, payment db.PaymentStatus) error {
	if err := checkTransition(b.Status, to); err != nil {
		return apperr.Wrap(http.StatusConflict, err.Error(), err)
	}
	if err := s.Bookings.UpdateStatus(ctx, b.ID, b.Status, to, payment); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return apperr.Wrap(http.StatusConflict, "booking was modified, reload it", err)
		}
		return err
	}
	b.Status, b.PaymentStatus = to, payment
	b.UpdatedAt = s.now()
	return nil
}

func (s *BookingService) load(ctx context.Context, id string) (*db.Booking, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.ErrNotFound("booking not found")
	}
	b, err := s.Bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("booking not found")
		}
		return nil, err
	}
	return b, nil
}

func (s *BookingService) bookingForIntent(ctx context.Context, intentID, bookingID string) (*db.Booking, error) {
	if bookingID == "" {
		id, err := s.Payments.BookingIDByPaymentIntent(ctx, intentID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrNotFound("no booking for payment intent " + intentID)
		}
		if err != nil {
			return nil, err
		}
		bookingID = id
	}
	return s.load(ctx, bookingID)
}

// parseSlot reads either a date with clock times or two absolute timestamps, and returns
// them in the service time zone.
func (s *BookingService) parseSlot(req entities.BookingRequest) (time.Time, time.Time, error) {
	var start, end time.Time
	if req.Date != "" {
		day, err := time.ParseInLocation(time.DateOnly, req.Date, s.loc)
		if err != nil {
			return start, end, apperr.ErrBadRequest("date must be YYYY-MM-DD")
		}
		sc, err := availability.ParseClock(req.Start)
		if err != nil {
			return start, end, apperr.ErrBadRequest("start_time must be HH:MM")
		}
		ec, err := availability.ParseClock(req.End)
		if err != nil {
			return start, end, apperr.ErrBadRequest("end_time must be HH:MM")
		}
		start, end = sc.On(day), ec.On(day)
	} else {
		var err error
		if start, err = time.Parse(time.RFC3339, req.Start); err != nil {
			return start, end, apperr.ErrBadRequest("start_time must be RFC 3339 when date is omitted")
		}
		if end, err = time.Parse(time.RFC3339, req.End); err != nil {
			return start, end, apperr.ErrBadRequest("end_time must be RFC 3339 when date is omitted")
		}
		start, end = start.In(s.loc), end.In(s.loc)
	}
	if !end.After(start) {
		return start, end, apperr.ErrBadRequest("end_time must be after start_time")
	}
	return start, end, nil
}

// inTemplate reports whether [start, end) is exactly one range of the weekly template on
// start's weekday. start and end must be in the service time zone.
func inTemplate(weekly availability.WeeklyAvailability, start, end time.Time) bool {
	if start.Second() != 0 || end.Second() != 0 || start.Nanosecond() != 0 || end.Nanosecond() != 0 {
		return false
	}
	if !midnight(start).Equal(midnight(end)) {
		return false
	}
	sc := availability.Clock(start.Hour()*60 + start.Minute())
	ec := availability.Clock(end.Hour()*60 + end.Minute())
	return weekly.Contains(start.Weekday(), sc, ec)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func confirmError(err error) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		return apperr.Wrap(http.StatusConflict, "slot already taken by another confirmed booking", err)
	case errors.Is(err, repository.ErrStatusChanged):
		return apperr.Wrap(http.StatusConflict, "booking was modified, reload it", err)
	case errors.Is(err, repository.ErrNotFound):
		return apperr.ErrNotFound("booking not found")
	}
	return err
}
