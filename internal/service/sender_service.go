package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hapipet/internal/db"
	"hapipet/internal/entities"
	"hapipet/internal/repository"
	"hapipet/internal/templates"
)

// SenderService turns booking events into emails and SMS for the parties involved.
// Notify hands events to a Dispatcher; Deliver does the actual sending.
type SenderService struct {
	users      repository.UserRepository
	bookings   repository.BookingRepository
	dogs       repository.DogRepository
	email      EmailSender
	sms        SMSSender
	dispatcher Dispatcher
	loc        *time.Location
	log        *zap.Logger
}

func NewSenderService(users repository.UserRepository, bookings repository.BookingRepository, dogs repository.DogRepository,
	email EmailSender, sms SMSSender, loc *time.Location, log *zap.Logger) *SenderService {
	s := &SenderService{
		users:    users,
		bookings: bookings,
		dogs:     dogs,
		email:    email,
		sms:      sms,
		loc:      loc,
		log:      log,
	}
	s.dispatcher = NewInlineDispatcher(s, log)
	return s
}

// UseDispatcher replaces the default in-process dispatcher, e.g. with a persistent queue.
func (s *SenderService) UseDispatcher(d Dispatcher) {
	s.dispatcher = d
}

func (s *SenderService) Notify(ctx context.Context, n Notification) {
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		s.log.Error("could not dispatch notification",
			zap.String("kind", string(n.Kind)), zap.String("booking_id", n.BookingID), zap.Error(err))
	}
}

type recipient struct {
	user     *db.User
	headline string
}

func (s *SenderService) Deliver(ctx context.Context, n Notification) error {
	b, err := s.bookings.GetByID(ctx, n.BookingID)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", n.BookingID, err)
	}
	client, err := s.users.GetByID(ctx, b.ClientID)
	if err != nil {
		return fmt.Errorf("load client %s: %w", b.ClientID, err)
	}
	sitter, err := s.users.GetByID(ctx, b.SitterID)
	if err != nil {
		return fmt.Errorf("load dogsitter %s: %w", b.SitterID, err)
	}
	dogName := "your dog"
	if dog, err := s.dogs.GetByID(ctx, b.DogID); err == nil {
		dogName = dog.Name
	}

	var to []recipient
	switch n.Kind {
	case NotifyBookingCreated:
		to = []recipient{{sitter, "New booking request"}}
	case NotifyBookingConfirmed:
		to = []recipient{{client, "Your booking is confirmed"}}
	case NotifyBookingCompleted:
		to = []recipient{{client, "Your booking is completed"}}
	case NotifyBookingCancelled:
		to = []recipient{{client, "Booking cancelled"}, {sitter, "Booking cancelled"}}
	case NotifyBookingReminder:
		to = []recipient{{client, "Reminder: upcoming booking"}, {sitter, "Reminder: upcoming booking"}}
	default:
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}

	var errs []error
	for _, r := range to {
		data := entities.BookingEmailData{
			RecipientName:      r.user.FullName,
			Headline:           r.headline,
			BookingID:          b.ID,
			DogName:            dogName,
			ClientName:         client.FullName,
			SitterName:         sitter.FullName,
			StartTimeFormatted: b.StartTime.In(s.loc).Format("02 Jan 2006 15:04 MST"),
			EndTimeFormatted:   b.EndTime.In(s.loc).Format("02 Jan 2006 15:04 MST"),
			TotalPrice:         fmt.Sprintf("%.2f", b.TotalPrice),
			Status:             string(b.Status),
			CurrentYear:        time.Now().In(s.loc).Year(),
		}
		if err := s.sendEmail(r.user, data); err != nil && !errors.Is(err, ErrChannelDisabled) {
			errs = append(errs, err)
		}
		if r.user.Phone == "" {
			continue
		}
		if err := s.sms.SendSMS(r.user.Phone, smsBody(data, b.StartTime.In(s.loc))); err != nil && !errors.Is(err, ErrChannelDisabled) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *SenderService) sendEmail(u *db.User, data entities.BookingEmailData) error {
	subject := fmt.Sprintf("Hapipet: %s (%s)", data.Headline, data.StartTimeFormatted)
	plain := fmt.Sprintf(
		"Hello %s,\n\n%s.\n\n"+
			"Dog: %s\n"+
			"Owner: %s\n"+
			"Dogsitter: %s\n"+
			"From: %s\n"+
			"To: %s\n"+
			"Price: %s\n"+
			"Status: %s\n\n"+
			"Hapipet",
		data.RecipientName, data.Headline, data.DogName, data.ClientName, data.SitterName,
		data.StartTimeFormatted, data.EndTimeFormatted, data.TotalPrice, data.Status,
	)

	var html bytes.Buffer
	if err := templates.BookingEmail.Execute(&html, data); err != nil {
		s.log.Error("booking email template failed", zap.String("booking_id", data.BookingID), zap.Error(err))
		html.Reset()
	}
	return s.email.SendEmail(u.Email, u.FullName, subject, plain, html.String())
}

func smsBody(data entities.BookingEmailData, start time.Time) string {
	return fmt.Sprintf("Hapipet: %s for %s on %s. More details in your email.",
		data.Headline, data.DogName, start.Format("02/01 15:04"))
}
