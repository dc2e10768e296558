package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hapipet/internal/repository"
)

// ReminderWindow is how far ahead confirmed bookings get their reminder.
const ReminderWindow = 24 * time.Hour

type JobService struct {
	repo     repository.JobRepository
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewJobService(repo repository.JobRepository, notifier Notifier, log *zap.Logger) *JobService {
	return &JobService{repo: repo, notifier: notifier, now: time.Now, log: log}
}

// SendReminders notifies both parties of every confirmed booking starting within the
// reminder window, once per booking. Booking statuses are left alone.
func (s *JobService) SendReminders(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.repo.DueReminders(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("reminder job: failed to get due bookings: %w", err)
	}
	if len(ids) == 0 {
		s.log.Debug("reminder job: nothing to send")
		return 0, nil
	}

	for _, id := range ids {
		s.notifier.Notify(ctx, Notification{Kind: NotifyBookingReminder, BookingID: id})
	}
	n, err := s.repo.MarkRemindersSent(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("reminder job: failed to flag bookings: %w", err)
	}
	s.log.Info("reminder job: reminders sent", zap.Int64("count", n), zap.Strings("booking_ids", ids))
	return int(n), nil
}
